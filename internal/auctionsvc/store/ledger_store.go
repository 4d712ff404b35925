package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bidarena/auction-services/internal/auctionsvc/models"
)

// LedgerStore appends settlement rows to Postgres for audit and reporting.
type LedgerStore struct {
	db *pgxpool.Pool
}

func NewLedgerStore(db *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{db: db}
}

// EnsureSchema creates the settlements table when it does not exist yet.
func (s *LedgerStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS settlements (
            id         BIGSERIAL PRIMARY KEY,
            auction_id TEXT NOT NULL,
            player_id  TEXT NOT NULL,
            team_id    TEXT NOT NULL DEFAULT '',
            kind       TEXT NOT NULL,
            dr         NUMERIC(14,2) NOT NULL DEFAULT 0,
            cr         NUMERIC(14,2) NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to ensure settlements schema: %w", err)
	}
	return nil
}

func (s *LedgerStore) Record(ctx context.Context, entry *models.Settlement) error {
	query := `
        INSERT INTO settlements (auction_id, player_id, team_id, kind, dr, cr)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	err := s.db.QueryRow(ctx, query,
		entry.AuctionID,
		entry.PlayerID,
		entry.TeamID,
		entry.Kind,
		entry.Dr,
		entry.Cr,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record settlement: %w", err)
	}
	return nil
}

// GetTeamNet returns the team's charges minus refunds across the ledger.
func (s *LedgerStore) GetTeamNet(ctx context.Context, teamID string) (decimal.Decimal, error) {
	var totalDr, totalCr decimal.Decimal

	err := s.db.QueryRow(ctx, `
        SELECT
            COALESCE(SUM(dr), 0),
            COALESCE(SUM(cr), 0)
        FROM settlements
        WHERE team_id = $1
    `, teamID).Scan(&totalDr, &totalCr)

	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get team net: %w", err)
	}

	return totalDr.Sub(totalCr), nil
}

func (s *LedgerStore) ListByAuction(ctx context.Context, auctionID string) ([]*models.Settlement, error) {
	query := `
        SELECT id, auction_id, player_id, team_id, kind, dr, cr, created_at
        FROM settlements
        WHERE auction_id = $1
        ORDER BY created_at
    `
	rows, err := s.db.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var entries []*models.Settlement
	for rows.Next() {
		entry := &models.Settlement{}
		if err := rows.Scan(
			&entry.ID,
			&entry.AuctionID,
			&entry.PlayerID,
			&entry.TeamID,
			&entry.Kind,
			&entry.Dr,
			&entry.Cr,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading settlements: %w", err)
	}
	return entries, nil
}
