package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bidarena/auction-services/internal/auctionsvc/models"
)

// PlayerSettler is the slice of the player store the settlement path writes
// through. No other code path touches sale fields.
type PlayerSettler interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Player, error)
	MarkSold(ctx context.Context, id, teamID primitive.ObjectID, price int64) error
	MarkUnsold(ctx context.Context, id primitive.ObjectID) error
	ResetByTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error)
}

type TeamSettler interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error)
	AddPlayer(ctx context.Context, teamID, playerID primitive.ObjectID, amount int64) error
	RemovePlayer(ctx context.Context, teamID, playerID primitive.ObjectID, refund int64) error
}

// SettlementRecorder appends to the audit ledger. Best effort: a ledger
// failure never fails the settlement itself.
type SettlementRecorder interface {
	Record(ctx context.Context, entry *models.Settlement) error
}

// SettlementService translates settled room transitions into durable writes.
// The player and team updates are independent documents with no cross-document
// transaction; a crash between the two leaves the store inconsistent until a
// reconciling write. Known limitation of the current design.
type SettlementService struct {
	players  PlayerSettler
	teams    TeamSettler
	ledger   SettlementRecorder
	notifier *TelegramNotifier
}

func NewSettlementService(players PlayerSettler, teams TeamSettler, ledger SettlementRecorder, notifier *TelegramNotifier) *SettlementService {
	return &SettlementService{
		players:  players,
		teams:    teams,
		ledger:   ledger,
		notifier: notifier,
	}
}

// CommitSale marks the player sold and charges the buying team. Both writes
// must succeed before the caller may signal "data changed" for the room.
func (s *SettlementService) CommitSale(ctx context.Context, auctionID, playerID, teamID string, amount int64) error {
	pid, err := primitive.ObjectIDFromHex(playerID)
	if err != nil {
		return fmt.Errorf("invalid player id %q: %w", playerID, err)
	}
	tid, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return fmt.Errorf("invalid team id %q: %w", teamID, err)
	}

	if err := s.players.MarkSold(ctx, pid, tid, amount); err != nil {
		return fmt.Errorf("commit sale: %w", err)
	}
	if err := s.teams.AddPlayer(ctx, tid, pid, amount); err != nil {
		return fmt.Errorf("commit sale: %w", err)
	}

	s.record(ctx, &models.Settlement{
		AuctionID: auctionID,
		PlayerID:  playerID,
		TeamID:    teamID,
		Kind:      models.SettlementSale,
		Dr:        decimal.NewFromInt(amount),
	})

	s.notifySale(ctx, pid, tid, amount)
	return nil
}

// CommitUnsell marks the player as passed in this round.
func (s *SettlementService) CommitUnsell(ctx context.Context, auctionID, playerID string) error {
	pid, err := primitive.ObjectIDFromHex(playerID)
	if err != nil {
		return fmt.Errorf("invalid player id %q: %w", playerID, err)
	}

	if err := s.players.MarkUnsold(ctx, pid); err != nil {
		return fmt.Errorf("commit unsell: %w", err)
	}

	s.record(ctx, &models.Settlement{
		AuctionID: auctionID,
		PlayerID:  playerID,
		Kind:      models.SettlementPass,
	})
	return nil
}

// ReverseSale refunds the owning team before a sold player is deleted:
// the player is pulled from the team's owned set and spent is decremented
// by the sold price. No-op for players that were never sold.
func (s *SettlementService) ReverseSale(ctx context.Context, playerID primitive.ObjectID) error {
	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("reverse sale: %w", err)
	}
	if player == nil || !player.IsSold || player.SoldTo == nil {
		return nil
	}

	if err := s.teams.RemovePlayer(ctx, *player.SoldTo, playerID, player.SoldPrice); err != nil {
		return fmt.Errorf("reverse sale: %w", err)
	}

	s.record(ctx, &models.Settlement{
		AuctionID: player.AuctionID.Hex(),
		PlayerID:  playerID.Hex(),
		TeamID:    player.SoldTo.Hex(),
		Kind:      models.SettlementReversal,
		Cr:        decimal.NewFromInt(player.SoldPrice),
	})
	return nil
}

// ReverseTeam returns every player sold to the team to the pending pool.
// Called before team deletion; no player records are removed.
func (s *SettlementService) ReverseTeam(ctx context.Context, teamID primitive.ObjectID) error {
	reset, err := s.players.ResetByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("reverse team: %w", err)
	}
	if reset > 0 {
		log.Infof("returned %d players of team %s to the pending pool", reset, teamID.Hex())
	}
	return nil
}

func (s *SettlementService) record(ctx context.Context, entry *models.Settlement) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Record(ctx, entry); err != nil {
		log.Errorf("Error recording settlement ledger entry: %s", err)
	}
}

func (s *SettlementService) notifySale(ctx context.Context, playerID, teamID primitive.ObjectID, amount int64) {
	if s.notifier == nil {
		return
	}

	player, err := s.players.GetByID(ctx, playerID)
	if err != nil || player == nil {
		log.Errorf("Error loading player %s for sale notification: %v", playerID.Hex(), err)
		return
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil || team == nil {
		log.Errorf("Error loading team %s for sale notification: %v", teamID.Hex(), err)
		return
	}

	s.notifier.SendNotification(fmt.Sprintf("*SOLD* %s to %s for %d", player.Name, team.Name, amount))
}
