package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SettlementSale     = "sale"
	SettlementPass     = "pass"
	SettlementReversal = "reversal"
)

// Settlement is one append-only ledger row in Postgres. Dr records a charge
// against the team, Cr a refund; the Mongo documents stay authoritative and
// the ledger is an audit surface.
type Settlement struct {
	ID        int64           `json:"id"`
	AuctionID string          `json:"auction_id"`
	PlayerID  string          `json:"player_id"`
	TeamID    string          `json:"team_id"`
	Kind      string          `json:"kind"`
	Dr        decimal.Decimal `json:"dr"`
	Cr        decimal.Decimal `json:"cr"`
	CreatedAt time.Time       `json:"created_at"`
}
