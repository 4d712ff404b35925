package comm

import (
	"encoding/json"

	"github.com/bidarena/auction-services/internal/auctionsvc/room"
)

// WSMessage is the envelope shared by the socket service and the auction
// service. RoomId scopes outbound broadcasts to one auction room; SocketId
// targets a single connection when set.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "place_bid", "auction_state"
	Data     json.RawMessage `json:"data,omitempty"`
	SocketId string          `json:"socketid,omitempty"`
	RoomId   string          `json:"roomid,omitempty"`
}

// Inbound event types accepted from web clients.
const (
	EventJoinAuction  = "join_auction"
	EventStartPlayer  = "start_player"
	EventPlaceBid     = "place_bid"
	EventUndoBid      = "undo_bid"
	EventTogglePause  = "toggle_pause"
	EventSellPlayer   = "sell_player"
	EventUnsellPlayer = "unsell_player"
	EventResetRound   = "reset_round"
)

// Outbound broadcast types.
const (
	EventAuctionState = "auction_state"
	EventDataUpdate   = "data_update"
)

type JoinAuctionPayload struct {
	AuctionId string `json:"auctionId"`
}

type StartPlayerPayload struct {
	AuctionId string `json:"auctionId"`
	PlayerId  string `json:"playerId"`
	BasePrice int64  `json:"basePrice"`
}

// PlaceBidPayload carries a bid. Amount is a pointer so a missing or
// non-numeric amount is distinguishable from a zero bid.
type PlaceBidPayload struct {
	AuctionId string `json:"auctionId"`
	TeamId    string `json:"teamId"`
	Amount    *int64 `json:"amount"`
}

// RoomEventPayload covers the events that carry only the room identifier.
type RoomEventPayload struct {
	AuctionId string `json:"auctionId"`
}

// AuctionStatePayload is the full session snapshot broadcast on every
// accepted transition and once on join.
type AuctionStatePayload struct {
	AuctionId string     `json:"auctionId"`
	Session   room.State `json:"session"`
}
