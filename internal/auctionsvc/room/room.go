package room

import (
	"sync"
)

type Status string

const (
	StatusIdle   Status = "IDLE"
	StatusActive Status = "ACTIVE"
	StatusPaused Status = "PAUSED"
	StatusSold   Status = "SOLD"
	StatusUnsold Status = "UNSOLD"
)

// BidEntry is one undo-stack snapshot: the bid value and leading team that
// were current before the next accepted bid replaced them.
type BidEntry struct {
	Bid    int64  `json:"bid"`
	Leader string `json:"leader"`
}

// State is a point-in-time copy of a bidding session, safe to marshal and
// broadcast without holding the session lock.
type State struct {
	CurrentBid      int64      `json:"currentBid"`
	LeadingTeamId   string     `json:"leadingTeamId,omitempty"`
	CurrentPlayerId string     `json:"currentPlayerId,omitempty"`
	Status          Status     `json:"status"`
	BidHistory      []BidEntry `json:"bidHistory"`
}

// Session is the live bidding state of one auction room. All transitions
// take the session lock, mutate synchronously and return before any durable
// write begins.
type Session struct {
	mu sync.Mutex

	currentBid      int64
	leadingTeamID   string // empty until a bid is accepted in the round
	currentPlayerID string
	status          Status
	bidHistory      []BidEntry
}

func newSession() *Session {
	return &Session{status: StatusIdle, bidHistory: []BidEntry{}}
}

// StartPlayer opens a new round for the given player at its base price.
// This is a hard reset of the bid fields regardless of prior status: no
// leader, empty history, status ACTIVE.
func (s *Session) StartPlayer(playerID string, basePrice int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentBid = basePrice
	s.leadingTeamID = ""
	s.currentPlayerID = playerID
	s.status = StatusActive
	s.bidHistory = []BidEntry{}
}

// PlaceBid applies a bid from teamID. The opening bid may equal the current
// bid (the base price); once a leader exists every bid must strictly raise
// the price. Returns false when the bid is rejected, in which case the
// session is unchanged.
func (s *Session) PlaceBid(teamID string, amount int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.leadingTeamID == "" {
		if amount < s.currentBid {
			return false
		}
	} else if amount <= s.currentBid {
		return false
	}

	s.bidHistory = append(s.bidHistory, BidEntry{Bid: s.currentBid, Leader: s.leadingTeamID})
	s.currentBid = amount
	s.leadingTeamID = teamID
	return true
}

// UndoBid reverses the most recent accepted bid. No-op on empty history.
func (s *Session) UndoBid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.bidHistory)
	if n == 0 {
		return false
	}

	last := s.bidHistory[n-1]
	s.bidHistory = s.bidHistory[:n-1]
	s.currentBid = last.Bid
	s.leadingTeamID = last.Leader
	return true
}

// TogglePause flips ACTIVE and PAUSED. Any other status is left alone: the
// session is either idle or already settled, and resuming from there would
// fabricate an active round.
func (s *Session) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusActive:
		s.status = StatusPaused
	case StatusPaused:
		s.status = StatusActive
	default:
		return false
	}
	return true
}

// Sell settles the round on the current leader. Requires both a player on
// the block and a leading team; otherwise no-op. On success the history is
// cleared and the sale details are returned for settlement.
func (s *Session) Sell() (playerID, teamID string, amount int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentPlayerID == "" || s.leadingTeamID == "" {
		return "", "", 0, false
	}

	s.status = StatusSold
	s.bidHistory = []BidEntry{}
	return s.currentPlayerID, s.leadingTeamID, s.currentBid, true
}

// Unsell marks the current player as passed. The player and leader fields
// are left as-is; only the next StartPlayer or Reset overwrites them.
func (s *Session) Unsell() (playerID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentPlayerID == "" {
		return "", false
	}

	s.status = StatusUnsold
	return s.currentPlayerID, true
}

// Reset restores the session to its initial values.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentBid = 0
	s.leadingTeamID = ""
	s.currentPlayerID = ""
	s.status = StatusIdle
	s.bidHistory = []BidEntry{}
}

// Snapshot copies the session for broadcasting.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]BidEntry, len(s.bidHistory))
	copy(history, s.bidHistory)

	return State{
		CurrentBid:      s.currentBid,
		LeadingTeamId:   s.leadingTeamID,
		CurrentPlayerId: s.currentPlayerID,
		Status:          s.status,
		BidHistory:      history,
	}
}

// Table maps auction identifiers to their live sessions. Sessions are
// created lazily on first reference and evicted when the auction is deleted.
type Table struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewTable() *Table {
	return &Table{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for auctionID, installing a fresh idle
// session on first reference.
func (t *Table) GetOrCreate(auctionID string) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[auctionID]; ok {
		return s
	}
	s := newSession()
	t.sessions[auctionID] = s
	return s
}

// Remove evicts the session for auctionID. A later GetOrCreate starts over.
func (t *Table) Remove(auctionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, auctionID)
}

// Len reports the number of live sessions.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
