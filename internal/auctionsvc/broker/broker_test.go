package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bidarena/auction-services/internal/auctionsvc/room"
	"github.com/bidarena/auction-services/internal/comm"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []*comm.WSMessage
}

func (f *fakePublisher) Publish(topic string, data []byte) error {
	msg := &comm.WSMessage{}
	if err := json.Unmarshal(data, msg); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) all() []*comm.WSMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*comm.WSMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

func (f *fakePublisher) types() []string {
	var types []string
	for _, m := range f.all() {
		types = append(types, m.Type)
	}
	return types
}

type fakeSettler struct {
	mu      sync.Mutex
	sales   int
	unsells int
	err     error
}

func (f *fakeSettler) CommitSale(_ context.Context, _, _, _ string, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sales++
	return nil
}

func (f *fakeSettler) CommitUnsell(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.unsells++
	return nil
}

func (f *fakeSettler) saleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sales
}

func event(t *testing.T, eventType string, payload any) *comm.WSMessage {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &comm.WSMessage{Type: eventType, Data: data, SocketId: "sock-1"}
}

func newTestBroker() (*Broker, *fakePublisher, *fakeSettler, *room.Table) {
	pub := &fakePublisher{}
	settler := &fakeSettler{}
	rooms := room.NewTable()
	return NewBroker(nil, pub, rooms, settler), pub, settler, rooms
}

func TestJoinAuctionSendsSnapshotToJoiningSocket(t *testing.T) {
	b, pub, _, _ := newTestBroker()

	b.dispatch(event(t, comm.EventJoinAuction, comm.JoinAuctionPayload{AuctionId: "a1"}))

	msgs := pub.all()
	require.Len(t, msgs, 1)
	require.Equal(t, comm.EventAuctionState, msgs[0].Type)
	require.Equal(t, "a1", msgs[0].RoomId)
	require.Equal(t, "sock-1", msgs[0].SocketId)

	state := comm.AuctionStatePayload{}
	require.NoError(t, json.Unmarshal(msgs[0].Data, &state))
	require.Equal(t, room.StatusIdle, state.Session.Status)
}

func TestStartPlayerBroadcastsActiveRound(t *testing.T) {
	b, pub, _, _ := newTestBroker()

	b.dispatch(event(t, comm.EventStartPlayer, comm.StartPlayerPayload{
		AuctionId: "a1", PlayerId: "p1", BasePrice: 1000,
	}))

	msgs := pub.all()
	require.Len(t, msgs, 1)
	require.Empty(t, msgs[0].SocketId) // room-wide

	state := comm.AuctionStatePayload{}
	require.NoError(t, json.Unmarshal(msgs[0].Data, &state))
	require.Equal(t, room.StatusActive, state.Session.Status)
	require.Equal(t, int64(1000), state.Session.CurrentBid)
	require.Empty(t, state.Session.LeadingTeamId)
}

func TestPlaceBidAcceptedBroadcastsRejectedStaysSilent(t *testing.T) {
	b, pub, _, _ := newTestBroker()

	amount := func(v int64) *int64 { return &v }

	b.dispatch(event(t, comm.EventStartPlayer, comm.StartPlayerPayload{
		AuctionId: "a1", PlayerId: "p1", BasePrice: 1000,
	}))
	b.dispatch(event(t, comm.EventPlaceBid, comm.PlaceBidPayload{
		AuctionId: "a1", TeamId: "teamA", Amount: amount(1000),
	}))
	require.Len(t, pub.all(), 2)

	// equal amount with a leader: rejected, no broadcast
	b.dispatch(event(t, comm.EventPlaceBid, comm.PlaceBidPayload{
		AuctionId: "a1", TeamId: "teamB", Amount: amount(1000),
	}))
	require.Len(t, pub.all(), 2)

	// malformed: missing team, missing amount
	b.dispatch(event(t, comm.EventPlaceBid, comm.PlaceBidPayload{
		AuctionId: "a1", Amount: amount(5000),
	}))
	b.dispatch(event(t, comm.EventPlaceBid, comm.PlaceBidPayload{
		AuctionId: "a1", TeamId: "teamB",
	}))
	require.Len(t, pub.all(), 2)
}

func TestUndoBidEmptyHistoryStaysSilent(t *testing.T) {
	b, pub, _, _ := newTestBroker()

	b.dispatch(event(t, comm.EventStartPlayer, comm.StartPlayerPayload{
		AuctionId: "a1", PlayerId: "p1", BasePrice: 1000,
	}))
	b.dispatch(event(t, comm.EventUndoBid, comm.RoomEventPayload{AuctionId: "a1"}))

	require.Equal(t, []string{comm.EventAuctionState}, pub.types())
}

func TestSellPlayerBroadcastsStateThenDataUpdate(t *testing.T) {
	b, pub, settler, _ := newTestBroker()

	amount := func(v int64) *int64 { return &v }

	b.dispatch(event(t, comm.EventStartPlayer, comm.StartPlayerPayload{
		AuctionId: "a1", PlayerId: "p1", BasePrice: 1000,
	}))
	b.dispatch(event(t, comm.EventPlaceBid, comm.PlaceBidPayload{
		AuctionId: "a1", TeamId: "teamA", Amount: amount(1200),
	}))
	b.dispatch(event(t, comm.EventSellPlayer, comm.RoomEventPayload{AuctionId: "a1"}))

	require.Eventually(t, func() bool {
		return settler.saleCount() == 1 && len(pub.all()) == 4
	}, time.Second, 10*time.Millisecond)

	types := pub.types()
	require.Equal(t, comm.EventAuctionState, types[2])
	require.Equal(t, comm.EventDataUpdate, types[3])
	require.Equal(t, "a1", pub.all()[3].RoomId)
}

func TestSellPlayerWithoutLeaderIsNoOp(t *testing.T) {
	b, pub, settler, _ := newTestBroker()

	b.dispatch(event(t, comm.EventStartPlayer, comm.StartPlayerPayload{
		AuctionId: "a1", PlayerId: "p1", BasePrice: 1000,
	}))
	b.dispatch(event(t, comm.EventSellPlayer, comm.RoomEventPayload{AuctionId: "a1"}))

	time.Sleep(50 * time.Millisecond)
	require.Zero(t, settler.saleCount())
	require.Equal(t, []string{comm.EventAuctionState}, pub.types())
}

func TestSellPlayerSettlementFailureSkipsDataUpdate(t *testing.T) {
	b, pub, settler, _ := newTestBroker()
	settler.err = errors.New("mongo down")

	amount := func(v int64) *int64 { return &v }

	b.dispatch(event(t, comm.EventStartPlayer, comm.StartPlayerPayload{
		AuctionId: "a1", PlayerId: "p1", BasePrice: 1000,
	}))
	b.dispatch(event(t, comm.EventPlaceBid, comm.PlaceBidPayload{
		AuctionId: "a1", TeamId: "teamA", Amount: amount(1200),
	}))
	b.dispatch(event(t, comm.EventSellPlayer, comm.RoomEventPayload{AuctionId: "a1"}))

	// state broadcast still happens; data_update never does
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []string{comm.EventAuctionState, comm.EventAuctionState, comm.EventAuctionState}, pub.types())
}

func TestUnsellPlayerBroadcastsAndSettles(t *testing.T) {
	b, pub, settler, _ := newTestBroker()

	b.dispatch(event(t, comm.EventStartPlayer, comm.StartPlayerPayload{
		AuctionId: "a1", PlayerId: "p1", BasePrice: 1000,
	}))
	b.dispatch(event(t, comm.EventUnsellPlayer, comm.RoomEventPayload{AuctionId: "a1"}))

	require.Eventually(t, func() bool {
		f := settler
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.unsells == 1 && len(pub.all()) == 3
	}, time.Second, 10*time.Millisecond)

	state := comm.AuctionStatePayload{}
	require.NoError(t, json.Unmarshal(pub.all()[1].Data, &state))
	require.Equal(t, room.StatusUnsold, state.Session.Status)
	require.Equal(t, "p1", state.Session.CurrentPlayerId)
}

func TestResetRoundBroadcastsFreshSession(t *testing.T) {
	b, pub, _, rooms := newTestBroker()

	amount := func(v int64) *int64 { return &v }

	b.dispatch(event(t, comm.EventStartPlayer, comm.StartPlayerPayload{
		AuctionId: "a1", PlayerId: "p1", BasePrice: 1000,
	}))
	b.dispatch(event(t, comm.EventPlaceBid, comm.PlaceBidPayload{
		AuctionId: "a1", TeamId: "teamA", Amount: amount(1000),
	}))
	b.dispatch(event(t, comm.EventResetRound, comm.RoomEventPayload{AuctionId: "a1"}))

	state := comm.AuctionStatePayload{}
	require.NoError(t, json.Unmarshal(pub.all()[2].Data, &state))
	require.Equal(t, room.StatusIdle, state.Session.Status)
	require.Zero(t, state.Session.CurrentBid)

	require.Equal(t, 1, rooms.Len())
}

func TestMalformedEnvelopeIsDropped(t *testing.T) {
	b, pub, _, _ := newTestBroker()

	b.dispatch(&comm.WSMessage{Type: comm.EventPlaceBid, Data: json.RawMessage(`{"amount":"lots"}`)})
	b.dispatch(&comm.WSMessage{Type: "mystery", Data: json.RawMessage(`{}`)})

	require.Empty(t, pub.all())
}
