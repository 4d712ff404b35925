package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/bidarena/auction-services/internal/auctionsvc/room"
	"github.com/bidarena/auction-services/internal/comm"
)

const (
	// TopicSocketEvents carries inbound client events from the socket service.
	TopicSocketEvents = "socket.auction"
	// TopicAuctionEvents carries room-scoped broadcasts back to the socket service.
	TopicAuctionEvents = "auction.events"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(topic string, data []byte) error
}

// Settler is the settlement surface the broker drives after sell/unsell
// transitions.
type Settler interface {
	CommitSale(ctx context.Context, auctionID, playerID, teamID string, amount int64) error
	CommitUnsell(ctx context.Context, auctionID, playerID string) error
}

type Broker struct {
	Conn       *nats.Conn
	pub        Publisher
	rooms      *room.Table
	settlement Settler
}

func NewBroker(nc *nats.Conn, pub Publisher, rooms *room.Table, settlement Settler) *Broker {
	return &Broker{
		Conn:       nc,
		pub:        pub,
		rooms:      rooms,
		settlement: settlement,
	}
}

// SubscribeSocketService consumes inbound room events from the socket service.
func (b *Broker) SubscribeSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// handleMessage dispatches one inbound event. The in-memory transition and
// its broadcast finish before any durable write starts; rejected or no-op
// events produce no broadcast at all.
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	if err := json.Unmarshal(msgNat.Data, msg); err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}
	b.dispatch(msg)
}

func (b *Broker) dispatch(msg *comm.WSMessage) {
	switch msg.Type {
	case comm.EventJoinAuction:
		payload := comm.JoinAuctionPayload{}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.AuctionId == "" {
			log.Errorf("Error decoding join_auction payload: %v", err)
			return
		}

		sess := b.rooms.GetOrCreate(payload.AuctionId)
		// snapshot goes to the joining socket only
		b.publishState(payload.AuctionId, sess, msg.SocketId)

	case comm.EventStartPlayer:
		payload := comm.StartPlayerPayload{}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.AuctionId == "" {
			log.Errorf("Error decoding start_player payload: %v", err)
			return
		}

		sess := b.rooms.GetOrCreate(payload.AuctionId)
		sess.StartPlayer(payload.PlayerId, payload.BasePrice)
		b.publishState(payload.AuctionId, sess, "")

	case comm.EventPlaceBid:
		payload := comm.PlaceBidPayload{}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.AuctionId == "" {
			log.Errorf("Error decoding place_bid payload: %v", err)
			return
		}
		if payload.TeamId == "" || payload.Amount == nil {
			// malformed bid, dropped without broadcast
			log.Debugf("dropping malformed bid for auction %s", payload.AuctionId)
			return
		}

		sess := b.rooms.GetOrCreate(payload.AuctionId)
		if sess.PlaceBid(payload.TeamId, *payload.Amount) {
			b.publishState(payload.AuctionId, sess, "")
		}

	case comm.EventUndoBid:
		if sess, auctionID, ok := b.roomEvent(msg); ok && sess.UndoBid() {
			b.publishState(auctionID, sess, "")
		}

	case comm.EventTogglePause:
		if sess, auctionID, ok := b.roomEvent(msg); ok && sess.TogglePause() {
			b.publishState(auctionID, sess, "")
		}

	case comm.EventSellPlayer:
		sess, auctionID, ok := b.roomEvent(msg)
		if !ok {
			return
		}
		playerID, teamID, amount, sold := sess.Sell()
		if !sold {
			return
		}

		b.publishState(auctionID, sess, "")
		go b.settleSale(auctionID, playerID, teamID, amount)

	case comm.EventUnsellPlayer:
		sess, auctionID, ok := b.roomEvent(msg)
		if !ok {
			return
		}
		playerID, unsold := sess.Unsell()
		if !unsold {
			return
		}

		b.publishState(auctionID, sess, "")
		go b.settleUnsell(auctionID, playerID)

	case comm.EventResetRound:
		if sess, auctionID, ok := b.roomEvent(msg); ok {
			sess.Reset()
			b.publishState(auctionID, sess, "")
		}

	default:
		log.Warnf("unknown event received: %s", msg.Type)
	}
}

func (b *Broker) roomEvent(msg *comm.WSMessage) (*room.Session, string, bool) {
	payload := comm.RoomEventPayload{}
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.AuctionId == "" {
		log.Errorf("Error decoding %s payload: %v", msg.Type, err)
		return nil, "", false
	}
	return b.rooms.GetOrCreate(payload.AuctionId), payload.AuctionId, true
}

// settleSale commits the sale and signals "data changed" for the room only
// after both durable writes succeed. Failures are logged, not retried; the
// already-broadcast room state stays as is.
func (b *Broker) settleSale(auctionID, playerID, teamID string, amount int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := b.settlement.CommitSale(ctx, auctionID, playerID, teamID, amount); err != nil {
		log.Errorf("Error [SettlementService.CommitSale] %s", err)
		return
	}
	b.publishDataUpdate(auctionID)
}

func (b *Broker) settleUnsell(auctionID, playerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := b.settlement.CommitUnsell(ctx, auctionID, playerID); err != nil {
		log.Errorf("Error [SettlementService.CommitUnsell] %s", err)
		return
	}
	b.publishDataUpdate(auctionID)
}

// publishState broadcasts the session snapshot for a room. socketId, when
// set, targets a single connection instead of the whole room.
func (b *Broker) publishState(auctionID string, sess *room.Session, socketId string) {
	data, err := json.Marshal(comm.AuctionStatePayload{
		AuctionId: auctionID,
		Session:   sess.Snapshot(),
	})
	if err != nil {
		log.Errorf("Error marshaling auction state: %s", err)
		return
	}

	b.publish(&comm.WSMessage{
		Type:     comm.EventAuctionState,
		Data:     data,
		RoomId:   auctionID,
		SocketId: socketId,
	})
}

func (b *Broker) publishDataUpdate(auctionID string) {
	b.publish(&comm.WSMessage{
		Type:   comm.EventDataUpdate,
		RoomId: auctionID,
	})
}

func (b *Broker) publish(msg *comm.WSMessage) {
	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error marshaling WSMessage: %s", err)
		return
	}
	if err := b.pub.Publish(TopicAuctionEvents, bytes); err != nil {
		log.Errorf("Error publishing to topic %s: %s", TopicAuctionEvents, err)
	}
}
