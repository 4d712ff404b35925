package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/bidarena/auction-services/internal/comm"
)

const (
	// TopicSocketEvents carries client events to the auction service.
	TopicSocketEvents = "socket.auction"
	// TopicAuctionEvents carries room broadcasts from the auction service.
	TopicAuctionEvents = "auction.events"
)

type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	GetRoomSockets func(string) ([]string, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool),
	fncGetRoomSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetRoomSockets: fncGetRoomSockets,
	}
}

// Subscribe consumes room broadcasts from the auction service.
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// Publish sends a client event to the auction service.
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages fans one broadcast out: to a single socket when SocketId
// is set (join snapshots), otherwise to every socket in the room.
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case comm.EventAuctionState, comm.EventDataUpdate:
		if message.SocketId != "" {
			b.sendMessage(message)
			return
		}
		b.sendToRoom(message)
	default:
		log.Error("Unknown message")
		return
	}
}

// send socket message to one web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error writing to socket %s: %s", socketId, err)
		}
	}
}

// send socket message to every client joined to the room
func (b *Broker) sendToRoom(m *comm.WSMessage) {
	sockets, ok := b.GetRoomSockets(m.RoomId)
	if !ok {
		return
	}

	for _, socketId := range sockets {
		conn, ok := b.GetConnection(socketId)
		if !ok {
			continue
		}
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error writing to socket %s: %s", socketId, err)
		}
	}
}
