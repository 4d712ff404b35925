package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/bidarena/auction-services/internal/comm"
	"github.com/bidarena/auction-services/internal/socketsvc/broker"
)

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	roomMap sync.Map // to keep track of auctionId (room) with socketId
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage handles one message from a web client. join_auction also
// registers the socket in the room so later broadcasts reach it; every
// known event is forwarded to the auction service over NATS.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case comm.EventJoinAuction:
		s.handleJoin(socketId, message)
	case comm.EventStartPlayer, comm.EventPlaceBid, comm.EventUndoBid,
		comm.EventTogglePause, comm.EventSellPlayer, comm.EventUnsellPlayer,
		comm.EventResetRound:
		s.forward(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (s *Ws) handleJoin(socketId string, msg *comm.WSMessage) {
	payload := comm.JoinAuctionPayload{}
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.AuctionId == "" {
		log.Errorf("Error: invalid join_auction payload %v", err)
		return
	}

	s.StoreRoom(socketId, payload.AuctionId)
	s.forward(socketId, msg)
}

func (s *Ws) forward(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	if err := s.Broker.Publish(broker.TopicSocketEvents, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", broker.TopicSocketEvents, err)
		return
	}

	log.Debugf("forwarded %s from socket %s", msg.Type, socketId)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) StoreRoom(socketId string, roomId string) {
	s.roomMap.Store(socketId, roomId)
}

func (s *Ws) GetRoom(socketId string) (string, bool) {
	room, ok := s.roomMap.Load(socketId)
	if !ok {
		return "", false
	}
	return room.(string), true
}

func (s *Ws) GetRoomSockets(roomId string) ([]string, bool) {
	var sockets []string
	found := false

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(string) == roomId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

// HandleDisconnect drops the socket from the connection and room tables.
func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)
}
