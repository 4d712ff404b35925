package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bidarena/auction-services/internal/auctionsvc/models"
	"github.com/bidarena/auction-services/internal/auctionsvc/store"
)

type PlayerService struct {
	playerStore *store.PlayerStore
	settlement  *SettlementService
}

func NewPlayerService(playerStore *store.PlayerStore, settlement *SettlementService) *PlayerService {
	return &PlayerService{playerStore: playerStore, settlement: settlement}
}

// Create assigns the player its stable display rank: the number of players
// already registered in the auction.
func (s *PlayerService) Create(ctx context.Context, player *models.Player) error {
	count, err := s.playerStore.CountByAuction(ctx, player.AuctionID)
	if err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	player.Order = int(count)
	return s.playerStore.Create(ctx, player)
}

func (s *PlayerService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Player, error) {
	return s.playerStore.GetByID(ctx, id)
}

func (s *PlayerService) ListByAuction(ctx context.Context, auctionID primitive.ObjectID) ([]*models.Player, error) {
	return s.playerStore.ListByAuction(ctx, auctionID)
}

// Delete refunds the owning team first when the player was sold, then
// removes the record.
func (s *PlayerService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.settlement.ReverseSale(ctx, id); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return s.playerStore.Delete(ctx, id)
}
