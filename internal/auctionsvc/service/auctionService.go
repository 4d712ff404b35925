package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bidarena/auction-services/internal/auctionsvc/models"
	"github.com/bidarena/auction-services/internal/auctionsvc/room"
	"github.com/bidarena/auction-services/internal/auctionsvc/store"
)

type AuctionService struct {
	auctionStore *store.AuctionStore
	teamStore    *store.TeamStore
	playerStore  *store.PlayerStore
	rooms        *room.Table
}

func NewAuctionService(auctionStore *store.AuctionStore, teamStore *store.TeamStore,
	playerStore *store.PlayerStore, rooms *room.Table) *AuctionService {
	return &AuctionService{
		auctionStore: auctionStore,
		teamStore:    teamStore,
		playerStore:  playerStore,
		rooms:        rooms,
	}
}

func (s *AuctionService) Create(ctx context.Context, name, accessCode string) (*models.Auction, error) {
	auction := &models.Auction{Name: name, AccessCode: accessCode}
	if err := s.auctionStore.Create(ctx, auction); err != nil {
		return nil, err
	}
	return auction, nil
}

func (s *AuctionService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Auction, error) {
	return s.auctionStore.GetByID(ctx, id)
}

func (s *AuctionService) List(ctx context.Context) ([]*models.Auction, error) {
	return s.auctionStore.List(ctx)
}

// VerifyAccessCode compares the stored plaintext code for the auction.
func (s *AuctionService) VerifyAccessCode(ctx context.Context, id primitive.ObjectID, code string) (bool, error) {
	auction, err := s.auctionStore.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if auction == nil {
		return false, fmt.Errorf("auction %s not found", id.Hex())
	}
	return auction.AccessCode == code, nil
}

// Delete cascades: players and teams go with the auction, and the live
// room session is evicted so a later reference starts fresh.
func (s *AuctionService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.playerStore.DeleteByAuction(ctx, id); err != nil {
		return err
	}
	if err := s.teamStore.DeleteByAuction(ctx, id); err != nil {
		return err
	}
	if err := s.auctionStore.Delete(ctx, id); err != nil {
		return err
	}

	s.rooms.Remove(id.Hex())
	return nil
}
