package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bidarena/auction-services/internal/auctionsvc/models"
	"github.com/bidarena/auction-services/internal/auctionsvc/store"
)

type TeamService struct {
	teamStore  *store.TeamStore
	settlement *SettlementService
}

func NewTeamService(teamStore *store.TeamStore, settlement *SettlementService) *TeamService {
	return &TeamService{teamStore: teamStore, settlement: settlement}
}

func (s *TeamService) Create(ctx context.Context, team *models.Team) error {
	return s.teamStore.Create(ctx, team)
}

func (s *TeamService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	return s.teamStore.GetByID(ctx, id)
}

func (s *TeamService) ListByAuction(ctx context.Context, auctionID primitive.ObjectID) ([]*models.Team, error) {
	return s.teamStore.ListByAuction(ctx, auctionID)
}

// Delete removes the team after returning its sold players to the pending
// pool. Player records survive the team.
func (s *TeamService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.settlement.ReverseTeam(ctx, id); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return s.teamStore.Delete(ctx, id)
}
