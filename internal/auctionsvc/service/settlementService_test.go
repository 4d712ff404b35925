package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bidarena/auction-services/internal/auctionsvc/models"
)

type fakePlayerStore struct {
	players map[primitive.ObjectID]*models.Player

	markSoldErr error
	soldCalls   int
	unsoldCalls int
}

func newFakePlayerStore() *fakePlayerStore {
	return &fakePlayerStore{players: make(map[primitive.ObjectID]*models.Player)}
}

func (f *fakePlayerStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Player, error) {
	return f.players[id], nil
}

func (f *fakePlayerStore) MarkSold(_ context.Context, id, teamID primitive.ObjectID, price int64) error {
	if f.markSoldErr != nil {
		return f.markSoldErr
	}
	f.soldCalls++
	if p, ok := f.players[id]; ok {
		p.IsSold = true
		p.IsUnsold = false
		p.SoldTo = &teamID
		p.SoldPrice = price
	}
	return nil
}

func (f *fakePlayerStore) MarkUnsold(_ context.Context, id primitive.ObjectID) error {
	f.unsoldCalls++
	if p, ok := f.players[id]; ok {
		p.IsSold = false
		p.IsUnsold = true
	}
	return nil
}

func (f *fakePlayerStore) ResetByTeam(_ context.Context, teamID primitive.ObjectID) (int64, error) {
	var reset int64
	for _, p := range f.players {
		if p.SoldTo != nil && *p.SoldTo == teamID {
			p.IsSold = false
			p.SoldTo = nil
			p.SoldPrice = 0
			reset++
		}
	}
	return reset, nil
}

type fakeTeamStore struct {
	teams map[primitive.ObjectID]*models.Team

	addPlayerErr error
	addCalls     int
	removeCalls  int
}

func newFakeTeamStore() *fakeTeamStore {
	return &fakeTeamStore{teams: make(map[primitive.ObjectID]*models.Team)}
}

func (f *fakeTeamStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Team, error) {
	return f.teams[id], nil
}

func (f *fakeTeamStore) AddPlayer(_ context.Context, teamID, playerID primitive.ObjectID, amount int64) error {
	if f.addPlayerErr != nil {
		return f.addPlayerErr
	}
	f.addCalls++
	if t, ok := f.teams[teamID]; ok {
		t.Spent += amount
		t.Players = append(t.Players, playerID)
	}
	return nil
}

func (f *fakeTeamStore) RemovePlayer(_ context.Context, teamID, playerID primitive.ObjectID, refund int64) error {
	f.removeCalls++
	if t, ok := f.teams[teamID]; ok {
		t.Spent -= refund
		kept := t.Players[:0]
		for _, id := range t.Players {
			if id != playerID {
				kept = append(kept, id)
			}
		}
		t.Players = kept
	}
	return nil
}

type fakeLedger struct {
	entries []*models.Settlement
	err     error
}

func (f *fakeLedger) Record(_ context.Context, entry *models.Settlement) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func seed(players *fakePlayerStore, teams *fakeTeamStore) (playerID, teamID primitive.ObjectID) {
	playerID = primitive.NewObjectID()
	teamID = primitive.NewObjectID()
	auctionID := primitive.NewObjectID()

	players.players[playerID] = &models.Player{
		ID: playerID, AuctionID: auctionID, Name: "Striker", BasePrice: 1000,
	}
	teams.teams[teamID] = &models.Team{
		ID: teamID, AuctionID: auctionID, Name: "Team A", Budget: 100000,
		Players: []primitive.ObjectID{},
	}
	return playerID, teamID
}

func TestCommitSale(t *testing.T) {
	players := newFakePlayerStore()
	teams := newFakeTeamStore()
	ledger := &fakeLedger{}
	svc := NewSettlementService(players, teams, ledger, nil)

	playerID, teamID := seed(players, teams)

	err := svc.CommitSale(context.Background(), "a1", playerID.Hex(), teamID.Hex(), 1500)
	require.NoError(t, err)

	p := players.players[playerID]
	require.True(t, p.IsSold)
	require.False(t, p.IsUnsold)
	require.Equal(t, teamID, *p.SoldTo)
	require.Equal(t, int64(1500), p.SoldPrice)

	tm := teams.teams[teamID]
	require.Equal(t, int64(1500), tm.Spent)
	require.Contains(t, tm.Players, playerID)

	require.Len(t, ledger.entries, 1)
	require.Equal(t, models.SettlementSale, ledger.entries[0].Kind)
	require.Equal(t, "1500", ledger.entries[0].Dr.String())
}

func TestCommitSaleInvalidIDs(t *testing.T) {
	svc := NewSettlementService(newFakePlayerStore(), newFakeTeamStore(), nil, nil)

	err := svc.CommitSale(context.Background(), "a1", "not-an-id", primitive.NewObjectID().Hex(), 1000)
	require.Error(t, err)

	err = svc.CommitSale(context.Background(), "a1", primitive.NewObjectID().Hex(), "not-an-id", 1000)
	require.Error(t, err)
}

func TestCommitSalePlayerWriteFailsBeforeTeamCharge(t *testing.T) {
	players := newFakePlayerStore()
	teams := newFakeTeamStore()
	players.markSoldErr = errors.New("mongo down")
	svc := NewSettlementService(players, teams, nil, nil)

	playerID, teamID := seed(players, teams)

	err := svc.CommitSale(context.Background(), "a1", playerID.Hex(), teamID.Hex(), 1500)
	require.Error(t, err)
	require.Zero(t, teams.addCalls)
}

func TestCommitSaleLedgerFailureDoesNotFailSale(t *testing.T) {
	players := newFakePlayerStore()
	teams := newFakeTeamStore()
	ledger := &fakeLedger{err: errors.New("pg down")}
	svc := NewSettlementService(players, teams, ledger, nil)

	playerID, teamID := seed(players, teams)

	err := svc.CommitSale(context.Background(), "a1", playerID.Hex(), teamID.Hex(), 1500)
	require.NoError(t, err)
	require.True(t, players.players[playerID].IsSold)
}

func TestCommitUnsell(t *testing.T) {
	players := newFakePlayerStore()
	teams := newFakeTeamStore()
	svc := NewSettlementService(players, teams, nil, nil)

	playerID, _ := seed(players, teams)

	err := svc.CommitUnsell(context.Background(), "a1", playerID.Hex())
	require.NoError(t, err)

	p := players.players[playerID]
	require.False(t, p.IsSold)
	require.True(t, p.IsUnsold)
}

func TestReverseSaleRefundsTeamBeforeDeletion(t *testing.T) {
	players := newFakePlayerStore()
	teams := newFakeTeamStore()
	ledger := &fakeLedger{}
	svc := NewSettlementService(players, teams, ledger, nil)

	playerID, teamID := seed(players, teams)
	require.NoError(t, svc.CommitSale(context.Background(), "a1", playerID.Hex(), teamID.Hex(), 2000))

	err := svc.ReverseSale(context.Background(), playerID)
	require.NoError(t, err)

	tm := teams.teams[teamID]
	require.Zero(t, tm.Spent)
	require.NotContains(t, tm.Players, playerID)

	require.Equal(t, models.SettlementReversal, ledger.entries[len(ledger.entries)-1].Kind)
}

func TestReverseSaleUnsoldPlayerIsNoOp(t *testing.T) {
	players := newFakePlayerStore()
	teams := newFakeTeamStore()
	svc := NewSettlementService(players, teams, nil, nil)

	playerID, _ := seed(players, teams)

	err := svc.ReverseSale(context.Background(), playerID)
	require.NoError(t, err)
	require.Zero(t, teams.removeCalls)
}

func TestReverseTeamReturnsPlayersToPendingPool(t *testing.T) {
	players := newFakePlayerStore()
	teams := newFakeTeamStore()
	svc := NewSettlementService(players, teams, nil, nil)

	teamID := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		id := primitive.NewObjectID()
		tid := teamID
		players.players[id] = &models.Player{
			ID: id, IsSold: true, SoldTo: &tid, SoldPrice: 1000,
		}
	}

	err := svc.ReverseTeam(context.Background(), teamID)
	require.NoError(t, err)

	for _, p := range players.players {
		require.False(t, p.IsSold)
		require.Nil(t, p.SoldTo)
		require.Zero(t, p.SoldPrice)
	}
}
