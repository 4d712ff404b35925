package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bidarena/auction-services/internal/auctionsvc/models"
	"github.com/bidarena/auction-services/internal/auctionsvc/service"
	"github.com/bidarena/auction-services/internal/auctionsvc/store"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth

	auctionService *service.AuctionService
	teamService    *service.TeamService
	playerService  *service.PlayerService
	ledgerStore    *store.LedgerStore
}

func NewHandler(auctionService *service.AuctionService, teamService *service.TeamService,
	playerService *service.PlayerService, ledgerStore *store.LedgerStore) *Handler {
	return &Handler{
		auctionService: auctionService,
		teamService:    teamService,
		playerService:  playerService,
		ledgerStore:    ledgerStore,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "auction service is running at port " + os.Getenv("AUCTION_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}

// urlObjectID parses the named chi URL parameter as a Mongo object id and
// writes a 400 on failure.
func (h *Handler) urlObjectID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name       string `json:"name"`
		AccessCode string `json:"accessCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Name == "" {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid auction payload"})
		return
	}

	auction, err := h.auctionService.Create(r.Context(), request.Name, request.AccessCode)
	if err != nil {
		log.Errorf("Error [AuctionService.Create] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to create auction"})
		return
	}

	h.CreateResponse(w, Response{Message: "auction created", Code: http.StatusCreated, Data: auction})
}

func (h *Handler) ListAuctions(w http.ResponseWriter, r *http.Request) {
	auctions, err := h.auctionService.List(r.Context())
	if err != nil {
		log.Errorf("Error [AuctionService.List] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to list auctions"})
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: auctions})
}

func (h *Handler) GetAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlObjectID(w, r, "auctionID")
	if !ok {
		return
	}

	auction, err := h.auctionService.GetByID(r.Context(), id)
	if err != nil {
		log.Errorf("Error [AuctionService.GetByID] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to get auction"})
		return
	}
	if auction == nil {
		h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: "auction not found"})
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: auction})
}

// VerifyAccessCode checks the plaintext access code for an auction.
func (h *Handler) VerifyAccessCode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlObjectID(w, r, "auctionID")
	if !ok {
		return
	}

	var request struct {
		AccessCode string `json:"accessCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid payload"})
		return
	}

	valid, err := h.auctionService.VerifyAccessCode(r.Context(), id, request.AccessCode)
	if err != nil {
		log.Errorf("Error [AuctionService.VerifyAccessCode] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to verify access code"})
		return
	}
	if !valid {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid access code"})
		return
	}
	h.CreateResponse(w, Response{Message: "access granted", Code: http.StatusOK})
}

func (h *Handler) DeleteAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlObjectID(w, r, "auctionID")
	if !ok {
		return
	}

	if err := h.auctionService.Delete(r.Context(), id); err != nil {
		log.Errorf("Error [AuctionService.Delete] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to delete auction"})
		return
	}
	h.CreateResponse(w, Response{Message: "auction deleted", Code: http.StatusOK})
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := h.urlObjectID(w, r, "auctionID")
	if !ok {
		return
	}

	var request struct {
		Name   string `json:"name"`
		Budget int64  `json:"budget"`
		Color  string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Name == "" {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid team payload"})
		return
	}

	team := &models.Team{
		AuctionID: auctionID,
		Name:      request.Name,
		Budget:    request.Budget,
		Color:     request.Color,
	}
	if err := h.teamService.Create(r.Context(), team); err != nil {
		log.Errorf("Error [TeamService.Create] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to create team"})
		return
	}
	h.CreateResponse(w, Response{Message: "team created", Code: http.StatusCreated, Data: team})
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := h.urlObjectID(w, r, "auctionID")
	if !ok {
		return
	}

	teams, err := h.teamService.ListByAuction(r.Context(), auctionID)
	if err != nil {
		log.Errorf("Error [TeamService.ListByAuction] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to list teams"})
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: teams})
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlObjectID(w, r, "teamID")
	if !ok {
		return
	}

	if err := h.teamService.Delete(r.Context(), id); err != nil {
		log.Errorf("Error [TeamService.Delete] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to delete team"})
		return
	}
	h.CreateResponse(w, Response{Message: "team deleted", Code: http.StatusOK})
}

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := h.urlObjectID(w, r, "auctionID")
	if !ok {
		return
	}

	var request struct {
		Name      string `json:"name"`
		Role      string `json:"role"`
		Category  string `json:"category"`
		BasePrice int64  `json:"basePrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Name == "" {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid player payload"})
		return
	}

	player := &models.Player{
		AuctionID: auctionID,
		Name:      request.Name,
		Role:      request.Role,
		Category:  request.Category,
		BasePrice: request.BasePrice,
	}
	if err := h.playerService.Create(r.Context(), player); err != nil {
		log.Errorf("Error [PlayerService.Create] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to create player"})
		return
	}
	h.CreateResponse(w, Response{Message: "player created", Code: http.StatusCreated, Data: player})
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := h.urlObjectID(w, r, "auctionID")
	if !ok {
		return
	}

	players, err := h.playerService.ListByAuction(r.Context(), auctionID)
	if err != nil {
		log.Errorf("Error [PlayerService.ListByAuction] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to list players"})
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: players})
}

func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlObjectID(w, r, "playerID")
	if !ok {
		return
	}

	if err := h.playerService.Delete(r.Context(), id); err != nil {
		log.Errorf("Error [PlayerService.Delete] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to delete player"})
		return
	}
	h.CreateResponse(w, Response{Message: "player deleted", Code: http.StatusOK})
}

// ListSettlements exposes the audit ledger for one auction.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlObjectID(w, r, "auctionID")
	if !ok {
		return
	}

	entries, err := h.ledgerStore.ListByAuction(r.Context(), id.Hex())
	if err != nil {
		log.Errorf("Error [LedgerStore.ListByAuction] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to list settlements"})
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: entries})
}
