package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/bidarena/auction-services/configs"
	"github.com/bidarena/auction-services/internal/auctionsvc/broker"
	pgdb "github.com/bidarena/auction-services/internal/auctionsvc/db"
	"github.com/bidarena/auction-services/internal/auctionsvc/handlers"
	"github.com/bidarena/auction-services/internal/auctionsvc/room"
	"github.com/bidarena/auction-services/internal/auctionsvc/service"
	"github.com/bidarena/auction-services/internal/auctionsvc/store"
	"github.com/bidarena/auction-services/internal/db"
	"github.com/bidarena/auction-services/internal/nats"
)

const SERVICE_NAME = "auction"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// mongo connection for the record store
	mongoDB, cancelMongo, err := db.ConnectToDB(os.Getenv("MONGODB_URI"))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancelMongo()
	db.EnsureIndexes(mongoDB)
	log.Printf("mongo connection established successfully")

	// pg connection for the settlement ledger
	dbpool, err := pgdb.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgdb.ClosePool()
	log.Printf("pg connection established successfully")

	auctionStore := store.NewAuctionStore(mongoDB)
	teamStore := store.NewTeamStore(mongoDB)
	playerStore := store.NewPlayerStore(mongoDB)

	ledgerStore := store.NewLedgerStore(dbpool)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ledgerStore.EnsureSchema(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to ensure ledger schema: %v", err)
	}
	cancel()

	rooms := room.NewTable()

	notifier := service.InitTelegramNotifier()
	settlementService := service.NewSettlementService(playerStore, teamStore, ledgerStore, notifier)
	auctionService := service.NewAuctionService(auctionStore, teamStore, playerStore, rooms)
	teamService := service.NewTeamService(teamStore, settlementService)
	playerService := service.NewPlayerService(playerStore, settlementService)

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// init room event broker
	b := broker.NewBroker(n.Conn, n.Conn, rooms, settlementService)

	// subscribe to socket service
	sub, err := b.SubscribeSocketService(broker.TopicSocketEvents)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Initialize routes
	h := handlers.NewHandler(auctionService, teamService, playerService, ledgerStore)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("AUCTION_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
