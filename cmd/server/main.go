package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumina-backend/internal/ai"
	"lumina-backend/internal/api"
	"lumina-backend/internal/chain"
	"lumina-backend/internal/config"
	"lumina-backend/internal/handlers"
	"lumina-backend/internal/services"
	"lumina-backend/internal/store/postgres"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	log.Println("Starting Lumina AI Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Database Connection Pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Unable to create database connection pool: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(dbCtx); err != nil {
		log.Fatalf("FATAL: Unable to ping database: %v", err)
	}
	log.Println("Database connection pool established.")

	pgStore := postgres.NewPostgresStore(dbpool)

	// 3. Initialize the Gemini generation client
	genClient, err := ai.NewClient(context.Background(), cfg.GoogleAPIKey, cfg.TextModel, cfg.ImageModel)
	if err != nil {
		log.Fatalf("FATAL: Failed to create generation client: %v", err)
	}
	log.Printf("Generation client initialized (text=%s, image=%s).", cfg.TextModel, cfg.ImageModel)

	// 4. Initialize the fuel ledger side. When unconfigured the service runs
	// but rejects every turn with a configuration error, per the API contract.
	var fuelReader services.FuelReader
	var fuelDebiter services.FuelDebiter
	if cfg.ChainConfigured() {
		ethClient, err := ethclient.Dial(cfg.RPCURL)
		if err != nil {
			log.Fatalf("FATAL: Unable to dial ledger RPC %s: %v", cfg.RPCURL, err)
		}

		reader, err := chain.NewReader(ethClient, cfg.FuelContractAddress)
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}

		relayerCtx, relayerCancel := context.WithTimeout(context.Background(), 10*time.Second)
		relayer, err := chain.NewRelayer(relayerCtx, ethClient, cfg.FuelContractAddress, cfg.AdminPrivateKey)
		relayerCancel()
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}

		fuelReader = reader
		fuelDebiter = relayer
		log.Printf("Fuel ledger wired: contract %s via %s.", cfg.FuelContractAddress, cfg.RPCURL)
	} else {
		log.Println("WARN: fuel ledger unconfigured; chat turns will be rejected.")
	}

	// 5. Initialize Services and Handlers
	titleService := services.NewTitleService(pgStore, genClient)
	chatService := services.NewChatService(pgStore, fuelReader, fuelDebiter, genClient, titleService)
	chatHandler := handlers.NewChatHandlers(chatService)

	router := api.NewRouter(api.RouterDependencies{ChatHandler: chatHandler})
	log.Println("HTTP router configured.")

	// 6. Configure and Start HTTP Server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second, // generation calls can be slow
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v", cfg.HTTPPort, err)
		}
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}
