package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clownfish2023/web3fans/internal/access"
	"github.com/clownfish2023/web3fans/internal/blobstore"
	"github.com/clownfish2023/web3fans/internal/config"
	"github.com/clownfish2023/web3fans/internal/database"
	"github.com/clownfish2023/web3fans/internal/group"
	"github.com/clownfish2023/web3fans/internal/keyvault"
	"github.com/clownfish2023/web3fans/internal/report"
	"github.com/clownfish2023/web3fans/internal/subscription"
	"github.com/clownfish2023/web3fans/internal/wallet"
	"github.com/clownfish2023/web3fans/pkg/logger"
	mw "github.com/clownfish2023/web3fans/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zapLogger, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		zapLogger.Fatal("Failed to apply schema", zap.Error(err))
	}
	zapLogger.Info("Connected to database")

	// Badger backs the blob store and the key vault
	badgerOpts := badger.DefaultOptions(cfg.DataDir)
	badgerOpts.Logger = nil
	kv, err := badger.Open(badgerOpts)
	if err != nil {
		zapLogger.Fatal("Failed to open data store", zap.Error(err))
	}
	defer kv.Close()

	masterKey, err := loadMasterKey(cfg.VaultMasterKey, zapLogger)
	if err != nil {
		zapLogger.Fatal("Invalid VAULT_MASTER_KEY", zap.Error(err))
	}

	vault, err := keyvault.New(kv, masterKey)
	if err != nil {
		zapLogger.Fatal("Failed to initialize key vault", zap.Error(err))
	}
	blobs := blobstore.New(kv)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, zapLogger)
	groupHandler := group.NewHandler(groupService)

	// Subscription feature
	subscriptionRepo := subscription.NewRepository(db)
	subscriptionService := subscription.NewService(subscriptionRepo, zapLogger)
	subscriptionHandler := subscription.NewHandler(subscriptionService)

	// Report feature
	reportRepo := report.NewRepository(db)
	reportService, err := report.NewService(reportRepo, groupService, blobs, vault, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize report service", zap.Error(err))
	}
	reportHandler := report.NewHandler(reportService)

	// Access feature
	accessService := access.NewService(subscriptionService, groupService, reportService, vault, zapLogger)
	accessHandler := access.NewHandler(accessService)

	// Wallet feature
	walletRepo := wallet.NewRepository(db)
	walletService := wallet.NewService(walletRepo)
	walletHandler := wallet.NewHandler(walletService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mw.RequestLogger(zapLogger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Principal)

		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/subscriptions", subscriptionHandler.Routes())
		r.Mount("/reports", reportHandler.Routes())
		r.Mount("/access", accessHandler.Routes())
		r.Mount("/wallets", walletHandler.Routes())
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		zapLogger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Fatal("Server failed", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}

// loadMasterKey decodes the configured vault master key. With no key
// configured an ephemeral one is generated, which makes sealed material
// unreadable after restart; fine for development, never for production.
func loadMasterKey(hexKey string, zapLogger *zap.Logger) ([]byte, error) {
	if hexKey == "" {
		zapLogger.Warn("VAULT_MASTER_KEY not set, generating ephemeral key (DEV ONLY)")
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		return key, nil
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, keyvault.ErrInvalidMasterKey
	}
	return key, nil
}
