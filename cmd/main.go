package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	cartpb "github.com/fjod/go_cart/cart-service/pkg/proto"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/fjod/go_cart/pickup-service/internal/cache"
	"github.com/fjod/go_cart/pickup-service/internal/config"
	h "github.com/fjod/go_cart/pickup-service/internal/http"
	"github.com/fjod/go_cart/pickup-service/internal/metrics"
	"github.com/fjod/go_cart/pickup-service/internal/notes"
	"github.com/fjod/go_cart/pickup-service/internal/poller"
	"github.com/fjod/go_cart/pickup-service/internal/repository"
	"github.com/fjod/go_cart/pickup-service/internal/seed"
	"github.com/fjod/go_cart/pickup-service/internal/service"
	"github.com/fjod/go_cart/pickup-service/internal/store"
)

// backend is the set of read ports plus the cleanup of the connections behind them
type backend struct {
	collaborators service.Collaborators
	notes         store.NoteReader
	close         func()
}

func main() {
	log.Println("pickup-service starting...")
	cfg := config.Load()
	ctx := context.Background()
	reg := metrics.NewRegistry()

	var (
		b   *backend
		err error
	)
	switch cfg.DataBackend {
	case config.BackendMongo:
		b, err = mongoBackend(ctx, cfg)
	case config.BackendMemory:
		b, err = memoryBackend(ctx)
	default:
		log.Fatalf("Unknown DATA_BACKEND %q", cfg.DataBackend)
	}
	if err != nil {
		log.Fatalf("Failed to set up %s backend: %v", cfg.DataBackend, err)
	}
	defer b.close()

	var (
		wg           sync.WaitGroup
		settings     *poller.Poller
		pollerCancel context.CancelFunc = func() {}
	)
	if cfg.DataBackend == config.BackendMongo {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Printf("Redis ping succeeded")

		noteService := notes.NewService(b.notes, cache.NewRedisCache(redisClient, cfg.NoteCacheTTL), reg)
		b.collaborators.Notes = noteService

		settings = poller.NewPoller(noteService, cfg.SettingsTopic, cfg.KafkaBrokers...)
		var pollerCtx context.Context
		pollerCtx, pollerCancel = context.WithCancel(context.Background())
		wg.Add(1)
		go func() {
			defer wg.Done()
			settings.Run(pollerCtx)
		}()
	}

	// Set up gRPC connection to Cart Service
	cartServiceConn, err := grpc.NewClient(
		cfg.CartServiceAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		log.Fatalf("Failed to connect to cart service: %v", err)
	}
	defer cartServiceConn.Close()

	cartClient := cartpb.NewCartServiceClient(cartServiceConn)
	b.collaborators.Cart = store.Some(service.NewCartHandler(cartClient, cfg.RequestTimeout))

	pickupService := service.NewPickupService(b.collaborators, reg, cfg.ResolveWorkers)
	pickupHandler := h.NewPickupHandler(pickupService, cfg.RequestTimeout)
	router := h.NewRouter(pickupHandler, reg, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "pickup-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Pickup service starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	pollerCancel()
	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("Settings poller stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("Settings poller didn't stop in time")
	}
	if settings != nil {
		settings.Close()
	}

	log.Println("server exited")
}

func memoryBackend(ctx context.Context) (*backend, error) {
	mem := store.NewMemoryStore()
	if err := seed.Apply(ctx, seed.Memory(mem)); err != nil {
		return nil, err
	}
	log.Printf("Using in-memory backend seeded with store %q", seed.DemoStoreID)

	return &backend{
		collaborators: service.Collaborators{
			Stores:    mem,
			Products:  mem,
			Notes:     mem,
			Shipping:  store.Some[store.ShippingMethodSearcher](mem),
			Inventory: store.Some[store.InventorySearcher](mem),
			Locations: store.Some[store.LocationSearcher](mem),
		},
		notes: mem,
		close: func() {},
	}, nil
}

func mongoBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	catalog, err := repository.NewCatalogRepository(cfg.SQLDriver, cfg.SQLDSN)
	if err != nil {
		_ = repository.DisconnectMongoDB(mongoDB, cfg.ShutdownTimeout)
		return nil, err
	}
	if err := catalog.RunMigrations(cfg.MigrationsPath); err != nil {
		catalog.Close()
		_ = repository.DisconnectMongoDB(mongoDB, cfg.ShutdownTimeout)
		return nil, err
	}
	log.Println("Database migrations completed")

	stores := repository.NewStoreRepository(mongoDB)
	locations := repository.NewLocationRepository(mongoDB)
	noteRepo := repository.NewNoteRepository(mongoDB)
	if err := locations.EnsureIndexes(ctx); err != nil {
		log.Printf("failed to ensure location indexes: %v", err)
	}

	if cfg.SeedDemoData {
		err := seed.Apply(ctx, seed.Repositories{
			StoreRepository:    stores,
			LocationRepository: locations,
			NoteRepository:     noteRepo,
			CatalogInterface:   catalog,
		})
		if err != nil {
			log.Printf("failed to seed demo data: %v", err)
		} else {
			log.Printf("Seeded demo store %q", seed.DemoStoreID)
		}
	}

	return &backend{
		collaborators: service.Collaborators{
			Stores:    stores,
			Products:  catalog,
			Notes:     noteRepo,
			Shipping:  store.Some[store.ShippingMethodSearcher](stores),
			Inventory: store.Some[store.InventorySearcher](catalog),
			Locations: store.Some[store.LocationSearcher](locations),
		},
		notes: noteRepo,
		close: func() {
			if err := catalog.Close(); err != nil {
				log.Printf("error closing catalog database: %v", err)
			}
			if err := repository.DisconnectMongoDB(mongoDB, cfg.ShutdownTimeout); err != nil {
				log.Printf("error disconnecting MongoDB: %v", err)
			}
		},
	}, nil
}
