package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"order-mesh/internal/catalog"
	"order-mesh/internal/config"
	"order-mesh/internal/httpx"
	kafkax "order-mesh/internal/kafka"
	"order-mesh/internal/meshclient"
	"order-mesh/internal/orders"
	"order-mesh/internal/postgres"
	"order-mesh/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka publisher
	pub := kafkax.NewPublisher(cfg.KafkaBrokers)
	defer pub.Close()

	// Mesh client: sidecar first, direct fallback second.
	resolver := meshclient.StaticResolver{
		cfg.ProductAppID: {
			meshclient.NewSidecarTransport(cfg.SidecarAddr, cfg.ProductAppID),
			meshclient.NewDirectTransport(cfg.ProductBaseURL, cfg.DirectTimeout),
		},
	}
	mesh := meshclient.New(resolver, logger)
	cat := catalog.NewClient(mesh, cfg.ProductAppID)

	// Store: Postgres behind a Redis read-through cache.
	store := &redisx.CachedStore{Primary: &postgres.OrderStore{DB: db}, Redis: rdb}

	svc := orders.NewService(cat, store, pub, logger, cfg.ServiceName)

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Svc: svc}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
}
