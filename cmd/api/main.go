package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"ordena.org/internal/audit"
	"ordena.org/internal/httpapi"
	"ordena.org/internal/obs"
	"ordena.org/internal/order"
	"ordena.org/internal/order/cache"
	orderpg "ordena.org/internal/order/pg"
	"ordena.org/internal/product"
	"ordena.org/internal/token"
	"ordena.org/internal/userdir"
)

var version = "0.3.1"

func main() {
	obs.Init()

	secret := os.Getenv("ORDENA_AUTH_SECRET")
	if secret == "" {
		log.Fatal("ORDENA_AUTH_SECRET is required")
	}
	codecOpts := []token.Option{}
	if iss := os.Getenv("ORDENA_TOKEN_ISSUER"); iss != "" {
		codecOpts = append(codecOpts, token.WithIssuer(iss))
	}
	codec, err := token.NewCodec([]byte(secret), codecOpts...)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	userdirURL := os.Getenv("ORDENA_USERDIR_URL")
	if userdirURL == "" {
		log.Fatal("ORDENA_USERDIR_URL is required")
	}
	owners, err := userdir.NewClient(userdirURL)
	if err != nil {
		log.Fatalf("user directory client: %v", err)
	}

	// Storage: Postgres when a DSN is configured, in-memory otherwise.
	var (
		orderRepo   order.Repository
		productRepo product.Repository
		probe       httpapi.ReadyProbe
		recorder    order.AuditRecorder
	)
	if dsn := os.Getenv("ORDENA_PG_DSN"); dsn != "" {
		store, err := orderpg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer store.Close()
		orderRepo = store
		productRepo = product.NewPGStore(store.DB())
		probe = httpapi.ReadyProbe{DB: store.DB()}
		recorder = audit.NewPGRecorder(store.DB())
	} else {
		orderRepo = order.NewInMemory()
		productRepo = product.NewInMemory()
		recorder = audit.NewLogRecorder()
	}

	// List cache: Redis when configured, per-process otherwise.
	var listCache order.ListCache
	if addr := os.Getenv("ORDENA_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer func() { _ = client.Close() }()
		listCache = cache.NewRedis(client, 30*time.Second)
	} else {
		listCache = cache.NewMemory()
	}

	orders, err := order.NewService(codec, orderRepo, owners,
		order.WithListCache(listCache),
		order.WithAudit(recorder),
	)
	if err != nil {
		log.Fatalf("order service: %v", err)
	}
	products := product.NewService(productRepo)

	api := httpapi.New(orders, products, probe, version)

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting ordena-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
