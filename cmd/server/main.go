package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thiop/delivery/internal/auth"
	"github.com/thiop/delivery/internal/cart"
	"github.com/thiop/delivery/internal/catalog"
	"github.com/thiop/delivery/internal/events"
	"github.com/thiop/delivery/internal/httpapi"
	"github.com/thiop/delivery/internal/odoo"
	"github.com/thiop/delivery/internal/orders"
	"github.com/thiop/delivery/internal/storage"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	StorageBackend string
	RedisAddr      string
	RedisPassword  string
	MongoURI       string
	MongoDBName    string
	Postgres       storage.Credentials

	KafkaBrokers string

	Odoo odoo.Config
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}
	odooUserID, err := strconv.Atoi(getEnv("ODOO_USER_ID", "2"))
	if err != nil {
		log.Fatalf("Invalid ODOO_USER_ID: %v", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		StorageBackend: getEnv("STORAGE_BACKEND", "redis"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "deliverydb"),
		Postgres: storage.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "delivery"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/storage/migrations"),
		},

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		Odoo: odoo.Config{
			Endpoint: getEnv("ODOO_URL", "http://localhost:8069/jsonrpc"),
			Database: getEnv("ODOO_DB", "odoo_db_thiop"),
			UserID:   odooUserID,
			APIKey:   getEnv("ODOO_API_KEY", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func buildStore(ctx context.Context, cfg *Config) (storage.Store, func(), error) {
	switch cfg.StorageBackend {
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		log.Printf("Connected to Redis at %s", cfg.RedisAddr)
		return storage.NewRedisStore(client), func() { client.Close() }, nil

	case "mongo":
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Connected to MongoDB at %s", cfg.MongoURI)
		return storage.NewMongoStore(db), func() { db.Client().Disconnect(ctx) }, nil

	case "postgres":
		store, err := storage.NewPostgresStore(&cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := store.RunMigrations(&cfg.Postgres); err != nil {
			return nil, nil, err
		}
		log.Printf("Connected to postgres at %s:%d", cfg.Postgres.Host, cfg.Postgres.Port)
		return store, func() { store.Close() }, nil

	default:
		return nil, nil, errors.New("unknown STORAGE_BACKEND: " + cfg.StorageBackend)
	}
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up storage backend %q: %v", cfg.StorageBackend, err)
	}
	defer closeStore()

	odooClient := odoo.NewClient(cfg.Odoo)
	catalogService := catalog.NewService(odooClient)
	authService := auth.NewService(odooClient, store)
	cartEngine := cart.NewEngine(store)

	var publisher orders.Publisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Printf("Publishing order events to %s", cfg.KafkaBrokers)
	}

	ledger := orders.NewLedger(store, cartEngine, publisher)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Cart:           cartEngine,
		Orders:         ledger,
		Catalog:        catalogService,
		Auth:           authService,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Delivery backend listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
