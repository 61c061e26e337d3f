package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"warehouse/internal/config"
	"warehouse/internal/events"
	"warehouse/internal/handlers"
	"warehouse/internal/middleware"
	"warehouse/internal/models"
	"warehouse/internal/observability"
	"warehouse/internal/repositories"
	"warehouse/internal/services"
	"warehouse/pkg/kafka"
	"warehouse/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(config.New())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// --- Tracing ---
	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg)
	if err != nil {
		logger.Warn("Tracing disabled", zap.Error(err))
	}

	// --- Stores ---
	st, err := openStores(cfg)
	if err != nil {
		logger.Fatal("Failed to open stores", zap.Error(err))
	}
	defer st.close()

	if cfg.SeedProducts {
		seedProducts(st.products, logger)
	}

	// --- Events ---
	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize event publisher", zap.Error(err))
	}
	defer publisher.Close()

	if client, ok := publisher.(*rabbitmq.Client); ok && cfg.RabbitMQConsume {
		if err := client.ConsumeStockEvents(rabbitmq.LogStockEvent(logger)); err != nil {
			logger.Error("Failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	// --- Service and HTTP ---
	service := services.NewWarehouseService(st.products, st.movements, publisher, logger)
	app := newApp(cfg, service, logger)

	logger.Info("Starting server",
		zap.String("port", cfg.AppPort),
		zap.String("store", cfg.DatabaseDriver),
		zap.String("broker", cfg.EventsBroker),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Error during Fiber shutdown", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server gracefully stopped")
}

// newApp builds the Fiber app with middleware, the warehouse API and the health check.
func newApp(cfg *config.Config, service *services.WarehouseService, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{AppName: config.ServiceName})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))

	handlers.NewWarehouseHandler(service, logger).RegisterRoutes(app.Group("/api"))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  cfg.DatabaseDriver,
			"broker": cfg.EventsBroker,
		})
	})

	return app
}

type stores struct {
	products  repositories.ProductRepository
	movements repositories.MovementRepository
	close     func() error
}

// openStores returns the product and movement repositories for the configured driver.
func openStores(cfg *config.Config) (*stores, error) {
	if cfg.DatabaseDriver == "memory" {
		return &stores{
			products:  repositories.NewMemoryProductRepository(),
			movements: repositories.NewMemoryMovementRepository(),
			close:     func() error { return nil },
		}, nil
	}

	db, err := repositories.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	return &stores{
		products:  repositories.NewGORMProductRepository(db),
		movements: repositories.NewGORMMovementRepository(db),
		close:     sqlDB.Close,
	}, nil
}

// newPublisher returns the stock event publisher for the configured broker.
func newPublisher(cfg *config.Config, logger *zap.Logger) (events.Publisher, error) {
	switch cfg.EventsBroker {
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "kafka":
		return kafka.NewPublisher(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}, logger), nil
	default:
		return events.NopPublisher{}, nil
	}
}

// seedProducts populates an empty product repository with sample data.
func seedProducts(repo repositories.ProductRepository, logger *zap.Logger) {
	existing, err := repo.List()
	if err != nil {
		logger.Error("Error checking products before seeding", zap.Error(err))
		return
	}
	if len(existing) > 0 {
		return
	}

	products := []models.Product{
		{ID: 1, Name: "Ceramic Capacitor 100nF", InStockQuantity: 500, ReservedQuantity: 20},
		{ID: 2, Name: "Film Resistor 10k", InStockQuantity: 1000, ReservedQuantity: 0},
		{ID: 3, Name: "Signal Relay 5V", InStockQuantity: 40, ReservedQuantity: 40},
		{ID: 4, Name: "Crystal Oscillator 16MHz", InStockQuantity: 12, ReservedQuantity: 8},
		{ID: 5, Name: "USB-C Connector", InStockQuantity: 0, ReservedQuantity: 0},
	}

	for i := range products {
		if err := repo.Insert(&products[i]); err != nil {
			logger.Error("Error seeding product", zap.String("name", products[i].Name), zap.Error(err))
			continue
		}
		logger.Debug("Seeded product", zap.String("name", products[i].Name), zap.Int64("id", products[i].ID))
	}
}
