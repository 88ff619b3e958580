package bootstrap

import (
	"context"
	"fmt"
	"time"

	"notesheet/internal/config"
	"notesheet/internal/controller"
	"notesheet/internal/handler"
	"notesheet/internal/offline"
	"notesheet/internal/pkg/logger"
	"notesheet/internal/pkg/serverutils"
	"notesheet/internal/repository/contract"
	"notesheet/internal/repository/implementation"
	"notesheet/internal/repository/memory"
	"notesheet/internal/service"
	"notesheet/internal/websocket"
	"notesheet/pkg/database"
	pktNats "notesheet/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	eventTopic        = "notesheet_events"
	redisSnapshotKeys = "notesheet:snapshot:"
	offlineFetchLimit = 15 * time.Second
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	NotebookController controller.INotebookController
	SheetController    controller.ISheetController
	EditorController   controller.IEditorController
	OfflineController  controller.IOfflineController
	Guard              fiber.Handler

	// Services
	NotebookService service.INotebookService
	EditorService   service.IEditorService
	ConsumerService service.IConsumerService

	// Offline cache
	OfflineLifecycle *offline.Lifecycle

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	closers []func()
}

func NewContainer(cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event bus. Publishers wait for the consumer so clients see events in order.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermillLogger,
	)

	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// Redis is optional: snapshot storage and cross-instance websocket fan-out.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("Container", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			sysLogger.Warn("Container", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	repo, err := NewSnapshotRepository(cfg.Storage, rdb)
	if err != nil {
		return nil, err
	}

	// NATS is optional: events are forwarded when it is configured.
	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Container", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	publisherService := service.NewPublisherService(eventTopic, pubSub)
	notificationService := service.NewNotificationService(c.WebSocketHub, forwarder, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, eventTopic, notificationService, sysLogger)

	c.NotebookService = service.NewNotebookService(repo, cfg.Storage.Key, publisherService, sysLogger)
	c.EditorService = service.NewEditorService(c.NotebookService, publisherService, cfg.Editor, sysLogger)

	fetcher, err := offline.NewHTTPFetcher(cfg.Offline.OriginURL, offlineFetchLimit)
	if err != nil {
		return nil, err
	}
	c.OfflineLifecycle, err = offline.NewLifecycle(
		offline.NewCacheStorage(),
		fetcher,
		offline.Manifest{Assets: cfg.Offline.Assets, FontURLs: cfg.Offline.FontURLs},
		cfg.Offline.ExcludePattern,
		sysLogger,
	)
	if err != nil {
		return nil, err
	}

	c.Guard = serverutils.NewJwtMiddleware(cfg.Auth.JWTSecret)
	c.NotebookController = controller.NewNotebookController(c.NotebookService, c.EditorService)
	c.SheetController = controller.NewSheetController(c.NotebookService, c.EditorService)
	c.EditorController = controller.NewEditorController(c.EditorService)
	c.OfflineController = controller.NewOfflineController(c.OfflineLifecycle, publisherService, sysLogger)
	c.NotificationHandler = handler.NewNotificationHandler(c.WebSocketHub, wsLogger)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// NewSnapshotRepository picks the snapshot backend named by cfg.Driver.
func NewSnapshotRepository(cfg config.StorageConfig, rdb *redis.Client) (contract.SnapshotRepository, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewSnapshotRepository(), nil
	case "file", "":
		return implementation.NewFileSnapshotRepository(cfg.Dir)
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("storage driver redis requires REDIS_URL")
		}
		return implementation.NewRedisSnapshotRepository(rdb, redisSnapshotKeys), nil
	case "postgres":
		if cfg.Connection == "" {
			return nil, fmt.Errorf("storage driver postgres requires DB_CONNECTION_STRING")
		}
		db, err := database.NewGormDBFromDSN(cfg.Connection)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return implementation.NewPostgresSnapshotRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
