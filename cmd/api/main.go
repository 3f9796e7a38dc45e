package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	common_api "go-analytics/internal/common/api"
	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/config"
	"go-analytics/internal/database"
	"go-analytics/internal/features/analytics"
	"go-analytics/internal/features/artifact"
	"go-analytics/internal/features/chart"
	"go-analytics/internal/features/datastore"
	"go-analytics/internal/features/snapshot"
	"go-analytics/internal/features/system"
	"go-analytics/internal/logger"
	"go-analytics/internal/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             1 << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(common_models.Response{Success: false, Error: fe.Message})
			}
			return common_api.Error(c, err)
		},
	})

	app.Use(middleware.CORSMiddleware(cfg))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.PropagateRequestID())
	app.Use(middleware.AccessLog(log))
	app.Use(middleware.Recover(log))

	return app
}

// NewArtifactStore picks the configured storage backend at startup.
func NewArtifactStore(cfg *config.Config, log *zap.Logger) (artifact.ArtifactStore, error) {
	return artifact.NewArtifactStore(context.Background(), cfg, log)
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Info("routes registered", zap.Int("count", len(routes)))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				log.Info("listening", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					log.Fatal("server failed to start", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// StartSnapshots ties the snapshot scheduler to the app lifecycle.
func StartSnapshots(lc fx.Lifecycle, snapshotService snapshot.SnapshotService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return snapshotService.InitializeScheduler()
		},
		OnStop: func(ctx context.Context) error {
			return snapshotService.StopScheduler()
		},
	})
}

// @title           Restaurant Analytics API
// @version         1.0
// @description     Aggregation pipelines and chart rendering over restaurant order data.

// @host            localhost:8000
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			// Storage
			datastore.NewDocumentStore,
			datastore.NewExecutor,
			NewArtifactStore,
			chart.NewChartRepository,
			snapshot.NewSnapshotRepository,
			analytics.NewResultCache,

			// Services
			chart.NewBackend,
			chart.NewRenderer,
			datastore.NewDatastoreService,
			chart.NewChartService,
			analytics.NewAnalyticsService,
			snapshot.NewSnapshotService,

			// Controllers
			datastore.NewDatastoreController,
			chart.NewChartController,
			analytics.NewAnalyticsController,
			snapshot.NewSnapshotController,

			// Routes
			AsRoute(system.NewHealthApi),
			AsRoute(datastore.NewDatastoreApi),
			AsRoute(chart.NewChartApi),
			AsRoute(analytics.NewAnalyticsApi),
			AsRoute(snapshot.NewSnapshotApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartSnapshots,
		),
	)

	if err := app.Err(); err != nil {
		log.Fatalf("failed to build application: %v", err)
	}
	app.Run()
}
