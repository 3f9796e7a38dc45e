package datastore

import (
	"context"
	"errors"
	"strings"
	"time"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/config"
	"go-analytics/internal/features/pipeline"
	"go-analytics/internal/logger"
	"go-analytics/internal/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Executor runs pipelines against the document store. Each call is a single
// attempt; failures are classified, never retried.
type Executor interface {
	Execute(ctx context.Context, collection string, p pipeline.Pipeline) ([]ResultDocument, error)
	ExecuteRaw(ctx context.Context, collection string, stages []bson.D) ([]ResultDocument, error)
}

type ExecutorImpl struct {
	Store   DocumentStore
	Breaker *gobreaker.CircuitBreaker[[]bson.M]
	Logger  *zap.Logger
}

func NewExecutor(store DocumentStore, cfg *config.Config, log *zap.Logger) Executor {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	cb := gobreaker.NewCircuitBreaker[[]bson.M](gobreaker.Settings{
		Name:        "document-store",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A rejected pipeline or a caller that went away says nothing about
		// the health of the store
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, common_models.ErrInvalidPipeline) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &ExecutorImpl{Store: store, Breaker: cb, Logger: log}
}

func (e *ExecutorImpl) Execute(ctx context.Context, collection string, p pipeline.Pipeline) ([]ResultDocument, error) {
	return e.run(ctx, collection, p.Mongo(), len(p))
}

func (e *ExecutorImpl) ExecuteRaw(ctx context.Context, collection string, stages []bson.D) ([]ResultDocument, error) {
	if err := ValidateRawPipeline(stages); err != nil {
		return nil, err
	}
	p := make(mongo.Pipeline, len(stages))
	copy(p, stages)
	return e.run(ctx, collection, p, len(stages))
}

func (e *ExecutorImpl) run(ctx context.Context, collection string, p mongo.Pipeline, stageCount int) ([]ResultDocument, error) {
	start := time.Now()
	docs, err := e.Breaker.Execute(func() ([]bson.M, error) {
		docs, err := e.Store.Aggregate(ctx, collection, p)
		if err != nil {
			return nil, ClassifyError(err, "aggregate on %s", collection)
		}
		return docs, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = common_models.WrapError(common_models.KindDataSourceUnavailable, err, "aggregate on %s rejected", collection)
	}
	elapsed := time.Since(start)
	metrics.RecordAggregation(collection, err, elapsed)

	if err != nil {
		logger.For(ctx, e.Logger).Warn("aggregation failed",
			zap.String(logger.FieldOperation, "aggregate"),
			zap.String("collection", collection),
			zap.Int("stages", stageCount),
			zap.Error(err))
		return nil, err
	}

	logger.For(ctx, e.Logger).Debug("aggregation done",
		zap.String(logger.FieldOperation, "aggregate"),
		zap.String("collection", collection),
		zap.Int("stages", stageCount),
		zap.Int("documents", len(docs)),
		zap.Duration("elapsed", elapsed))
	return NormalizeAll(docs), nil
}

// ValidateRawPipeline checks the shape of a caller supplied pipeline: every
// stage is a document with exactly one "$"-prefixed operator.
func ValidateRawPipeline(stages []bson.D) error {
	for i, stage := range stages {
		if len(stage) != 1 {
			return common_models.NewError(common_models.KindInvalidPipeline, "stage %d must have exactly one operator, has %d keys", i, len(stage))
		}
		if !strings.HasPrefix(stage[0].Key, "$") {
			return common_models.NewError(common_models.KindInvalidPipeline, "stage %d operator %q must start with $", i, stage[0].Key)
		}
	}
	return nil
}

// ClassifyError maps a driver error onto the error taxonomy. Server side
// rejections are InvalidPipeline; transport, timeout and server selection
// failures are DataSourceUnavailable.
func ClassifyError(err error, format string, args ...any) error {
	return classify(err, common_models.KindInvalidPipeline, format, args...)
}

// classifyRequest is ClassifyError for passthroughs, where a server side
// rejection means the caller's filter or document was bad.
func classifyRequest(err error, format string, args ...any) error {
	return classify(err, common_models.KindInvalidRequest, format, args...)
}

func classify(err error, serverKind common_models.ErrorKind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var appErr *common_models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.Canceled) || errors.Is(err, mongo.ErrClientDisconnected) {
		return common_models.WrapError(common_models.KindDataSourceUnavailable, err, format, args...)
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return common_models.WrapError(serverKind, err, format, args...)
	}
	return common_models.WrapError(common_models.KindDataSourceUnavailable, err, format, args...)
}
