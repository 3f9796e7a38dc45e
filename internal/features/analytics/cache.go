package analytics

import (
	"bytes"
	"context"
	"errors"
	"time"

	"go-analytics/internal/config"
	"go-analytics/internal/features/datastore"
	"go-analytics/internal/features/pipeline"
	"go-analytics/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.uber.org/zap"
)

// ResultCache holds recent intent results. A cache failure is never fatal:
// lookups degrade to misses and writes are dropped. A hit returns the same
// value types as the aggregation that produced it.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]datastore.ResultDocument, bool)
	Set(ctx context.Context, key string, results []datastore.ResultDocument)
}

const cacheKeyPrefix = "analytics:intent:"

// CacheKey identifies one intent run. Params encode deterministically since
// they are a struct.
func CacheKey(intent string, params pipeline.Params) string {
	raw, err := json.Marshal(params)
	if err != nil {
		return cacheKeyPrefix + intent
	}
	return cacheKeyPrefix + intent + ":" + string(raw)
}

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

// NewResultCache connects to redis when an address is configured. Without
// one, or when the server cannot be reached, results are not cached.
func NewResultCache(cfg *config.Config, log *zap.Logger) ResultCache {
	if cfg.RedisAddr == "" {
		return NoopCache{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, result cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return NoopCache{}
	}

	log.Info("result cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	return &RedisCache{Client: rdb, TTL: cfg.CacheTTL, Logger: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]datastore.ResultDocument, bool) {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		c.Logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	results, err := decodeResults(raw)
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		c.Logger.Warn("cache entry unreadable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return results, true
}

func (c *RedisCache) Set(ctx context.Context, key string, results []datastore.ResultDocument) {
	raw, err := encodeResults(results)
	if err != nil {
		c.Logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.Client.Set(ctx, key, raw, c.TTL).Err(); err != nil {
		c.Logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// cachedRows wraps results so they encode as one BSON document.
type cachedRows struct {
	Rows []datastore.ResultDocument `bson:"rows"`
}

// encodeResults writes canonical extended JSON, which keeps int32, int64,
// Decimal128 and DateTime values distinct.
func encodeResults(results []datastore.ResultDocument) ([]byte, error) {
	return bson.MarshalExtJSON(cachedRows{Rows: results}, true, false)
}

func decodeResults(raw []byte) ([]datastore.ResultDocument, error) {
	vr, err := bsonrw.NewExtJSONValueReader(bytes.NewReader(raw), true)
	if err != nil {
		return nil, err
	}
	dec, err := bson.NewDecoder(vr)
	if err != nil {
		return nil, err
	}
	// nested documents come back as bson.M, like the database handle's reads
	dec.DefaultDocumentM()

	var out cachedRows
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out.Rows == nil {
		out.Rows = []datastore.ResultDocument{}
	}
	return out.Rows, nil
}

// NoopCache never holds anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]datastore.ResultDocument, bool) { return nil, false }

func (NoopCache) Set(context.Context, string, []datastore.ResultDocument) {}
