package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/internal/domain/repository"
	"traveldesk-service/pkg/logger"
)

var (
	_ repository.ParseCache = (*Cache)(nil)
	_ repository.ArmLock    = (*Cache)(nil)
)

// Cache holds parsed itineraries keyed by input hash and the
// cross-replica arming locks for reminder timers. A nil *Cache is
// valid: every method degrades to a no-op, so the service runs without
// Redis configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewCache connects to Redis. An empty addr disables caching entirely.
func NewCache(addr, password string, db int, ttl time.Duration, log logger.Logger) *Cache {
	if addr == "" {
		log.Info("Redis not configured, parse cache and arm locks disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis ping failed, continuing with cache in degraded mode", "error", err)
	}

	return &Cache{client: client, ttl: ttl, logger: log}
}

// GetResult returns a cached parse for identical input text. Cache
// misses and cache errors look the same to the caller.
func (c *Cache) GetResult(ctx context.Context, rawText string) (*entity.ItineraryParseResult, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, parseKey(rawText)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Parse cache read failed", "error", err)
		}
		return nil, false
	}

	var result entity.ItineraryParseResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("Parse cache entry corrupt, ignoring", "error", err)
		return nil, false
	}
	return &result, true
}

// SetResult stores a successful parse. Failures are logged, never
// surfaced: a broken cache must not fail the pipeline.
func (c *Cache) SetResult(ctx context.Context, rawText string, result *entity.ItineraryParseResult) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("Parse cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, parseKey(rawText), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Parse cache write failed", "error", err)
	}
}

// AcquireArmLock claims one (record, offset) reminder across replicas.
// Without Redis every replica wins the claim, which is correct for a
// single-instance deployment.
func (c *Cache) AcquireArmLock(ctx context.Context, recordID string, offset entity.ReminderOffset, ttl time.Duration) bool {
	if c == nil {
		return true
	}

	ok, err := c.client.SetNX(ctx, armLockKey(recordID, offset), "armed", ttl).Result()
	if err != nil {
		c.logger.Warn("Arm lock acquire failed, assuming ownership", "recordId", recordID, "error", err)
		return true
	}
	return ok
}

// ReleaseArmLock frees the claim after a timer is cancelled.
func (c *Cache) ReleaseArmLock(ctx context.Context, recordID string, offset entity.ReminderOffset) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, armLockKey(recordID, offset)).Err(); err != nil {
		c.logger.Warn("Arm lock release failed", "recordId", recordID, "error", err)
	}
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func parseKey(rawText string) string {
	sum := sha256.Sum256([]byte(rawText))
	return "parse:" + hex.EncodeToString(sum[:])
}

func armLockKey(recordID string, offset entity.ReminderOffset) string {
	return fmt.Sprintf("arm:%s:%s", recordID, offset)
}
