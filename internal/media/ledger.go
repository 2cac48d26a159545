package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Ledger remembers uploaded objects that no listing references yet.
type Ledger interface {
	Track(ctx context.Context, key string, at time.Time) error
	Release(ctx context.Context, keys ...string) error
	Expired(ctx context.Context, before time.Time) ([]string, error)
}

// OpenLedger returns the ledger for driver: "gorm" (default) or "redis".
func OpenLedger(ctx context.Context, driver string, db *gorm.DB, redisAddr string) (Ledger, error) {
	switch strings.ToLower(driver) {
	case "", "gorm":
		return NewGormLedger(db), nil
	case "redis":
		if redisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR required for redis ledger")
		}
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return NewRedisLedger(client), nil
	default:
		return nil, fmt.Errorf("unknown ledger driver: %s", driver)
	}
}

// GormLedger keeps pending uploads in the pending_uploads table.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) Track(ctx context.Context, key string, at time.Time) error {
	row := models.PendingUpload{ObjectKey: key, TrackedAt: at.UnixMilli()}
	return l.db.WithContext(ctx).Save(&row).Error
}

func (l *GormLedger) Release(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return l.db.WithContext(ctx).Where("object_key IN ?", keys).Delete(&models.PendingUpload{}).Error
}

func (l *GormLedger) Expired(ctx context.Context, before time.Time) ([]string, error) {
	var keys []string
	err := l.db.WithContext(ctx).Model(&models.PendingUpload{}).
		Where("tracked_at < ?", before.UnixMilli()).
		Order("tracked_at").
		Pluck("object_key", &keys).Error
	return keys, err
}

const redisLedgerKey = "storefront:pending_uploads"

// RedisLedger keeps pending uploads in a sorted set scored by upload time.
type RedisLedger struct {
	client *redis.Client
	key    string
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client, key: redisLedgerKey}
}

func (l *RedisLedger) Track(ctx context.Context, key string, at time.Time) error {
	return l.client.ZAdd(ctx, l.key, redis.Z{Score: float64(at.UnixMilli()), Member: key}).Err()
}

func (l *RedisLedger) Release(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	members := make([]any, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	return l.client.ZRem(ctx, l.key, members...).Err()
}

func (l *RedisLedger) Expired(ctx context.Context, before time.Time) ([]string, error) {
	return l.client.ZRangeByScore(ctx, l.key, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before.UnixMilli(), 10),
	}).Result()
}
