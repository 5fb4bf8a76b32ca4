package kpistore

import (
	"context"
	"fmt"
	"freightflow/internal/kpi"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "freightflow:kpi:"

const (
	fieldRoutes     = "routes"
	fieldHighRisk   = "high_risk"
	fieldMoneySaved = "money_saved"
)

// NewRedisClient creates a client and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// InstanceKey returns a hash key unique to this process, so each process
// starts its cumulative totals from zero.
func InstanceKey() string {
	return keyPrefix + uuid.NewString()
}

// RedisCounters keeps cumulative KPI totals in a Redis hash. Each Record is
// one MULTI/EXEC so concurrent writers never see a half-applied update.
type RedisCounters struct {
	client *redis.Client
	key    string
}

var _ kpi.Aggregator = (*RedisCounters)(nil)

func NewRedisCounters(client *redis.Client, key string) *RedisCounters {
	if key == "" {
		key = InstanceKey()
	}
	return &RedisCounters{client: client, key: key}
}

func (r *RedisCounters) Key() string { return r.key }

func (r *RedisCounters) Record(ctx context.Context, delayed bool, saved float64) error {
	var highRisk int64
	if delayed {
		highRisk = 1
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, r.key, fieldRoutes, 1)
		pipe.HIncrBy(ctx, r.key, fieldHighRisk, highRisk)
		pipe.HIncrByFloat(ctx, r.key, fieldMoneySaved, saved)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis kpi record: %w", err)
	}
	return nil
}

func (r *RedisCounters) Snapshot(ctx context.Context) (kpi.Snapshot, error) {
	vals, err := r.client.HMGet(ctx, r.key, fieldRoutes, fieldHighRisk, fieldMoneySaved).Result()
	if err != nil {
		return kpi.Snapshot{}, fmt.Errorf("redis kpi snapshot: %w", err)
	}

	routes, err := parseInt(vals[0])
	if err != nil {
		return kpi.Snapshot{}, fmt.Errorf("redis kpi snapshot: %s: %w", fieldRoutes, err)
	}
	if routes == 0 {
		return kpi.Snapshot{}, nil
	}
	highRisk, err := parseInt(vals[1])
	if err != nil {
		return kpi.Snapshot{}, fmt.Errorf("redis kpi snapshot: %s: %w", fieldHighRisk, err)
	}
	saved, err := parseFloat(vals[2])
	if err != nil {
		return kpi.Snapshot{}, fmt.Errorf("redis kpi snapshot: %s: %w", fieldMoneySaved, err)
	}

	return kpi.Snapshot{
		DelayPct:   float64(highRisk) / float64(routes),
		MoneySaved: saved,
		Routes:     int(routes),
	}, nil
}

// HMGet yields nil for missing fields and strings otherwise.
func parseInt(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseFloat(v any) (float64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
