package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/cache"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/gomodule/redigo/redis"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// Pool hands out redis connections. *redis.Pool satisfies it.
type Pool interface {
	GetContext(ctx context.Context) (redis.Conn, error)
}

// RedisGames stores each record as a JSON snapshot under game:<id>. Updates
// hold a lease on game:<id>:lock so several server processes can share one
// redis.
type RedisGames struct {
	pool       Pool
	lockTTL    time.Duration
	retries    int
	retryDelay time.Duration
	log        *logrus.Entry
}

func NewRedisGames(pool Pool, lockTTL time.Duration) *RedisGames {
	return &RedisGames{
		pool:       pool,
		lockTTL:    lockTTL,
		retries:    10,
		retryDelay: 20 * time.Millisecond,
		log:        logrus.WithField("component", "redis-games"),
	}
}

func gameKey(id string) string { return "game:" + id }

func lockKey(id string) string { return "game:" + id + ":lock" }

func (s *RedisGames) Create(ctx context.Context, rec *models.GameRecord) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", rec.ID, err)
	}
	ok, err := cache.SetNX(gameKey(rec.ID), data, conn)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGameExists
	}
	return nil
}

func (s *RedisGames) Get(ctx context.Context, id string) (*models.GameRecord, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return s.load(id, conn)
}

func (s *RedisGames) load(id string, conn redis.Conn) (*models.GameRecord, error) {
	data, err := cache.Get(gameKey(id), conn)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := new(models.GameRecord)
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return rec, nil
}

func (s *RedisGames) Update(ctx context.Context, id string, fn func(g *engine.Game) error) (*models.GameRecord, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	token := uuid.NewV4().String()
	if err := s.lock(ctx, id, token, conn); err != nil {
		return nil, err
	}
	defer func() {
		if err := cache.Unlock(lockKey(id), token, conn); err != nil {
			s.log.WithError(err).WithField("game", id).Error("release lock")
		}
	}()

	rec, err := s.load(id, conn)
	if err != nil {
		return nil, err
	}
	if err := fn(engine.New(rec)); err != nil {
		return nil, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode game %s: %w", id, err)
	}
	if err := cache.Set(gameKey(id), data, conn); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RedisGames) lock(ctx context.Context, id, token string, conn redis.Conn) error {
	for attempt := 0; attempt < s.retries; attempt++ {
		ok, err := cache.Lock(lockKey(id), token, s.lockTTL, conn)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
	return ErrGameBusy
}

func (s *RedisGames) Delete(ctx context.Context, id string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return cache.Del(gameKey(id), conn)
}

func (s *RedisGames) IDs(ctx context.Context) ([]string, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	keys, err := cache.Keys("game:*", conn)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, key := range keys {
		if strings.HasSuffix(key, ":lock") {
			continue
		}
		ids = append(ids, strings.TrimPrefix(key, "game:"))
	}
	sort.Strings(ids)
	return ids, nil
}
