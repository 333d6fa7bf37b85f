package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/log"
)

const keyPrefix = "session:"

type RedisStore struct {
	redisClient *redis.Client
}

func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Successfully connected to Redis", zap.String("address", addr), zap.Int("db", db))
	return &RedisStore{
		redisClient: client,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	fields, err := s.redisClient.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	sess := &Session{ID: id, Token: fields["token"]}
	if raw := fields["notice"]; raw != "" {
		var n Notice
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			log.Warn("Dropping unreadable session notice", zap.Error(err))
		} else {
			sess.Notice = &n
		}
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	key := keyPrefix + sess.ID
	notice := ""
	if sess.Notice != nil {
		raw, err := json.Marshal(sess.Notice)
		if err != nil {
			return fmt.Errorf("failed to encode notice: %w", err)
		}
		notice = string(raw)
	}

	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"token":  sess.Token,
			"notice": notice,
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redisClient.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.redisClient.Close()
}
