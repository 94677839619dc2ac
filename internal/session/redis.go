package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/jonboulle/clockwork"
)

const sessionKeyPrefix = "session:"

// Redis stores sessions as JSON values with the inactivity window as the key
// TTL, so expiry needs no sweeper and survives process restarts.
type Redis struct {
	rdb   goredis.Cmdable
	ttl   time.Duration
	clock clockwork.Clock
}

func NewRedis(rdb goredis.Cmdable, ttl time.Duration, clock clockwork.Clock) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, clock: clock}
}

func sessionKey(adminID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(adminID, 10)
}

func (r *Redis) Get(ctx context.Context, adminID int64) (domain.Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(adminID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.IdleSession(), nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt session is not worth failing a chat update over.
		return domain.IdleSession(), nil
	}
	return s, nil
}

func (r *Redis) Put(ctx context.Context, adminID int64, s domain.Session) error {
	s.UpdatedAt = r.clock.Now()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(adminID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, adminID int64) error {
	if err := r.rdb.Del(ctx, sessionKey(adminID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
