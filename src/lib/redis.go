package lib

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrLockHeld = errors.New("room lock held by another request")

// RoomLocker serializes the availability check and insert for one room.
// Lock returns a release func that must be called once the insert settles.
type RoomLocker interface {
	Lock(ctx context.Context, roomID string) (release func(), err error)
}

func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	return redis.NewClient(opt), nil
}

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisRoomLocker struct {
	client   *redis.Client
	ttl      time.Duration
	logger   *zap.Logger
	newToken func() string
}

func NewRedisRoomLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisRoomLocker {
	return &RedisRoomLocker{
		client:   client,
		ttl:      ttl,
		logger:   logger,
		newToken: uuid.NewString,
	}
}

func roomLockKey(roomID string) string {
	return fmt.Sprintf("quickstay:room:%s:booking-lock", roomID)
}

func (l *RedisRoomLocker) Lock(ctx context.Context, roomID string) (func(), error) {
	key := roomLockKey(roomID)
	token := l.newToken()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring room lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func() {
		// request ctx may already be cancelled
		if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("room lock release failed", zap.String("room", roomID), zap.Error(err))
		}
	}, nil
}

// LocalRoomLocker is a single-process locker.
type LocalRoomLocker struct {
	mu    sync.Mutex
	rooms map[string]*sync.Mutex
}

func NewLocalRoomLocker() *LocalRoomLocker {
	return &LocalRoomLocker{rooms: make(map[string]*sync.Mutex)}
}

func (l *LocalRoomLocker) Lock(_ context.Context, roomID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.rooms[roomID]
	if !ok {
		m = &sync.Mutex{}
		l.rooms[roomID] = m
	}
	l.mu.Unlock()
	if !m.TryLock() {
		return nil, ErrLockHeld
	}
	return m.Unlock, nil
}

// NoopRoomLocker leaves concurrent bookings of one room unserialized.
type NoopRoomLocker struct{}

func (NoopRoomLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
