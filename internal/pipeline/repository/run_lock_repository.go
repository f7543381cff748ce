package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"golang-news-insight/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RunLockRepository hands out exclusive leases keyed by name. A lease that is
// neither refreshed nor released expires after its ttl.
type RunLockRepository interface {
	// TryAcquire returns ok=false without error when the lease is held elsewhere.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (lease Lease, ok bool, err error)
}

// Lease is a held run lock.
type Lease interface {
	// Refresh extends the lease by its ttl. It returns false when the lease
	// has expired or was taken over.
	Refresh(ctx context.Context) (bool, error)
	// Release gives the lease up. Calling it more than once is harmless.
	Release()
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript extends the key's ttl only if it still holds our token.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type redisRunLockRepository struct {
	client *redis.Client
	logger *logger.Logger
}

// NewRedisRunLockRepository creates a lease store shared by every process
// connected to the same Redis.
func NewRedisRunLockRepository(client *redis.Client, log *logger.Logger) RunLockRepository {
	return &redisRunLockRepository{client: client, logger: log}
}

func (r *redisRunLockRepository) TryAcquire(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	token, err := newLockToken()
	if err != nil {
		return nil, false, err
	}

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{repo: r, key: key, token: token, ttl: ttl}, true, nil
}

type redisLease struct {
	repo  *redisRunLockRepository
	key   string
	token string
	ttl   time.Duration
	once  sync.Once
}

func (l *redisLease) Refresh(ctx context.Context) (bool, error) {
	if l.ttl <= 0 {
		return true, nil
	}
	n, err := refreshScript.Run(ctx, l.repo.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to refresh lock %s: %w", l.key, err)
	}
	return n == 1, nil
}

func (l *redisLease) Release() {
	l.once.Do(func() {
		// the caller's context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.repo.client, []string{l.key}, l.token).Err(); err != nil {
			l.repo.logger.Warn("failed to release lock", logger.StringField("key", l.key), logger.ErrorField(err))
		}
	})
}

func newLockToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// heldLease is a local lease entry. A zero expiry lasts until released.
type heldLease struct {
	id      uint64
	expires time.Time
}

type localRunLockRepository struct {
	mu     sync.Mutex
	leases map[string]heldLease
	nextID uint64
	now    func() time.Time
}

// NewLocalRunLockRepository creates an in-process lease store, used when no
// Redis is configured.
func NewLocalRunLockRepository() RunLockRepository {
	return newLocalRunLockRepository(time.Now)
}

func newLocalRunLockRepository(now func() time.Time) *localRunLockRepository {
	return &localRunLockRepository{
		leases: make(map[string]heldLease),
		now:    now,
	}
}

func (r *localRunLockRepository) TryAcquire(_ context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if held, ok := r.leases[key]; ok && r.live(held, now) {
		return nil, false, nil
	}

	r.nextID++
	r.leases[key] = heldLease{id: r.nextID, expires: expiry(now, ttl)}
	return &localLease{repo: r, key: key, id: r.nextID, ttl: ttl}, true, nil
}

func (r *localRunLockRepository) live(held heldLease, now time.Time) bool {
	return held.expires.IsZero() || now.Before(held.expires)
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

type localLease struct {
	repo *localRunLockRepository
	key  string
	id   uint64
	ttl  time.Duration
	once sync.Once
}

func (l *localLease) Refresh(context.Context) (bool, error) {
	l.repo.mu.Lock()
	defer l.repo.mu.Unlock()

	now := l.repo.now()
	held, ok := l.repo.leases[l.key]
	if !ok || held.id != l.id || !l.repo.live(held, now) {
		return false, nil
	}
	held.expires = expiry(now, l.ttl)
	l.repo.leases[l.key] = held
	return true, nil
}

func (l *localLease) Release() {
	l.once.Do(func() {
		l.repo.mu.Lock()
		defer l.repo.mu.Unlock()
		if held, ok := l.repo.leases[l.key]; ok && held.id == l.id {
			delete(l.repo.leases, l.key)
		}
	})
}
