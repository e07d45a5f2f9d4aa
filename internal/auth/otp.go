package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrInvalidOTP = errors.New("invalid or expired one-time password")

// MaxOTPAttempts is the number of wrong codes after which a pending code is dropped.
const MaxOTPAttempts = 5

// OTPStore keeps at most one pending code per email.
type OTPStore interface {
	// Save replaces the pending code and resets its failed attempts.
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Match reports whether code is the pending code for email and removes it on a match when
	// consume is set. A mismatch counts as a failed attempt; the code is dropped at MaxOTPAttempts.
	Match(ctx context.Context, email, code string, consume bool) (bool, error)
}

// OTPService issues and checks six digit login codes.
type OTPService struct {
	store OTPStore
	ttl   time.Duration
}

func NewOTPService(store OTPStore, ttl time.Duration) *OTPService {
	return &OTPService{store: store, ttl: ttl}
}

// Issue generates a code for email, replacing any pending one.
func (s *OTPService) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.store.Save(ctx, normalizeEmail(email), code, s.ttl); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the code. A code verifies at most once.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	return s.match(ctx, email, code, true)
}

// Check verifies the code without consuming it. Failures count the same as for Verify.
func (s *OTPService) Check(ctx context.Context, email, code string) error {
	return s.match(ctx, email, code, false)
}

func (s *OTPService) match(ctx context.Context, email, code string, consume bool) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidOTP
	}
	ok, err := s.store.Match(ctx, normalizeEmail(email), code, consume)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- In-memory store ---

type otpEntry struct {
	code     string
	expires  time.Time
	failures int
}

// MemoryOTPStore is the single-process store.
type MemoryOTPStore struct {
	mu    sync.Mutex
	codes map[string]otpEntry
	now   func() time.Time
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{codes: make(map[string]otpEntry), now: time.Now}
}

func (m *MemoryOTPStore) Save(_ context.Context, email, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = otpEntry{code: code, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryOTPStore) Match(_ context.Context, email, code string, consume bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.codes[email]
	if !ok {
		return false, nil
	}
	if m.now().After(entry.expires) {
		delete(m.codes, email)
		return false, nil
	}
	if entry.code != code {
		entry.failures++
		if entry.failures >= MaxOTPAttempts {
			delete(m.codes, email)
		} else {
			m.codes[email] = entry
		}
		return false, nil
	}
	if consume {
		delete(m.codes, email)
	}
	return true, nil
}

// Sweep drops expired codes and returns how many were removed.
func (m *MemoryOTPStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for email, entry := range m.codes {
		if now.After(entry.expires) {
			delete(m.codes, email)
			removed++
		}
	}
	return removed
}

// --- Redis store ---

const (
	otpKeyPrefix      = "tenantdesk:otp:"
	otpAttemptsPrefix = "tenantdesk:otp-attempts:"
)

// RedisOTPStore shares pending codes between API replicas. Expiry is the key TTL.
type RedisOTPStore struct {
	client *redis.Client
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

// Save writes the code and a zeroed attempts counter with the same TTL. INCR keeps the TTL.
func (r *RedisOTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, otpKeyPrefix+email, code, ttl)
		pipe.Set(ctx, otpAttemptsPrefix+email, 0, ttl)
		return nil
	})
	return err
}

func (r *RedisOTPStore) Match(ctx context.Context, email, code string, consume bool) (bool, error) {
	key := otpKeyPrefix + email
	stored, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stored != code {
		return false, r.fail(ctx, email)
	}
	if !consume {
		return true, nil
	}
	// Only the caller that deletes the key wins a concurrent race.
	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if deleted != 1 {
		return false, nil
	}
	return true, r.client.Del(ctx, otpAttemptsPrefix+email).Err()
}

func (r *RedisOTPStore) fail(ctx context.Context, email string) error {
	n, err := r.client.Incr(ctx, otpAttemptsPrefix+email).Result()
	if err != nil {
		return err
	}
	if n < MaxOTPAttempts {
		return nil
	}
	return r.client.Del(ctx, otpKeyPrefix+email, otpAttemptsPrefix+email).Err()
}
