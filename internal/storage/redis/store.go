package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/revgate-io/revgate/internal/core/domain"
)

// keyPrefix namespaces RevGate records in a possibly shared Redis.
const keyPrefix = "revgate:revoked:"

// Default client configuration values.
const (
	DefaultAddr         = "127.0.0.1:6379"
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
	DefaultPoolSize     = 10
)

// Config holds the Redis connection configuration.
type Config struct {
	// Addr is the host:port of the Redis server.
	Addr string
	// Password is the optional AUTH password.
	Password string
	// DB is the logical database number.
	DB int
	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration
	// ReadTimeout bounds individual read commands.
	ReadTimeout time.Duration
	// WriteTimeout bounds individual write commands.
	WriteTimeout time.Duration
	// PoolSize is the connection pool size.
	PoolSize int

	// Logger is the structured logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default Redis configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         DefaultAddr,
		DialTimeout:  DefaultDialTimeout,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		PoolSize:     DefaultPoolSize,
	}
}

// record is the wire form of a revocation record.
type record struct {
	TokenID   string `json:"token_id"`
	RevokedAt int64  `json:"revoked_at"`
	ExpiresAt int64  `json:"expires_at"`
	Reason    string `json:"reason"`
}

// Store is the Redis-backed shared revocation tier.
type Store struct {
	client *redis.Client
	logger *slog.Logger
}

// New creates a Redis store. It does not dial; call Ping to verify
// connectivity.
func New(cfg Config) *Store {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	return &Store{client: client, logger: cfg.Logger}
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(client *redis.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, logger: logger}
}

// Put stores a revocation record under the token's key with the given TTL.
func (s *Store) Put(ctx context.Context, rec *domain.RevocationRecord, ttl time.Duration) error {
	data, err := json.Marshal(record{
		TokenID:   rec.TokenID,
		RevokedAt: rec.RevokedAt,
		ExpiresAt: rec.ExpiresAt,
		Reason:    rec.Reason,
	})
	if err != nil {
		return domain.ErrInternal.WithCause(err)
	}

	if err := s.client.Set(ctx, keyFor(rec.TokenID), data, ttl).Err(); err != nil {
		return domain.ErrSharedTierUnavailable.WithCause(err)
	}
	return nil
}

// Get retrieves a revocation record by token ID.
//
// Returns domain.ErrTokenNotFound when no record exists and
// domain.ErrSharedTierUnavailable on transport failures.
func (s *Store) Get(ctx context.Context, tokenID string) (*domain.RevocationRecord, error) {
	data, err := s.client.Get(ctx, keyFor(tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, domain.ErrSharedTierUnavailable.WithCause(err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt value is indistinguishable from an outage for the
		// caller: the tier cannot answer for this token.
		s.logger.Error("corrupt revocation record in redis",
			"token_id", domain.MaskTokenID(tokenID),
			"error", err)
		return nil, domain.ErrSharedTierUnavailable.WithCause(err)
	}

	return &domain.RevocationRecord{
		TokenID:   rec.TokenID,
		RevokedAt: rec.RevokedAt,
		ExpiresAt: rec.ExpiresAt,
		Reason:    rec.Reason,
	}, nil
}

// Ping verifies the Redis server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return domain.ErrSharedTierUnavailable.WithCause(err)
	}
	return nil
}

// Close releases the client's connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func keyFor(tokenID string) string {
	return fmt.Sprintf("%s%s", keyPrefix, tokenID)
}
