package audit

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/revgate-io/revgate/internal/core/domain"
)

// Archive errors.
var (
	ErrEntryNotFound = errors.New("audit: entry not found")
	ErrClosed        = errors.New("audit: archive closed")
)

// Default configuration values.
const (
	DefaultGCInterval  = 10 * time.Minute
	DefaultGCThreshold = 0.5

	entryKeyPrefix = "rev:"
)

// Entry is one archived revocation.
type Entry struct {
	TokenID    string `json:"token_id"`
	OwnerID    string `json:"owner_id"`
	Reason     string `json:"reason"`
	RevokedAt  int64  `json:"revoked_at"`
	ExpiresAt  int64  `json:"expires_at"`
	ArchivedAt int64  `json:"archived_at"`
}

// RevokedAtTime returns RevokedAt as time.Time.
func (e *Entry) RevokedAtTime() time.Time {
	return time.UnixMilli(e.RevokedAt)
}

// Config configures the archive.
type Config struct {
	// Dir is the Badger database directory.
	Dir string

	// Sealer encrypts entries at rest. Nil disables encryption.
	Sealer *Sealer

	// GCInterval is the interval between Badger value log GC runs.
	GCInterval time.Duration

	// GCThreshold is the Badger value log GC rewrite threshold.
	GCThreshold float64

	// Logger is the structured logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default archive configuration.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		GCInterval:  DefaultGCInterval,
		GCThreshold: DefaultGCThreshold,
	}
}

// Archive is the Badger-backed revocation archive.
type Archive struct {
	db     *badger.DB
	cfg    Config
	logger *slog.Logger

	closed  atomic.Bool
	entries atomic.Int64

	stopCh chan struct{}
	doneCh chan struct{}
}

// Open opens (or creates) an archive at cfg.Dir.
func Open(cfg Config) (*Archive, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("audit: dir is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = DefaultGCInterval
	}
	if cfg.GCThreshold <= 0 {
		cfg.GCThreshold = DefaultGCThreshold
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: cfg.Logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("audit: open db: %w", err)
	}

	a := &Archive{
		db:     db,
		cfg:    cfg,
		logger: cfg.Logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	a.entries.Store(a.countEntries())

	go a.gcLoop()

	cfg.Logger.Info("audit archive opened",
		"dir", cfg.Dir,
		"encrypted", cfg.Sealer != nil,
		"entries", a.entries.Load())

	return a, nil
}

// Append archives a revocation record.
func (a *Archive) Append(ctx context.Context, record *domain.RevocationRecord, ownerID string) error {
	if a.closed.Load() {
		return ErrClosed
	}

	entry := Entry{
		TokenID:    record.TokenID,
		OwnerID:    ownerID,
		Reason:     record.Reason,
		RevokedAt:  record.RevokedAt,
		ExpiresAt:  record.ExpiresAt,
		ArchivedAt: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: marshal entry: %w", err)
	}

	key := entryKey(entry.RevokedAt, entry.TokenID)
	if a.cfg.Sealer != nil {
		if data, err = a.cfg.Sealer.Seal(data, key); err != nil {
			return err
		}
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}

	a.entries.Add(1)
	return nil
}

// Lookup returns all archived revocations for a token, oldest first.
//
// A token can appear more than once when separate instances raced to
// revoke it before the shared tier converged.
func (a *Archive) Lookup(ctx context.Context, tokenID string) ([]*Entry, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}

	var entries []*Entry
	err := a.scan(func(key, value []byte) (bool, error) {
		if !keyMatchesToken(key, tokenID) {
			return true, nil
		}
		entry, err := a.decode(key, value)
		if err != nil {
			return false, err
		}
		entries = append(entries, entry)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEntryNotFound
	}
	return entries, nil
}

// List returns up to limit entries revoked at or after since, oldest
// first. A zero since means from the beginning; limit <= 0 means no
// limit.
func (a *Archive) List(ctx context.Context, since time.Time, limit int) ([]*Entry, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}

	sinceMs := int64(0)
	if !since.IsZero() {
		sinceMs = since.UnixMilli()
	}

	var entries []*Entry
	err := a.scan(func(key, value []byte) (bool, error) {
		if revokedAtFromKey(key) < sinceMs {
			return true, nil
		}
		entry, err := a.decode(key, value)
		if err != nil {
			return false, err
		}
		entries = append(entries, entry)
		return limit <= 0 || len(entries) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of archived entries.
func (a *Archive) Count() int64 {
	return a.entries.Load()
}

// SizeBytes returns the on-disk size of the archive.
func (a *Archive) SizeBytes() int64 {
	lsm, vlog := a.db.Size()
	return lsm + vlog
}

// Close shuts down the archive.
func (a *Archive) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(a.stopCh)
	<-a.doneCh

	if err := a.db.Close(); err != nil {
		return fmt.Errorf("audit: close db: %w", err)
	}
	return nil
}

// scan iterates entries in key order. The callback returns false to
// stop early.
func (a *Archive) scan(fn func(key, value []byte) (bool, error)) error {
	return a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			cont, err := fn(item.Key(), value)
			if err != nil {
				return err
			}
			if !cont {
				break
			}
		}
		return nil
	})
}

func (a *Archive) decode(key, value []byte) (*Entry, error) {
	if a.cfg.Sealer != nil {
		var err error
		if value, err = a.cfg.Sealer.Open(value, key); err != nil {
			return nil, err
		}
	}
	var entry Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, fmt.Errorf("audit: decode entry: %w", err)
	}
	return &entry, nil
}

func (a *Archive) countEntries() int64 {
	var n int64
	_ = a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n
}

// gcLoop runs periodic Badger value log GC.
func (a *Archive) gcLoop() {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for {
				err := a.db.RunValueLogGC(a.cfg.GCThreshold)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						a.logger.Error("audit gc failed", "error", err)
					}
					break
				}
			}

		case <-a.stopCh:
			return
		}
	}
}

// entryKey builds "rev:{revoked_at_be64}{token_id}". Big-endian
// timestamps make key order equal revocation order.
func entryKey(revokedAt int64, tokenID string) []byte {
	key := make([]byte, 0, len(entryKeyPrefix)+8+len(tokenID))
	key = append(key, entryKeyPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(revokedAt))
	return append(key, tokenID...)
}

func revokedAtFromKey(key []byte) int64 {
	if len(key) < len(entryKeyPrefix)+8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(key[len(entryKeyPrefix):]))
}

func keyMatchesToken(key []byte, tokenID string) bool {
	if len(key) < len(entryKeyPrefix)+8 {
		return false
	}
	return string(key[len(entryKeyPrefix)+8:]) == tokenID
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
