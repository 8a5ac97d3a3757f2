package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/xcallback/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces journal keys.
const DefaultPrefix = "xcallback:pending:"

// noExpiry is the index score of records saved without a TTL (2100-01-01).
const noExpiry = 4102444800

// Journal implements ports.Journal using Redis.
// Records are JSON strings; a sorted set scored by expiry indexes them.
type Journal struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures the Journal.
type Option func(*Journal)

// WithTTL sets the expiration for records. A request that was never
// answered disappears from the journal after ttl.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// WithClock overrides the time source used for index scores.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		j.now = now
	}
}

// New creates a Journal with its own client.
func New(address, password string, db int, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromURL creates a Journal from a redis:// URL.
func NewFromURL(rawURL string, opts ...Option) (*Journal, error) {
	o, err := backend.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient creates a Journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Journal) key(id string) string {
	return j.prefix + id
}

func (j *Journal) indexKey() string {
	return j.prefix + "index"
}

// Save stores the record and indexes it.
func (j *Journal) Save(ctx context.Context, rec domain.PendingRecord) error {
	if rec.ID == "" {
		return errors.New("request id cannot be empty")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	score := float64(noExpiry)
	if j.ttl > 0 {
		score = float64(j.now().Add(j.ttl).Unix())
	}

	pipe := j.client.Pipeline()
	pipe.Set(ctx, j.key(rec.ID), data, j.ttl)
	pipe.ZAdd(ctx, j.indexKey(), backend.Z{Score: score, Member: rec.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves one record.
func (j *Journal) Load(ctx context.Context, id string) (domain.PendingRecord, error) {
	val, err := j.client.Get(ctx, j.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.PendingRecord{}, domain.ErrRecordNotFound
		}
		return domain.PendingRecord{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec domain.PendingRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return domain.PendingRecord{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

// Delete removes the record and its index entry.
func (j *Journal) Delete(ctx context.Context, id string) error {
	pipe := j.client.Pipeline()
	pipe.Del(ctx, j.key(id))
	pipe.ZRem(ctx, j.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the ids of live records, pruning expired index entries first.
func (j *Journal) List(ctx context.Context) ([]string, error) {
	now := fmt.Sprintf("%d", j.now().Unix())
	if err := j.client.ZRemRangeByScore(ctx, j.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired records: %w", err)
	}

	ids, err := j.client.ZRange(ctx, j.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
