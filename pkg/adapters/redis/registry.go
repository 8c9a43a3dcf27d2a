package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// RegistryStore implements ports.RegistryStore using Redis, so that layer lists in
// other processes can read zone/room/device membership. Only registry records are
// stored; the history itself never leaves the process.
type RegistryStore struct {
	client *backend.Client
	prefix string

	mu         sync.Mutex
	registries map[domain.RegistryName]*Registry
}

type Option func(*RegistryStore)

// WithPrefix sets the key prefix for registries.
func WithPrefix(prefix string) Option {
	return func(s *RegistryStore) {
		s.prefix = prefix
	}
}

// New creates a new Redis registry store with options.
func New(address, password string, db int, opts ...Option) *RegistryStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis registry store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *RegistryStore {
	store := &RegistryStore{
		client:     client,
		prefix:     "planner:registry:",
		registries: make(map[domain.RegistryName]*Registry),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Registry returns the named registry.
func (s *RegistryStore) Registry(name domain.RegistryName) ports.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registries[name]
	if !ok {
		reg = &Registry{
			client: s.client,
			base:   s.prefix + string(name),
		}
		s.registries[name] = reg
	}
	return reg
}

// Close closes the redis client.
func (s *RegistryStore) Close() error {
	return s.client.Close()
}

// Registry implements ports.Registry with a hash of JSON records (keyed by entity ID)
// and a sorted set holding insertion order.
type Registry struct {
	client *backend.Client
	base   string
}

func (r *Registry) recordsKey() string { return r.base + ":records" }
func (r *Registry) orderKey() string   { return r.base + ":order" }
func (r *Registry) seqKey() string     { return r.base + ":seq" }

// Add stores the record unless one for the same entity exists.
func (r *Registry) Add(ctx context.Context, rec domain.Record) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("failed to marshal record: %w", err)
	}
	id := string(rec.EntityID)

	// HSETNX is the identity guard; the order entry is only written by the winner.
	added, err := r.client.HSetNX(ctx, r.recordsKey(), id, data).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add record to redis: %w", err)
	}
	if !added {
		indexed, err := r.indexed(ctx, id)
		if err != nil || indexed {
			return false, err
		}
		// A record without an order entry is left over from an interrupted Add.
		if err := r.client.HSet(ctx, r.recordsKey(), id, data).Err(); err != nil {
			return false, fmt.Errorf("failed to add record to redis: %w", err)
		}
	}

	if err := r.index(ctx, id); err != nil {
		if delErr := r.client.HDel(ctx, r.recordsKey(), id).Err(); delErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to roll back record: %w", delErr))
		}
		return false, err
	}
	return true, nil
}

func (r *Registry) indexed(ctx context.Context, id string) (bool, error) {
	err := r.client.ZScore(ctx, r.orderKey(), id).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, backend.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("failed to query registry order: %w", err)
	}
}

func (r *Registry) index(ctx context.Context, id string) error {
	seq, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate record sequence: %w", err)
	}
	if err := r.client.ZAdd(ctx, r.orderKey(), backend.Z{
		Score:  float64(seq),
		Member: id,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index record: %w", err)
	}
	return nil
}

// Contains reports whether a record for the entity exists.
func (r *Registry) Contains(ctx context.Context, id domain.EntityID) (bool, error) {
	ok, err := r.client.HExists(ctx, r.recordsKey(), string(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query redis: %w", err)
	}
	return ok, nil
}

// RemoveWhere deletes every matching record.
func (r *Registry) RemoveWhere(ctx context.Context, match func(domain.Record) bool) (int, error) {
	records, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	var doomed []string
	for _, rec := range records {
		if match(rec) {
			doomed = append(doomed, string(rec.EntityID))
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	members := make([]any, len(doomed))
	for i, id := range doomed {
		members[i] = id
	}

	pipe := r.client.Pipeline()
	pipe.HDel(ctx, r.recordsKey(), doomed...)
	pipe.ZRem(ctx, r.orderKey(), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to remove records from redis: %w", err)
	}
	return len(doomed), nil
}

// List returns the records in insertion order.
func (r *Registry) List(ctx context.Context) ([]domain.Record, error) {
	ids, err := r.client.ZRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list registry order: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Record{}, nil
	}

	values, err := r.client.HMGet(ctx, r.recordsKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	records := make([]domain.Record, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Order entry without a record: a removal raced with this read.
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

var _ ports.RegistryStore = (*RegistryStore)(nil)
