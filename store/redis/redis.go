package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/agentpatterns/store"
)

// RunStore implements store.RunStore using Redis
type RunStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Options configuration for Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "agentpatterns:"
	TTL      time.Duration // Expiration for runs, default 0 (no expiration)
}

// NewRunStore creates a new Redis run store
func NewRunStore(opts Options) *RunStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRunStoreWithClient(client, opts.Prefix, opts.TTL)
}

// NewRunStoreWithClient uses an existing client.
func NewRunStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RunStore {
	if prefix == "" {
		prefix = "agentpatterns:"
	}
	return &RunStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RunStore) runKey(id string) string {
	return fmt.Sprintf("%srun:%s", s.prefix, id)
}

func (s *RunStore) workflowKey(workflow string) string {
	return fmt.Sprintf("%sworkflow:%s", s.prefix, workflow)
}

func (s *RunStore) allKey() string {
	return s.prefix + "runs"
}

// Close closes the underlying client
func (s *RunStore) Close() error {
	return s.client.Close()
}

// Save stores a run and indexes it by workflow and creation time
func (s *RunStore) Save(ctx context.Context, run *store.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	// A replaced run may have moved to another workflow.
	if prev, err := s.Load(ctx, run.ID); err == nil && prev.Workflow != run.Workflow {
		if err := s.client.ZRem(ctx, s.workflowKey(prev.Workflow), run.ID).Err(); err != nil {
			return fmt.Errorf("failed to unindex run: %w", err)
		}
	}

	member := redis.Z{Score: float64(run.CreatedAt.UnixNano()), Member: run.ID}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.runKey(run.ID), data, s.ttl)
	for _, key := range []string{s.workflowKey(run.Workflow), s.allKey()} {
		pipe.ZAdd(ctx, key, member)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}
	return nil
}

// Load retrieves a run by ID
func (s *RunStore) Load(ctx context.Context, id string) (*store.Run, error) {
	data, err := s.client.Get(ctx, s.runKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to load run from redis: %w", err)
	}

	var run store.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// List returns the runs of a workflow, oldest first. Expired runs are skipped.
func (s *RunStore) List(ctx context.Context, workflow string) ([]*store.Run, error) {
	key := s.allKey()
	if workflow != "" {
		key = s.workflowKey(workflow)
	}

	ids, err := s.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for workflow %q: %w", workflow, err)
	}
	if len(ids) == 0 {
		return []*store.Run{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.runKey(id))
	}

	// MGet returns nil for keys that expired since they were indexed.
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	runs := make([]*store.Run, 0, len(results))
	for _, result := range results {
		data, ok := result.(string)
		if !ok {
			continue
		}
		var run store.Run
		if err := json.Unmarshal([]byte(data), &run); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		runs = append(runs, &run)
	}

	store.SortRuns(runs)
	return runs, nil
}

// Delete removes a run and its index entries
func (s *RunStore) Delete(ctx context.Context, id string) error {
	run, err := s.Load(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.runKey(id))
	pipe.ZRem(ctx, s.workflowKey(run.Workflow), id)
	pipe.ZRem(ctx, s.allKey(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}
