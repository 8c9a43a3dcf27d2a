package cli

import (
	"log/slog"
	"time"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/pkg/adapters/redis"
	"github.com/aretw0/planner/pkg/observability"
	"github.com/aretw0/planner/pkg/session"
)

// WorkspaceOptions holds the CLI conventions applied to every workspace.
type WorkspaceOptions struct {
	Debug       bool
	MaxHistory  int
	SettleDelay time.Duration

	// RedisAddr switches registries to Redis. Each workspace gets its own key space
	// under RedisPrefix.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Metrics, when set, receives the journal events of every workspace.
	Metrics *observability.Metrics
}

// DefaultRedisPrefix namespaces workspace registries in Redis.
const DefaultRedisPrefix = "planner:"

// NewFactory creates workspaces with standard CLI conventions.
func NewFactory(opts WorkspaceOptions, logger *slog.Logger) session.Factory {
	return func(id string) (*planner.Workspace, error) {
		return planner.New(id, workspaceOptions(id, opts, logger)...)
	}
}

func workspaceOptions(id string, opts WorkspaceOptions, logger *slog.Logger) []planner.Option {
	wsOpts := []planner.Option{planner.WithLogger(logger)}

	if opts.Debug {
		wsOpts = append(wsOpts, planner.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	if opts.Metrics != nil {
		wsOpts = append(wsOpts, planner.WithLifecycleHooks(opts.Metrics.Hooks(id)))
	}
	if opts.MaxHistory > 0 {
		wsOpts = append(wsOpts, planner.WithMaxHistory(opts.MaxHistory))
	}
	if opts.SettleDelay > 0 {
		wsOpts = append(wsOpts, planner.WithSettleDelay(opts.SettleDelay))
	}
	if opts.RedisAddr != "" {
		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		store := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB,
			redis.WithPrefix(prefix+id+":"))
		wsOpts = append(wsOpts, planner.WithRegistryStore(store))
	}
	return wsOpts
}
