/*
Package observability turns journal lifecycle hooks into Prometheus metrics and
structured log lines.

Both are plain domain.LifecycleHooks and can be combined with domain.MergeHooks:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := domain.MergeHooks(metrics.Hooks("floor-1"), observability.LogHooks(logger))
	ws, _ := planner.New("floor-1", planner.WithLifecycleHooks(hooks))
*/
package observability
