// Package metrics provides Prometheus instrumentation for dispatch
// rule set resolution and memoizer caching.
//
// DispatchMetrics implements the dispatch.Metrics interface, so wiring
// it into a memoizer is one configuration call:
//
//	dm := metrics.New(nil, nil)
//	m, err := dispatch.NewMemoizer[User, string](
//		dispatch.DefaultMemoizerConfig().WithMetrics(dm),
//	)
//
// The dispatch package itself has no Prometheus dependency; everything
// it records flows through the interface implemented here.
package metrics
