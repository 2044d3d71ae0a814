// Package telemetry provides observability for dispatch resolution.
//
// # Components
//
//   - metrics: Prometheus metrics for rule set resolution and memoizer
//     caching
//
// The dispatch packages depend only on the small interfaces they
// declare; the implementations here carry the Prometheus dependency, so
// callers who do not instrument pay for none of it.
package telemetry
