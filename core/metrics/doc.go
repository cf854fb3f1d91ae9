// Package metrics exposes reconciliation pass statistics to Prometheus.
//
// A Recorder registers its collectors on the registry it is given, so tests can use a
// fresh prometheus.NewRegistry() while the server uses the default one.
package metrics
