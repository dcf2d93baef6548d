// Package metrics defines the sinks recording evolution run metrics.
// Sinks like PromSink and InfluxSink record generation statistics,
// extinctions and solutions and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
