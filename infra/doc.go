// Package infra contains technical adapters such as the MQTT publisher, the
// fitness log backends and the metrics exporters. These packages depend
// only on the interfaces defined in the core packages.
package infra
