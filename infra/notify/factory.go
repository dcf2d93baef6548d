package notify

import (
	"github.com/kilianp07/evopool/core/factory"
	corenotify "github.com/kilianp07/evopool/core/notify"
	"github.com/kilianp07/evopool/infra/mqtt"
)

var newPublisher = func(cfg mqtt.Config) (publisher, error) {
	return mqtt.NewPublisher(cfg)
}

// init registers the built-in report sinks.
func init() {
	_ = corenotify.RegisterSink("nop", func(map[string]any) (corenotify.Sink, error) {
		return corenotify.NopSink{}, nil
	})

	_ = corenotify.RegisterSink("log", func(map[string]any) (corenotify.Sink, error) {
		return NewLogSink(nil), nil
	})

	_ = corenotify.RegisterSink("mqtt", func(conf map[string]any) (corenotify.Sink, error) {
		var c struct {
			mqtt.Config `json:",squash"`
			RunID       string `json:"run_id"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		pub, err := newPublisher(c.Config)
		if err != nil {
			return nil, err
		}
		return NewMQTTSink(pub, c.RunID), nil
	})
}
