package metrics

import (
	"sync"

	"github.com/emberops/wildfire/core/factory"
	coremetrics "github.com/emberops/wildfire/core/metrics"
)

var registerOnce sync.Once

// RegisterBuiltins registers the prometheus and influxdb sink factories on
// the core metrics registry. Safe to call more than once.
func RegisterBuiltins() error {
	var err error
	registerOnce.Do(func() {
		err = registerBuiltins()
	})
	return err
}

func registerBuiltins() error {
	if err := coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	}); err != nil {
		return err
	}
	return coremetrics.RegisterMetricsSink("influxdb", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
