package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"readygate/observability"
)

// Builder describes the metrics of readiness-gated services. Every metric
// name is prefixed with Name.
type Builder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string

	// Port is appended to the address label when set.
	Port string
	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Collector holds the metric vectors shared by every instrumented service.
type Collector struct {
	polls     *prometheus.CounterVec
	responses *prometheus.SummaryVec
	errCnt    *prometheus.CounterVec
	active    *prometheus.GaugeVec
}

func (b *Builder) Build() (*Collector, error) {
	address := observability.GetOutboundIP()
	if b.Port != "" {
		address = address + ":" + b.Port
	}
	constLabels := map[string]string{
		"address": address,
		"kind":    "service",
	}
	c := &Collector{
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   b.Namespace,
			Subsystem:   b.Subsystem,
			Name:        b.Name + "_poll_cnt",
			Help:        b.Help,
			ConstLabels: constLabels,
		}, []string{"service", "outcome"}),
		responses: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:   b.Namespace,
			Subsystem:   b.Subsystem,
			Name:        b.Name + "_response",
			Help:        b.Help,
			ConstLabels: constLabels,
			Objectives: map[float64]float64{
				0.5:   0.01,
				0.75:  0.01,
				0.9:   0.01,
				0.99:  0.001,
				0.999: 0.0001,
			},
		}, []string{"service"}),
		errCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   b.Namespace,
			Subsystem:   b.Subsystem,
			Name:        b.Name + "_error_cnt",
			Help:        b.Help,
			ConstLabels: constLabels,
		}, []string{"service"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   b.Namespace,
			Subsystem:   b.Subsystem,
			Name:        b.Name + "_active_req_cnt",
			Help:        b.Help,
			ConstLabels: constLabels,
		}, []string{"service"}),
	}
	registerer := b.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	for _, collector := range []prometheus.Collector{c.polls, c.responses, c.errCnt, c.active} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (b *Builder) MustBuild() *Collector {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
