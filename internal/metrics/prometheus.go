package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "etf_arb_bot"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type promGauge struct {
	gauge prometheus.Gauge
}

func (p promGauge) Set(v float64) {
	p.gauge.Set(v)
}

type Prometheus struct {
	Metrics *Metrics

	registry        *prometheus.Registry
	ordersInserted  prometheus.Counter
	ordersCancelled prometheus.Counter
	hedgesSent      prometheus.Counter
	orderFills      prometheus.Counter
	venueErrors     prometheus.Counter
	crossings       prometheus.Counter
	position        prometheus.Gauge
	offsetEstimate  prometheus.Gauge
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	ordersInserted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_inserted_total",
		Help:      "Total number of resting orders inserted.",
	})
	ordersCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_cancelled_total",
		Help:      "Total number of cancel requests sent.",
	})
	hedgesSent := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "hedge_orders_total",
		Help:      "Total number of hedge orders sent.",
	})
	orderFills := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "order_fills_total",
		Help:      "Total number of own-order fill events.",
	})
	venueErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "venue_errors_total",
		Help:      "Total number of error events received from the venue.",
	})
	crossings := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "crossings_total",
		Help:      "Total number of mid-price crossing events accumulated.",
	})
	position := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Name:      "position_lots",
		Help:      "Current signed inventory in the traded instrument.",
	})
	offsetEstimate := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Name:      "offset_estimate_cents",
		Help:      "Current fair-value offset estimate.",
	})

	registry.MustRegister(ordersInserted, ordersCancelled, hedgesSent, orderFills, venueErrors, crossings, position, offsetEstimate)

	m := &Metrics{
		OrdersInserted:  promCounter{ordersInserted},
		OrdersCancelled: promCounter{ordersCancelled},
		HedgesSent:      promCounter{hedgesSent},
		OrderFills:      promCounter{orderFills},
		VenueErrors:     promCounter{venueErrors},
		Crossings:       promCounter{crossings},
		Position:        promGauge{position},
		OffsetEstimate:  promGauge{offsetEstimate},
	}

	return &Prometheus{
		Metrics:         m,
		registry:        registry,
		ordersInserted:  ordersInserted,
		ordersCancelled: ordersCancelled,
		hedgesSent:      hedgesSent,
		orderFills:      orderFills,
		venueErrors:     venueErrors,
		crossings:       crossings,
		position:        position,
		offsetEstimate:  offsetEstimate,
	}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
