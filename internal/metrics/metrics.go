package metrics

type Counter interface {
	Inc()
}

type Gauge interface {
	Set(v float64)
}

type Metrics struct {
	OrdersInserted  Counter
	OrdersCancelled Counter
	HedgesSent      Counter
	OrderFills      Counter
	VenueErrors     Counter
	Crossings       Counter
	Position        Gauge
	OffsetEstimate  Gauge
}

type noopCounter struct{}

func (noopCounter) Inc() {}

type noopGauge struct{}

func (noopGauge) Set(float64) {}

func NewNoop() *Metrics {
	c := noopCounter{}
	g := noopGauge{}
	return &Metrics{
		OrdersInserted:  c,
		OrdersCancelled: c,
		HedgesSent:      c,
		OrderFills:      c,
		VenueErrors:     c,
		Crossings:       c,
		Position:        g,
		OffsetEstimate:  g,
	}
}
