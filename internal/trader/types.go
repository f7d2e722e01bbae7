package trader

// Instrument discriminates the two books the venue publishes. The future is
// the reference leg: observed, never traded. The ETF is the traded leg.
type Instrument uint8

const (
	InstrumentFuture Instrument = iota
	InstrumentETF
)

func (i Instrument) String() string {
	switch i {
	case InstrumentFuture:
		return "future"
	case InstrumentETF:
		return "etf"
	}
	return "unknown"
}

type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}

type Lifespan uint8

const (
	GoodForDay Lifespan = iota
	FillAndKill
)

func (l Lifespan) String() string {
	if l == FillAndKill {
		return "fill_and_kill"
	}
	return "good_for_day"
}

// ExecutionClient is the outbound half of the session contract. Requests are
// fire-and-forget: rejections come back through the error event, so these
// methods do not return errors.
type ExecutionClient interface {
	SendInsertOrder(orderID uint64, side Side, price, volume int64, lifespan Lifespan)
	SendCancelOrder(orderID uint64)
	SendHedgeOrder(orderID uint64, side Side, price, volume int64)
}
