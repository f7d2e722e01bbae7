// Package trader implements the ETF/future arbitrage handler. It reacts to
// the session event stream one event at a time: on every ETF book update it
// cancels its resting orders, re-quotes at the best current opportunity, and
// maintains a running fair-value offset estimate from mid-price crossings.
// Fills on the ETF are hedged immediately in the future.
package trader

import (
	"etf-arb-bot/internal/book"
	"etf-arb-bot/internal/config"
	"etf-arb-bot/internal/metrics"

	"go.uber.org/zap"
)

// AutoTrader holds the whole strategy state. The session layer delivers
// events strictly sequentially, so there is no locking here: every field is
// touched only from the dispatch goroutine.
type AutoTrader struct {
	exec ExecutionClient
	log  *zap.Logger
	met  *metrics.Metrics

	venue config.VenueConfig
	skew  float64 // gamma term of the threshold, in cents

	// Last-seen reference (future) ladders, overwritten on every future
	// book update.
	refAsks book.Ladder
	refBids book.Ladder

	// At most one resting order per side; zero means none. The orders map
	// tags every live own-order id with its side so fill and error events
	// can be recognised after the resting slot has moved on.
	bidID  uint64
	askID  uint64
	orders map[uint64]Side

	position int64

	// Offset estimate state. etfAboveRef is the relation observed on the
	// previous ETF update; a flip while carrying inventory is a crossing.
	etfAboveRef bool
	offsetSum   float64
	crossings   int64
	offset      float64

	lastID uint64
}

func New(venue config.VenueConfig, strat config.StrategyConfig, exec ExecutionClient, met *metrics.Metrics, log *zap.Logger) *AutoTrader {
	if met == nil {
		met = metrics.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoTrader{
		exec:   exec,
		log:    log,
		met:    met,
		venue:  venue,
		skew:   strat.SkewTicks * float64(venue.TickSize),
		orders: make(map[uint64]Side),
	}
}

// nextID issues a fresh message identifier. Identifiers start at 1 and never
// repeat; zero is reserved to mean "no order".
func (t *AutoTrader) nextID() uint64 {
	t.lastID++
	return t.lastID
}

// OnDisconnect is called when the session drops. Teardown belongs to the
// session layer; the strategy keeps its state for reconciliation.
func (t *AutoTrader) OnDisconnect() {
	t.log.Warn("session disconnected")
}

// OnError handles a venue rejection. A rejection of a tracked order is the
// same as that order settling with zero remaining volume. Errors for unknown
// or already-settled identifiers are ignored so late duplicates cannot
// corrupt cleared state.
func (t *AutoTrader) OnError(orderID uint64, message string) {
	t.met.VenueErrors.Inc()
	if orderID == 0 {
		t.log.Warn("venue error", zap.String("message", message))
		return
	}
	if _, ok := t.orders[orderID]; !ok {
		return
	}
	t.log.Warn("order rejected", zap.Uint64("order_id", orderID), zap.String("message", message))
	t.OnOrderStatus(orderID, 0, 0, 0)
}

// OnHedgeFill is received and discarded; hedges are sent at a worst-case
// price and assumed done.
func (t *AutoTrader) OnHedgeFill(orderID uint64, price, volume int64) {
	t.log.Debug("hedge filled", zap.Uint64("order_id", orderID), zap.Int64("price", price), zap.Int64("volume", volume))
}

// OnBookUpdate drives the strategy. Future updates only refresh the
// reference snapshot. ETF updates with a live top of book re-quote both
// sides and update the crossing statistics.
func (t *AutoTrader) OnBookUpdate(instrument Instrument, sequence uint64, asks, bids book.Ladder) {
	if instrument == InstrumentFuture {
		t.refAsks = asks
		t.refBids = bids
		return
	}
	if asks.Empty() || bids.Empty() {
		return
	}

	refAsk := t.refAsks.BestPrice()
	refBid := t.refBids.BestPrice()
	refMid := book.Mid(t.refAsks, t.refBids)

	etfAsk := asks.BestPrice()
	etfBid := bids.BestPrice()
	etfMid := book.Mid(asks, bids)

	// Until the first crossing the offset estimate is re-seeded from the
	// current half-spread.
	if t.crossings == 0 {
		t.offset = etfMid - float64(etfBid)
	}
	delta := t.skew + float64(t.venue.TickSize) + t.offset

	// Continuous re-quote: pull both sides before re-evaluating.
	if t.bidID != 0 {
		t.exec.SendCancelOrder(t.bidID)
		t.met.OrdersCancelled.Inc()
		t.bidID = 0
	}
	if t.askID != 0 {
		t.exec.SendCancelOrder(t.askID)
		t.met.OrdersCancelled.Inc()
		t.askID = 0
	}

	tick := t.venue.TickSize
	switch {
	case float64(refBid-etfAsk) > delta:
		// ETF cheap relative to the future: lift the ETF ask.
		t.insertBid(etfAsk)
	case float64(etfBid-refAsk) > delta:
		// ETF rich: hit the ETF bid.
		t.insertAsk(etfBid)
	case float64(refBid-etfBid-tick) > delta:
		t.insertBid(etfBid + tick)
	case float64(etfAsk-refAsk-tick) > delta:
		t.insertAsk(etfAsk - tick)
	}

	above := etfMid > refMid
	if t.etfAboveRef != above && t.position != 0 {
		t.offsetSum += etfMid - float64(etfBid)
		t.crossings++
		t.offset = t.offsetSum / float64(t.crossings)
		t.met.Crossings.Inc()
		t.met.OffsetEstimate.Set(t.offset)
	}
	t.etfAboveRef = above
}

func (t *AutoTrader) insertBid(price int64) {
	volume := t.venue.PositionLimit - t.position
	if volume <= 0 {
		return
	}
	id := t.nextID()
	t.exec.SendInsertOrder(id, SideBuy, price, volume, GoodForDay)
	t.bidID = id
	t.orders[id] = SideBuy
	t.met.OrdersInserted.Inc()
	t.log.Debug("insert bid", zap.Uint64("order_id", id), zap.Int64("price", price), zap.Int64("volume", volume))
}

func (t *AutoTrader) insertAsk(price int64) {
	volume := abs64(-t.venue.PositionLimit - t.position)
	if volume <= 0 {
		return
	}
	id := t.nextID()
	t.exec.SendInsertOrder(id, SideSell, price, volume, GoodForDay)
	t.askID = id
	t.orders[id] = SideSell
	t.met.OrdersInserted.Inc()
	t.log.Debug("insert ask", zap.Uint64("order_id", id), zap.Int64("price", price), zap.Int64("volume", volume))
}

// OnOrderFill applies a fill on one of our resting orders and hedges it at a
// worst-case tick-rounded price in the future. Fills for identifiers we do
// not own are ignored.
func (t *AutoTrader) OnOrderFill(orderID uint64, price, volume int64) {
	side, ok := t.orders[orderID]
	if !ok {
		return
	}
	t.met.OrderFills.Inc()
	switch side {
	case SideSell:
		t.position -= volume
		t.exec.SendHedgeOrder(t.nextID(), SideBuy, t.venue.MaxAskNearestTick(), volume)
	case SideBuy:
		t.position += volume
		t.exec.SendHedgeOrder(t.nextID(), SideSell, t.venue.MinBidNearestTick(), volume)
	}
	t.met.HedgesSent.Inc()
	t.met.Position.Set(float64(t.position))
	t.log.Info("order filled",
		zap.Uint64("order_id", orderID),
		zap.String("side", side.String()),
		zap.Int64("price", price),
		zap.Int64("volume", volume),
		zap.Int64("position", t.position),
	)
}

// OnOrderStatus settles bookkeeping once an order has no remaining volume,
// whether it filled out or was cancelled. Settling the same identifier twice
// is a no-op.
func (t *AutoTrader) OnOrderStatus(orderID uint64, fillVolume, remainingVolume, fees int64) {
	if remainingVolume != 0 {
		return
	}
	if orderID == t.askID {
		t.askID = 0
	} else if orderID == t.bidID {
		t.bidID = 0
	}
	delete(t.orders, orderID)
}

// OnTradeTick is observed but unused by this strategy.
func (t *AutoTrader) OnTradeTick(instrument Instrument, sequence uint64, asks, bids book.Ladder) {
}

// Position is the current signed inventory in the ETF.
func (t *AutoTrader) Position() int64 {
	return t.position
}

// OffsetEstimate is the current fair-value offset estimate in cents.
func (t *AutoTrader) OffsetEstimate() float64 {
	return t.offset
}

// Crossings is the number of mid-price crossings accumulated so far.
func (t *AutoTrader) Crossings() int64 {
	return t.crossings
}

// OrderSide reports the side of a tracked own-order identifier.
func (t *AutoTrader) OrderSide(orderID uint64) (Side, bool) {
	side, ok := t.orders[orderID]
	return side, ok
}

// OpenOrders is the number of own-order identifiers not yet fully settled.
func (t *AutoTrader) OpenOrders() int {
	return len(t.orders)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
