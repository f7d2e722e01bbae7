// Package venue implements the client side of the exchange-simulator session
// contract: a websocket carrying JSON frames, six inbound event kinds and
// three outbound request kinds. The protocol internals (sequencing, matching,
// risk checks) live in the simulator; only the frame surface is modelled here.
package venue

import (
	"encoding/json"
	"fmt"

	"etf-arb-bot/internal/book"
	"etf-arb-bot/internal/trader"
)

const (
	TypeBookUpdate  = "order_book_update"
	TypeTradeTicks  = "trade_ticks"
	TypeOrderStatus = "order_status"
	TypeOrderFilled = "order_filled"
	TypeHedgeFilled = "hedge_filled"
	TypeError       = "error"
	TypeDisconnect  = "disconnect"

	TypeLogin       = "login"
	TypeInsertOrder = "insert_order"
	TypeCancelOrder = "cancel_order"
	TypeHedgeOrder  = "hedge_order"
)

// Handler receives the session's inbound events, one call at a time.
type Handler interface {
	OnDisconnect()
	OnError(orderID uint64, message string)
	OnHedgeFill(orderID uint64, price, volume int64)
	OnBookUpdate(instrument trader.Instrument, sequence uint64, asks, bids book.Ladder)
	OnOrderFill(orderID uint64, price, volume int64)
	OnOrderStatus(orderID uint64, fillVolume, remainingVolume, fees int64)
	OnTradeTick(instrument trader.Instrument, sequence uint64, asks, bids book.Ladder)
}

// Event is a decoded inbound frame that knows which handler callback it maps
// to. The same structs are reused as journal payloads, hence the msgpack tags.
type Event interface {
	Type() string
	Dispatch(h Handler)
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type BookUpdate struct {
	Instrument uint8   `json:"instrument" msgpack:"instrument"`
	Sequence   uint64  `json:"sequence" msgpack:"sequence"`
	AskPrices  []int64 `json:"ask_prices" msgpack:"ask_prices"`
	AskVolumes []int64 `json:"ask_volumes" msgpack:"ask_volumes"`
	BidPrices  []int64 `json:"bid_prices" msgpack:"bid_prices"`
	BidVolumes []int64 `json:"bid_volumes" msgpack:"bid_volumes"`
}

func (e BookUpdate) Type() string { return TypeBookUpdate }

func (e BookUpdate) Dispatch(h Handler) {
	h.OnBookUpdate(trader.Instrument(e.Instrument), e.Sequence,
		book.FromSlices(e.AskPrices, e.AskVolumes),
		book.FromSlices(e.BidPrices, e.BidVolumes))
}

type TradeTicks struct {
	Instrument uint8   `json:"instrument" msgpack:"instrument"`
	Sequence   uint64  `json:"sequence" msgpack:"sequence"`
	AskPrices  []int64 `json:"ask_prices" msgpack:"ask_prices"`
	AskVolumes []int64 `json:"ask_volumes" msgpack:"ask_volumes"`
	BidPrices  []int64 `json:"bid_prices" msgpack:"bid_prices"`
	BidVolumes []int64 `json:"bid_volumes" msgpack:"bid_volumes"`
}

func (e TradeTicks) Type() string { return TypeTradeTicks }

func (e TradeTicks) Dispatch(h Handler) {
	h.OnTradeTick(trader.Instrument(e.Instrument), e.Sequence,
		book.FromSlices(e.AskPrices, e.AskVolumes),
		book.FromSlices(e.BidPrices, e.BidVolumes))
}

type OrderStatus struct {
	OrderID         uint64 `json:"order_id" msgpack:"order_id"`
	FillVolume      int64  `json:"fill_volume" msgpack:"fill_volume"`
	RemainingVolume int64  `json:"remaining_volume" msgpack:"remaining_volume"`
	Fees            int64  `json:"fees" msgpack:"fees"`
}

func (e OrderStatus) Type() string { return TypeOrderStatus }

func (e OrderStatus) Dispatch(h Handler) {
	h.OnOrderStatus(e.OrderID, e.FillVolume, e.RemainingVolume, e.Fees)
}

type OrderFilled struct {
	OrderID uint64 `json:"order_id" msgpack:"order_id"`
	Price   int64  `json:"price" msgpack:"price"`
	Volume  int64  `json:"volume" msgpack:"volume"`
}

func (e OrderFilled) Type() string { return TypeOrderFilled }

func (e OrderFilled) Dispatch(h Handler) {
	h.OnOrderFill(e.OrderID, e.Price, e.Volume)
}

type HedgeFilled struct {
	OrderID uint64 `json:"order_id" msgpack:"order_id"`
	Price   int64  `json:"price" msgpack:"price"`
	Volume  int64  `json:"volume" msgpack:"volume"`
}

func (e HedgeFilled) Type() string { return TypeHedgeFilled }

func (e HedgeFilled) Dispatch(h Handler) {
	h.OnHedgeFill(e.OrderID, e.Price, e.Volume)
}

type VenueError struct {
	OrderID uint64 `json:"order_id" msgpack:"order_id"`
	Message string `json:"message" msgpack:"message"`
}

func (e VenueError) Type() string { return TypeError }

func (e VenueError) Dispatch(h Handler) {
	h.OnError(e.OrderID, e.Message)
}

// Disconnect is synthesized by the session when the connection drops; the
// simulator never sends it on the wire.
type Disconnect struct{}

func (Disconnect) Type() string { return TypeDisconnect }

func (Disconnect) Dispatch(h Handler) {
	h.OnDisconnect()
}

// DecodeEvent parses one inbound frame.
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return decodeEventData(env.Type, env.Data)
}

func decodeEventData(frameType string, data []byte) (Event, error) {
	switch frameType {
	case TypeBookUpdate:
		var e BookUpdate
		return e, json.Unmarshal(data, &e)
	case TypeTradeTicks:
		var e TradeTicks
		return e, json.Unmarshal(data, &e)
	case TypeOrderStatus:
		var e OrderStatus
		return e, json.Unmarshal(data, &e)
	case TypeOrderFilled:
		var e OrderFilled
		return e, json.Unmarshal(data, &e)
	case TypeHedgeFilled:
		var e HedgeFilled
		return e, json.Unmarshal(data, &e)
	case TypeError:
		var e VenueError
		return e, json.Unmarshal(data, &e)
	}
	return nil, fmt.Errorf("unknown frame type %q", frameType)
}

type Login struct {
	TeamName string `json:"team_name"`
	Secret   string `json:"secret"`
}

type InsertOrder struct {
	OrderID  uint64 `json:"order_id"`
	Side     string `json:"side"`
	Price    int64  `json:"price"`
	Volume   int64  `json:"volume"`
	Lifespan string `json:"lifespan"`
}

type CancelOrder struct {
	OrderID uint64 `json:"order_id"`
}

type HedgeOrder struct {
	OrderID uint64 `json:"order_id"`
	Side    string `json:"side"`
	Price   int64  `json:"price"`
	Volume  int64  `json:"volume"`
}

// EncodeRequest wraps an outbound request in its envelope.
func EncodeRequest(frameType string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: frameType, Data: data})
}
