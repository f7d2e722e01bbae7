package venue

import (
	"encoding/json"
	"testing"

	"etf-arb-bot/internal/book"
	"etf-arb-bot/internal/trader"
)

type recordedCall struct {
	name       string
	instrument trader.Instrument
	sequence   uint64
	asks       book.Ladder
	bids       book.Ladder
	orderID    uint64
	a, b, c    int64
	message    string
}

type recordingHandler struct {
	calls []recordedCall
}

func (h *recordingHandler) OnDisconnect() {
	h.calls = append(h.calls, recordedCall{name: "disconnect"})
}

func (h *recordingHandler) OnError(orderID uint64, message string) {
	h.calls = append(h.calls, recordedCall{name: "error", orderID: orderID, message: message})
}

func (h *recordingHandler) OnHedgeFill(orderID uint64, price, volume int64) {
	h.calls = append(h.calls, recordedCall{name: "hedge_fill", orderID: orderID, a: price, b: volume})
}

func (h *recordingHandler) OnBookUpdate(instrument trader.Instrument, sequence uint64, asks, bids book.Ladder) {
	h.calls = append(h.calls, recordedCall{name: "book", instrument: instrument, sequence: sequence, asks: asks, bids: bids})
}

func (h *recordingHandler) OnOrderFill(orderID uint64, price, volume int64) {
	h.calls = append(h.calls, recordedCall{name: "fill", orderID: orderID, a: price, b: volume})
}

func (h *recordingHandler) OnOrderStatus(orderID uint64, fillVolume, remainingVolume, fees int64) {
	h.calls = append(h.calls, recordedCall{name: "status", orderID: orderID, a: fillVolume, b: remainingVolume, c: fees})
}

func (h *recordingHandler) OnTradeTick(instrument trader.Instrument, sequence uint64, asks, bids book.Ladder) {
	h.calls = append(h.calls, recordedCall{name: "tick", instrument: instrument, sequence: sequence, asks: asks, bids: bids})
}

func TestDecodeBookUpdateDispatch(t *testing.T) {
	frame := []byte(`{
		"type": "order_book_update",
		"data": {
			"instrument": 1,
			"sequence": 42,
			"ask_prices": [10000, 10100],
			"ask_volumes": [5, 10],
			"bid_prices": [9900],
			"bid_volumes": [7]
		}
	}`)
	ev, err := DecodeEvent(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var h recordingHandler
	ev.Dispatch(&h)
	if len(h.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(h.calls))
	}
	call := h.calls[0]
	if call.name != "book" || call.instrument != trader.InstrumentETF || call.sequence != 42 {
		t.Fatalf("unexpected dispatch %+v", call)
	}
	if call.asks.BestPrice() != 10000 || call.asks.BestVolume() != 5 {
		t.Fatalf("unexpected ask top %+v", call.asks[0])
	}
	if call.bids.BestPrice() != 9900 || call.bids[1].Price != 0 {
		t.Fatalf("unexpected bid ladder %+v", call.bids)
	}
}

func TestDecodeOrderStatusDispatch(t *testing.T) {
	frame := []byte(`{"type":"order_status","data":{"order_id":7,"fill_volume":30,"remaining_volume":70,"fees":-12}}`)
	ev, err := DecodeEvent(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var h recordingHandler
	ev.Dispatch(&h)
	call := h.calls[0]
	if call.name != "status" || call.orderID != 7 || call.a != 30 || call.b != 70 || call.c != -12 {
		t.Fatalf("unexpected dispatch %+v", call)
	}
}

func TestDecodeErrorDispatch(t *testing.T) {
	frame := []byte(`{"type":"error","data":{"order_id":3,"message":"order rejected"}}`)
	ev, err := DecodeEvent(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var h recordingHandler
	ev.Dispatch(&h)
	call := h.calls[0]
	if call.name != "error" || call.orderID != 3 || call.message != "order rejected" {
		t.Fatalf("unexpected dispatch %+v", call)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{"type":"heartbeat","data":{}}`)); err == nil {
		t.Fatalf("expected error for unknown frame type")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestDisconnectDispatch(t *testing.T) {
	var h recordingHandler
	Disconnect{}.Dispatch(&h)
	if len(h.calls) != 1 || h.calls[0].name != "disconnect" {
		t.Fatalf("unexpected dispatch %+v", h.calls)
	}
}

func TestEncodeRequestEnvelope(t *testing.T) {
	data, err := EncodeRequest(TypeInsertOrder, InsertOrder{
		OrderID:  9,
		Side:     "buy",
		Price:    10000,
		Volume:   100,
		Lifespan: "good_for_day",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != TypeInsertOrder {
		t.Fatalf("expected type %q, got %q", TypeInsertOrder, env.Type)
	}
	var req InsertOrder
	if err := json.Unmarshal(env.Data, &req); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if req.OrderID != 9 || req.Side != "buy" || req.Price != 10000 || req.Volume != 100 {
		t.Fatalf("unexpected request %+v", req)
	}
}
