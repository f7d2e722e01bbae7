package journal

import (
	"fmt"

	"etf-arb-bot/internal/venue"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes an event for storage. The frame type string doubles as
// the row's type discriminator.
func Encode(ev venue.Event) (frameType string, payload []byte, err error) {
	payload, err = msgpack.Marshal(ev)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s event: %w", ev.Type(), err)
	}
	return ev.Type(), payload, nil
}

// Decode reverses Encode.
func Decode(frameType string, payload []byte) (venue.Event, error) {
	switch frameType {
	case venue.TypeBookUpdate:
		var e venue.BookUpdate
		return e, msgpack.Unmarshal(payload, &e)
	case venue.TypeTradeTicks:
		var e venue.TradeTicks
		return e, msgpack.Unmarshal(payload, &e)
	case venue.TypeOrderStatus:
		var e venue.OrderStatus
		return e, msgpack.Unmarshal(payload, &e)
	case venue.TypeOrderFilled:
		var e venue.OrderFilled
		return e, msgpack.Unmarshal(payload, &e)
	case venue.TypeHedgeFilled:
		var e venue.HedgeFilled
		return e, msgpack.Unmarshal(payload, &e)
	case venue.TypeError:
		var e venue.VenueError
		return e, msgpack.Unmarshal(payload, &e)
	case venue.TypeDisconnect:
		return venue.Disconnect{}, nil
	}
	return nil, fmt.Errorf("unknown journal event type %q", frameType)
}
