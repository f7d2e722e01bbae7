package venue

import (
	"context"
	"errors"
	"testing"

	"etf-arb-bot/internal/trader"
)

type fakeSender struct {
	frames []struct {
		frameType string
		payload   any
	}
	err error
}

func (f *fakeSender) Send(ctx context.Context, frameType string, v any) error {
	f.frames = append(f.frames, struct {
		frameType string
		payload   any
	}{frameType, v})
	return f.err
}

func TestExecClientInsertOrder(t *testing.T) {
	sender := &fakeSender{}
	client := NewExecClient(context.Background(), sender, nil)
	client.SendInsertOrder(5, trader.SideBuy, 10000, 100, trader.GoodForDay)
	if len(sender.frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(sender.frames))
	}
	frame := sender.frames[0]
	if frame.frameType != TypeInsertOrder {
		t.Fatalf("expected insert frame, got %q", frame.frameType)
	}
	req, ok := frame.payload.(InsertOrder)
	if !ok {
		t.Fatalf("unexpected payload %T", frame.payload)
	}
	if req.OrderID != 5 || req.Side != "buy" || req.Price != 10000 || req.Volume != 100 || req.Lifespan != "good_for_day" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestExecClientCancelAndHedge(t *testing.T) {
	sender := &fakeSender{}
	client := NewExecClient(context.Background(), sender, nil)
	client.SendCancelOrder(5)
	client.SendHedgeOrder(6, trader.SideSell, 100, 40)
	if len(sender.frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(sender.frames))
	}
	if sender.frames[0].frameType != TypeCancelOrder {
		t.Fatalf("expected cancel frame, got %q", sender.frames[0].frameType)
	}
	hedge, ok := sender.frames[1].payload.(HedgeOrder)
	if !ok || hedge.OrderID != 6 || hedge.Side != "sell" || hedge.Price != 100 || hedge.Volume != 40 {
		t.Fatalf("unexpected hedge frame %+v", sender.frames[1].payload)
	}
}

func TestExecClientSwallowsSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("conn closed")}
	client := NewExecClient(context.Background(), sender, nil)
	// Must not panic or retry: failures settle through venue events.
	client.SendInsertOrder(5, trader.SideBuy, 10000, 100, trader.GoodForDay)
	client.SendCancelOrder(5)
	if len(sender.frames) != 2 {
		t.Fatalf("expected exactly one attempt per request, got %d", len(sender.frames))
	}
}
