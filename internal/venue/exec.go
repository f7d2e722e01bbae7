package venue

import (
	"context"

	"etf-arb-bot/internal/trader"

	"go.uber.org/zap"
)

// sender is the part of Session the exec client needs.
type sender interface {
	Send(ctx context.Context, frameType string, v any) error
}

// ExecClient adapts the session to trader.ExecutionClient. The contract is
// fire-and-forget: a write failure is logged and the venue's error/status
// events settle the order either way, so nothing is retried here.
type ExecClient struct {
	ctx  context.Context
	sess sender
	log  *zap.Logger
}

func NewExecClient(ctx context.Context, sess sender, log *zap.Logger) *ExecClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExecClient{ctx: ctx, sess: sess, log: log}
}

func (c *ExecClient) SendInsertOrder(orderID uint64, side trader.Side, price, volume int64, lifespan trader.Lifespan) {
	req := InsertOrder{
		OrderID:  orderID,
		Side:     side.String(),
		Price:    price,
		Volume:   volume,
		Lifespan: lifespan.String(),
	}
	if err := c.sess.Send(c.ctx, TypeInsertOrder, req); err != nil {
		c.log.Warn("insert order send failed", zap.Uint64("order_id", orderID), zap.Error(err))
	}
}

func (c *ExecClient) SendCancelOrder(orderID uint64) {
	if err := c.sess.Send(c.ctx, TypeCancelOrder, CancelOrder{OrderID: orderID}); err != nil {
		c.log.Warn("cancel order send failed", zap.Uint64("order_id", orderID), zap.Error(err))
	}
}

func (c *ExecClient) SendHedgeOrder(orderID uint64, side trader.Side, price, volume int64) {
	req := HedgeOrder{
		OrderID: orderID,
		Side:    side.String(),
		Price:   price,
		Volume:  volume,
	}
	if err := c.sess.Send(c.ctx, TypeHedgeOrder, req); err != nil {
		c.log.Warn("hedge order send failed", zap.Uint64("order_id", orderID), zap.Error(err))
	}
}
