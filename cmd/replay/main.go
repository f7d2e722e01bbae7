// Replays a captured event journal through a fresh strategy instance with a
// dry-run execution client, printing the actions the strategy would have
// taken and the final state it reaches.
package main

import (
	"context"
	"flag"
	"os"

	"etf-arb-bot/internal/config"
	"etf-arb-bot/internal/journal"
	"etf-arb-bot/internal/logging"
	"etf-arb-bot/internal/trader"
	"etf-arb-bot/internal/venue"

	"go.uber.org/zap"
)

type dryRunExec struct {
	log *zap.Logger
}

func (d dryRunExec) SendInsertOrder(orderID uint64, side trader.Side, price, volume int64, lifespan trader.Lifespan) {
	d.log.Info("would insert order",
		zap.Uint64("order_id", orderID),
		zap.String("side", side.String()),
		zap.Int64("price", price),
		zap.Int64("volume", volume),
		zap.String("lifespan", lifespan.String()),
	)
}

func (d dryRunExec) SendCancelOrder(orderID uint64) {
	d.log.Info("would cancel order", zap.Uint64("order_id", orderID))
}

func (d dryRunExec) SendHedgeOrder(orderID uint64, side trader.Side, price, volume int64) {
	d.log.Info("would hedge",
		zap.Uint64("order_id", orderID),
		zap.String("side", side.String()),
		zap.Int64("price", price),
		zap.Int64("volume", volume),
	)
}

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to config file")
	journalPath := flag.String("journal", "", "path to journal file (defaults to journal.path from config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.Log)

	path := *journalPath
	if path == "" {
		path = cfg.Journal.Path
	}
	store, err := journal.Open(path)
	if err != nil {
		log.Error("failed to open journal", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	bot := trader.New(cfg.Venue, cfg.Strategy, dryRunExec{log: log}, nil, log)
	replayer := journal.NewReplayer(store)
	if err := replayer.Run(context.Background(), func(ev venue.Event) {
		ev.Dispatch(bot)
	}); err != nil {
		log.Error("replay failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("replay finished",
		zap.Int64("position", bot.Position()),
		zap.Float64("offset_estimate", bot.OffsetEstimate()),
		zap.Int64("crossings", bot.Crossings()),
		zap.Int("open_orders", bot.OpenOrders()),
	)
}
