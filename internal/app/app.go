package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"etf-arb-bot/internal/config"
	"etf-arb-bot/internal/journal"
	"etf-arb-bot/internal/metrics"
	"etf-arb-bot/internal/record"
	"etf-arb-bot/internal/trader"
	"etf-arb-bot/internal/venue"

	"go.uber.org/zap"
)

// App wires the session, the strategy handler, and the supporting surfaces
// (metrics, journal, recorder) together. Events flow through exactly one
// goroutine: the session read loop calls handleEvent to completion before
// reading the next frame.
type App struct {
	cfg  *config.Config
	log  *zap.Logger
	sess *venue.Session
	prom *metrics.Prometheus
	met  *metrics.Metrics

	journalStore *journal.Store
	journal      *journal.Writer
	recorder     *record.Writer

	trader *trader.AutoTrader
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	secret := strings.TrimSpace(os.Getenv(cfg.Session.SecretEnv))
	if secret == "" {
		return nil, errors.New(cfg.Session.SecretEnv + " is required")
	}
	login := venue.Login{TeamName: cfg.Session.TeamName, Secret: secret}
	sess := venue.NewSession(cfg.Session.URL, cfg.Session.ReconnectDelay, cfg.Session.PingInterval, login, log)

	a := &App{
		cfg:  cfg,
		log:  log,
		sess: sess,
		met:  metrics.NewNoop(),
	}
	if cfg.Metrics.Enabled {
		a.prom = metrics.NewPrometheus()
		a.met = a.prom.Metrics
	}
	if cfg.Journal.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Journal.Path), 0o755); err != nil {
			return nil, err
		}
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		a.journalStore = store
		a.journal = journal.NewWriter(store, log)
	}
	recorder, err := record.New(cfg.Record, log)
	if err != nil {
		return nil, err
	}
	a.recorder = recorder
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.close()

	exec := venue.NewExecClient(ctx, a.sess, a.log)
	a.trader = trader.New(a.cfg.Venue, a.cfg.Strategy, exec, a.met, a.log)

	if a.prom != nil {
		a.serveMetrics(ctx)
	}
	if a.recorder != nil {
		a.recorder.Start(ctx)
	}

	a.log.Info("starting session",
		zap.String("url", a.cfg.Session.URL),
		zap.String("team", a.cfg.Session.TeamName),
	)
	return a.sess.Run(ctx, func(ev venue.Event) {
		a.handleEvent(ctx, ev)
	})
}

func (a *App) handleEvent(ctx context.Context, ev venue.Event) {
	if a.journal != nil {
		a.journal.Record(ctx, ev)
	}

	// Fill side must be read before dispatch: a full fill's status event may
	// already have cleared the identifier afterwards.
	var fillSide trader.Side
	fillOwned := false
	if fill, ok := ev.(venue.OrderFilled); ok {
		fillSide, fillOwned = a.trader.OrderSide(fill.OrderID)
	}

	ev.Dispatch(a.trader)

	if a.recorder == nil {
		return
	}
	switch e := ev.(type) {
	case venue.BookUpdate:
		a.recorder.EnqueueBookTop(record.BookTop{
			Time:       time.Now().UTC(),
			Instrument: trader.Instrument(e.Instrument).String(),
			Sequence:   e.Sequence,
			BestBid:    first(e.BidPrices),
			BidVolume:  first(e.BidVolumes),
			BestAsk:    first(e.AskPrices),
			AskVolume:  first(e.AskVolumes),
		})
	case venue.OrderFilled:
		if !fillOwned {
			return
		}
		a.recorder.EnqueueFill(record.Fill{
			Time:     time.Now().UTC(),
			OrderID:  e.OrderID,
			Side:     fillSide.String(),
			Price:    e.Price,
			Volume:   e.Volume,
			Position: a.trader.Position(),
		})
	}
}

func (a *App) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.prom.Handler())
	server := &http.Server{Addr: a.cfg.Metrics.ListenAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}

func (a *App) close() {
	if a.journalStore != nil {
		if err := a.journalStore.Close(); err != nil {
			a.log.Warn("journal close failed", zap.Error(err))
		}
	}
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.log.Warn("recorder close failed", zap.Error(err))
		}
	}
	a.sess.Close()
}

func first(vals []int64) int64 {
	if len(vals) == 0 {
		return 0
	}
	return vals[0]
}
