package venue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Session owns the websocket connection to the simulator. Events are
// delivered through Run strictly one at a time, matching the sequential
// delivery contract the strategy relies on.
type Session struct {
	url            string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	login          Login
	log            *zap.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewSession(url string, reconnectDelay, pingInterval time.Duration, login Login, log *zap.Logger) *Session {
	return &Session{
		url:            url,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		login:          login,
		log:            log,
	}
}

func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}
	conn, _, err := websocket.Dial(ctx, s.url, nil)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

// Send writes one outbound request frame.
func (s *Session) Send(ctx context.Context, frameType string, v any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.New("session not connected")
	}
	data, err := EncodeRequest(frameType, v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// Run connects, logs in, and delivers decoded events to fn until the context
// is cancelled. A dropped connection synthesizes a Disconnect event, then the
// session reconnects after the configured delay and logs in again.
func (s *Session) Run(ctx context.Context, fn func(Event)) error {
	for {
		if err := s.ensureConnected(ctx); err != nil {
			return err
		}
		pingCtx, cancel := context.WithCancel(ctx)
		pingDone := make(chan struct{})
		go func() {
			defer close(pingDone)
			s.pingLoop(pingCtx)
		}()
		err := s.readLoop(ctx, fn)
		cancel()
		<-pingDone
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logReadLoopError(err)
		s.resetConn()
		if fn != nil {
			fn(Disconnect{})
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Session) ensureConnected(ctx context.Context) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Send(ctx, TypeLogin, s.login)
}

func (s *Session) readLoop(ctx context.Context, fn func(Event)) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.New("session not connected")
	}
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		ev, err := DecodeEvent(data)
		if err != nil {
			if s.log != nil {
				s.log.Warn("dropping undecodable frame", zap.Error(err))
			}
			continue
		}
		if fn != nil {
			fn(ev)
		}
	}
}

func (s *Session) pingLoop(ctx context.Context) {
	s.mu.Lock()
	conn := s.conn
	interval := s.pingInterval
	s.mu.Unlock()
	if conn == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		}
	}
}

func (s *Session) logReadLoopError(err error) {
	if s.log == nil {
		return
	}
	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure {
		s.log.Info("session read loop ended", zap.Error(err))
		return
	}
	s.log.Warn("session read loop ended", zap.Error(err))
}

func (s *Session) resetConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close(websocket.StatusNormalClosure, "reset")
		s.conn = nil
	}
}

// Close tears the connection down outside of Run.
func (s *Session) Close() {
	s.resetConn()
}
