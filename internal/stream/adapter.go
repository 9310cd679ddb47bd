package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/cryptoview/internal/model"
)

// TickHandler receives decoded ticks in arrival order.
type TickHandler interface {
	HandleTick(tick model.Tick) error
}

// TickHandlerFunc is a function adapter for TickHandler.
type TickHandlerFunc func(model.Tick) error

func (f TickHandlerFunc) HandleTick(t model.Tick) error {
	return f(t)
}

// StateListener is notified on every state transition.
type StateListener interface {
	OnStateChange(state State)
}

// StateListenerFunc is a function adapter for StateListener.
type StateListenerFunc func(State)

func (f StateListenerFunc) OnStateChange(s State) {
	f(s)
}

// Adapter maintains the streaming connection and retries forever.
type Adapter struct {
	cfg      Config
	url      string
	ticks    TickHandler
	listener StateListener
	logger   *slog.Logger

	state       atomic.Int32
	connects    atomic.Int64
	disconnects atomic.Int64
	frames      atomic.Int64
	parseErrors atomic.Int64

	mu        sync.Mutex
	sessionID string
	running   bool
	stopped   bool
}

// NewAdapter creates an adapter for cfg.Pairs. ticks and listener may be nil.
func NewAdapter(cfg Config, ticks TickHandler, listener StateListener, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Backoff == nil {
		cfg.Backoff = ConstantBackoff{Delay: DefaultReconnectDelay}
	}
	a := &Adapter{
		cfg:      cfg,
		url:      StreamURL(cfg.URL, cfg.Pairs),
		ticks:    ticks,
		listener: listener,
		logger:   logger.With("component", "stream"),
	}
	a.state.Store(int32(StateClosed))
	return a
}

// URL returns the full stream URL.
func (a *Adapter) URL() string {
	return a.url
}

// State returns the current connection state.
func (a *Adapter) State() State {
	return State(a.state.Load())
}

// Stats returns the current counters.
func (a *Adapter) Stats() Stats {
	a.mu.Lock()
	sid := a.sessionID
	a.mu.Unlock()

	return Stats{
		State:       a.State(),
		SessionID:   sid,
		Connects:    a.connects.Load(),
		Disconnects: a.disconnects.Load(),
		Frames:      a.frames.Load(),
		ParseErrors: a.parseErrors.Load(),
	}
}

// Run connects and reconnects until ctx is cancelled, then returns nil.
// An adapter runs once; later calls return ErrStopped.
func (a *Adapter) Run(ctx context.Context) error {
	if len(a.cfg.Pairs) == 0 {
		return errors.New("stream: no pairs configured")
	}

	a.mu.Lock()
	if a.running || a.stopped {
		a.mu.Unlock()
		return ErrStopped
	}
	a.running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.stopped = true
		a.mu.Unlock()
		a.setState(StateStopped)
	}()

	a.logger.Info("stream adapter started", "url", a.url, "pairs", len(a.cfg.Pairs))

	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		a.setState(StateConnecting)
		opened, err := a.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if opened {
			attempt = 0
		}

		a.setState(StateClosed)

		wait := a.cfg.Backoff.Next(attempt)
		attempt++
		a.logger.Warn("stream disconnected, reconnecting",
			"err", err,
			"attempt", attempt,
			"backoff", wait,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// session runs one connection until it closes. opened reports whether the
// connection reached the open state.
func (a *Adapter) session(ctx context.Context) (opened bool, err error) {
	cc := a.cfg.Client
	cc.URL = a.url
	c := NewClient(cc, a.logger)

	if err := c.Connect(ctx); err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	sid := uuid.NewString()
	a.mu.Lock()
	a.sessionID = sid
	a.mu.Unlock()

	a.connects.Add(1)
	a.logger.Info("stream connected", "session", sid)
	a.setState(StateOpen)
	defer a.disconnects.Add(1)

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg := <-c.Messages():
			a.handleFrame(msg)
		case err := <-c.Errors():
			// Deliver frames read before the error.
			for {
				select {
				case msg := <-c.Messages():
					a.handleFrame(msg)
				default:
					return true, err
				}
			}
		}
	}
}

// handleFrame decodes one frame; malformed frames are counted and dropped.
func (a *Adapter) handleFrame(msg TimestampedMessage) {
	tick, err := DecodeFrame(msg.Data, msg.ReceivedAt)
	if err != nil {
		a.parseErrors.Add(1)
		a.logger.Warn("dropping malformed frame", "err", err, "bytes", len(msg.Data))
		return
	}
	a.frames.Add(1)

	if a.ticks == nil {
		return
	}
	if err := a.ticks.HandleTick(tick); err != nil {
		a.logger.Debug("tick handler failed", "symbol", tick.Symbol, "err", err)
	}
}

func (a *Adapter) setState(s State) {
	if State(a.state.Swap(int32(s))) == s {
		return
	}
	if a.listener != nil {
		a.listener.OnStateChange(s)
	}
}
