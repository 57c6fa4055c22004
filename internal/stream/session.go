// Package stream runs the server side of a noise stream: one Session per
// connection, emitting one encoded row per tick and accepting length
// reconfiguration from the peer.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"noise-stream/internal/codec"
	"noise-stream/internal/noise"
)

const (
	// DefaultLength is the row length used until a peer configures one.
	DefaultLength = 128
	// DefaultMaxLength bounds accepted row lengths.
	DefaultMaxLength = 1 << 16
)

// Conn is the subset of *websocket.Conn a Session needs. ReadMessage is only
// called from one goroutine and WriteMessage from another; Close may be
// called concurrently with both.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Config controls a Session.
type Config struct {
	// Length is the initial row length.
	Length int
	// Interval between frames. Zero selects single-shot mode: one frame is
	// sent on connect and nothing after.
	Interval time.Duration
	// Warp selects the domain-warped field.
	Warp bool
	// MaxLength is the largest length a peer may request.
	MaxLength int
	// WriteTimeout bounds each frame write when the Conn supports deadlines.
	WriteTimeout time.Duration
	// Derive maps a row length to generation parameters. Defaults to
	// noise.ParamsForLength.
	Derive func(length int) noise.Params
}

func (c Config) withDefaults() Config {
	if c.MaxLength <= 0 {
		c.MaxLength = DefaultMaxLength
	}
	if c.Length <= 0 || c.Length > c.MaxLength {
		c.Length = DefaultLength
	}
	if c.Derive == nil {
		c.Derive = noise.ParamsForLength
	}
	return c
}

// State is the protocol state of a Session.
type State int32

const (
	AwaitingConfig State = iota
	Streaming
	Closed
)

func (s State) String() string {
	switch s {
	case AwaitingConfig:
		return "awaiting_config"
	case Streaming:
		return "streaming"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// settings is replaced as a whole on reconfiguration and never mutated.
type settings struct {
	length int
	params noise.Params
}

// Session is the per-connection protocol handler. Sessions share nothing but
// the read-only Field.
type Session struct {
	cfg   Config
	field *noise.Field

	cur   atomic.Pointer[settings]
	ticks atomic.Int64
	state atomic.Int32
}

// NewSession returns a session generating from field.
func NewSession(field *noise.Field, cfg Config) *Session {
	s := &Session{cfg: cfg.withDefaults(), field: field}
	s.cur.Store(&settings{length: s.cfg.Length, params: s.cfg.Derive(s.cfg.Length)})
	return s
}

// Configure switches to rows of length samples from the next tick on. Values
// outside [1, MaxLength] are ignored and the current configuration kept; the
// return value reports whether the change was applied.
func (s *Session) Configure(length int) bool {
	if length < 1 || length > s.cfg.MaxLength {
		Logger().Debug("stream: ignoring length", "length", length, "max", s.cfg.MaxLength)
		return false
	}
	s.cur.Store(&settings{length: length, params: s.cfg.Derive(length)})
	return true
}

// HandleControl applies a control message of the form {"length": n}. n may
// be a JSON integer or a string holding one. Anything else is ignored.
func (s *Session) HandleControl(msg []byte) bool {
	var m struct {
		Length any `json:"length"`
	}
	if err := json.Unmarshal(msg, &m); err != nil {
		Logger().Debug("stream: ignoring malformed control message", "err", err)
		return false
	}
	n, ok := parseLength(m.Length)
	if !ok {
		Logger().Debug("stream: ignoring control message without usable length", "msg", string(msg))
		return false
	}
	return s.Configure(n)
}

func parseLength(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t < 1 || t > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Length returns the current row length.
func (s *Session) Length() int { return s.cur.Load().length }

// Params returns the current generation parameters.
func (s *Session) Params() noise.Params { return s.cur.Load().params }

// Ticks returns how many frames have been sent.
func (s *Session) Ticks() int64 { return s.ticks.Load() }

// State returns the protocol state.
func (s *Session) State() State { return State(s.state.Load()) }

// Tick builds the row for the current tick index from the current settings,
// sends it as one binary message and advances the index.
func (s *Session) Tick(conn Conn) error {
	cur := s.cur.Load()
	index := s.ticks.Load()
	frame := codec.Encode(s.field.Row(index, cur.length, cur.params, s.cfg.Warp))

	if d, ok := conn.(writeDeadliner); ok && s.cfg.WriteTimeout > 0 {
		_ = d.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("stream: send frame %d: %w", index, err)
	}
	s.ticks.Add(1)
	s.state.CompareAndSwap(int32(AwaitingConfig), int32(Streaming))
	return nil
}

var errPeerGone = errors.New("stream: peer gone")

// Run serves conn until the peer disconnects, a send fails or ctx is done.
// Control messages are applied as they arrive. A failed send is returned;
// a disconnect is not an error. Run closes conn before returning.
func (s *Session) Run(ctx context.Context, conn Conn) error {
	log := Logger()
	log.Info("stream: session started", "length", s.Length(), "interval", s.cfg.Interval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				log.Debug("stream: read ended", "err", err)
				return errPeerGone
			}
			if mt == websocket.TextMessage {
				s.HandleControl(msg)
			}
		}
	})
	g.Go(func() error {
		return s.emit(gctx, conn)
	})
	g.Go(func() error {
		<-gctx.Done()
		return conn.Close()
	})

	err := g.Wait()
	s.state.Store(int32(Closed))
	switch {
	case ctx.Err() != nil:
		err = ctx.Err()
	case errors.Is(err, errPeerGone):
		err = nil
	}
	if err != nil && ctx.Err() == nil {
		log.Warn("stream: session failed", "ticks", s.Ticks(), "err", err)
	} else {
		log.Info("stream: session ended", "ticks", s.Ticks())
	}
	return err
}

func (s *Session) emit(ctx context.Context, conn Conn) error {
	if s.cfg.Interval <= 0 {
		if err := s.Tick(conn); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Tick(conn); err != nil {
				return err
			}
		}
	}
}
