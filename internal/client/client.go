// Package client consumes a noise stream into a ring store.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"noise-stream/internal/codec"
)

// Store receives decoded rows. *ringstore.Store satisfies it.
type Store interface {
	Append(row []float32) (int, error)
	Reset(rowLength int) error
	RowLength() int
}

// Options configures Run.
type Options struct {
	// URL of the stream endpoint, ws:// or wss://.
	URL string
	// Length is sent as the first control message. Zero keeps the server's
	// default.
	Length int
	Header http.Header
	Dialer *websocket.Dialer
	Logger *slog.Logger
}

// Stats counts what Run did with incoming messages.
type Stats struct {
	Rows    int // appended
	Dropped int // malformed frames
	Resets  int // store resized for a new row length
}

// Run connects to opts.URL and appends every decoded row to store, calling
// onRow (if non-nil) with the logical row index after each append. Frames
// that do not decode are dropped. A frame of a different length than the
// store's resets the store to that length first.
//
// Run returns when ctx is done, the server closes the connection, or the
// transport fails. It does not reconnect.
func Run(ctx context.Context, opts Options, store Store, onRow func(index int, row []float32)) (Stats, error) {
	var st Stats
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, opts.URL, opts.Header)
	if err != nil {
		return st, fmt.Errorf("client: dial %s: %w", opts.URL, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if opts.Length > 0 {
		msg, _ := json.Marshal(map[string]int{"length": opts.Length})
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return st, fmt.Errorf("client: send length: %w", err)
		}
	}
	log.Info("client: connected", "url", opts.URL, "length", opts.Length)

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return st, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return st, nil
			}
			return st, fmt.Errorf("client: read: %w", err)
		}
		if mt != websocket.BinaryMessage {
			continue
		}

		row, err := codec.Decode(msg)
		if err != nil {
			st.Dropped++
			var fe *codec.FramingError
			if errors.As(err, &fe) {
				log.Warn("client: dropping frame", "bytes", fe.Len)
			}
			continue
		}

		if len(row) != store.RowLength() {
			if err := store.Reset(len(row)); err != nil {
				st.Dropped++
				log.Warn("client: cannot resize store", "length", len(row), "err", err)
				continue
			}
			st.Resets++
			log.Info("client: row length changed", "length", len(row))
		}

		index, err := store.Append(row)
		if err != nil {
			return st, fmt.Errorf("client: append row: %w", err)
		}
		st.Rows++
		if onRow != nil {
			onRow(index, row)
		}
	}
}
