package main

import (
	"encoding/hex"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"noise-stream/internal/codec"
	"noise-stream/internal/noise"
	"noise-stream/internal/stream"
)

// ======= helpers =======
func atoi(q string, def int) int {
	if q == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(q))
	if err != nil {
		return def
	}
	return v
}

func atoi64(q string, def int64) int64 {
	if q == "" {
		return def
	}
	v, err := strconv.ParseInt(strings.TrimSpace(q), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func atof(q string, def float64) float64 {
	if q == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func atob(q string, def bool) bool {
	if q == "" {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(q))
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ======= server =======
type server struct {
	cfg      *config
	field    *noise.Field
	seed     int64
	seedTag  string
	upgrader websocket.Upgrader
	sessions *registry
}

func newServer(cfg *config, field *noise.Field, seed int64, seedTag string) *server {
	return &server{
		cfg:     cfg,
		field:   field,
		seed:    seed,
		seedTag: seedTag,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 5 * time.Second,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
		sessions: newRegistry(),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", s.streamHandler)
	mux.HandleFunc("/row", s.rowHandler)
	mux.HandleFunc("/config", s.configHandler)
	mux.HandleFunc("/sessions", s.sessionsHandler)
	c := cors.New(cors.Options{
		AllowOriginFunc:  nil,
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	})
	return c.Handler(mux)
}

// ======= handlers =======

// /stream upgrades to a WebSocket and runs one session on it.
func (s *server) streamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream: upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	// the server's read and write timeouts stay on the hijacked conn
	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	sess := stream.NewSession(s.field, s.cfg.streamConfig())
	e, ok := s.sessions.add(r.RemoteAddr, sess)
	if !ok {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
		return
	}
	defer s.sessions.remove(e)

	if err := sess.Run(r.Context(), conn); err != nil && r.Context().Err() == nil {
		log.Printf("session %s: %v", e.ID, err)
	}
}

// /row?index=0&length=128&warp=false&format=json|raw|hex
func (s *server) rowHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	index := atoi64(q.Get("index"), 0)
	length := atoi(q.Get("length"), s.cfg.Length)
	if length < 1 || length > s.cfg.MaxLength {
		http.Error(w, "length out of range", http.StatusBadRequest)
		return
	}
	warp := atob(q.Get("warp"), s.cfg.Warp)
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "json"
	}

	p := s.cfg.params(length)
	row := s.field.Row(index, length, p, warp)

	switch format {
	case "raw":
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(codec.Encode(row))
	case "hex":
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(hex.EncodeToString(codec.Encode(row))))
	case "json":
		resp := rowStats(row)
		resp["index"] = index
		resp["length"] = length
		resp["warp"] = warp
		resp["params"] = p
		resp["samples"] = row
		writeJSON(w, sanitizeForJSON(resp))
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
	}
}

func (s *server) configHandler(w http.ResponseWriter, r *http.Request) {
	mode := "single-shot"
	if s.cfg.interval() > 0 {
		mode = "interval"
	}
	live, served := s.sessions.count()
	writeJSON(w, configResponse{
		Length:     s.cfg.Length,
		IntervalMS: s.cfg.IntervalMS,
		Mode:       mode,
		Warp:       s.cfg.Warp,
		MaxLength:  s.cfg.MaxLength,
		Noise:      s.cfg.Noise,
		Seed:       s.seed,
		SeedTag:    s.seedTag,
		Params:     s.cfg.params(s.cfg.Length),
		Overrides:  s.cfg.Overrides,
		Sessions:   live,
		Served:     served,
	})
}

func (s *server) sessionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sessions.list())
}
