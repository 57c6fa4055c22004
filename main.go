package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"noise-stream/internal/noise"
	"noise-stream/internal/stream"
)

func main() {
	cfg := defaultConfig()
	cfg.fromEnv(os.Getenv)
	fs := flag.NewFlagSet("noise-stream", flag.ExitOnError)
	cfg.bind(fs)
	_ = fs.Parse(os.Args[1:])
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.SeedMode = "repro"
		}
	})
	if err := cfg.validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	stream.SetLogger(slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Scrub != "" {
		if err := runScrub(ctx, cfg, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	seed, tag := deriveSeed(seedConfig{Mode: cfg.SeedMode, Seed64: cfg.Seed})
	kind, _ := noise.ParseKind(cfg.Noise)
	src, err := noise.NewSource(kind, seed)
	if err != nil {
		log.Fatalf("noise: %v", err)
	}
	log.Printf("noise: %s seed=%d (%s)", kind, seed, tag)

	s := newServer(cfg, noise.New(src), seed, tag)
	if err := serve(ctx, cfg.Addr, s); err != nil {
		log.Fatal(err)
	}
}

// serve runs the HTTP server until ctx is done, then shuts it down and waits
// for open stream sessions to finish.
func serve(ctx context.Context, addr string, s *server) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mode := "single-shot"
		if d := s.cfg.interval(); d > 0 {
			mode = "every " + d.String()
		}
		log.Printf("noise-stream server on %s (length=%d, %s)", srv.Addr, s.cfg.Length, mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.sessions.wait()
		log.Printf("server stopped")
		return err
	})
	return g.Wait()
}
