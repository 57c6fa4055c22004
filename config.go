package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"noise-stream/internal/noise"
	"noise-stream/internal/stream"
)

// config is the process configuration. Environment variables seed the
// defaults and command-line flags override them.
type config struct {
	Addr       string
	Length     int
	IntervalMS int
	Warp       bool
	MaxLength  int
	Noise      string
	SeedMode   string
	Seed       int64
	Overrides  noise.Overrides
	Verbose    bool

	// client mode
	Scrub       string
	StoreWidth  int
	StoreHeight int
	ViewHeight  int
	RowPixel    float64
	Scroll      float64
	ReportEvery int
}

func defaultConfig() *config {
	return &config{
		Addr:        ":8080",
		Length:      stream.DefaultLength,
		MaxLength:   stream.DefaultMaxLength,
		Noise:       string(noise.KindSimplex),
		SeedMode:    "os",
		StoreWidth:  512,
		StoreHeight: 512,
		ViewHeight:  64,
		RowPixel:    1,
		Scroll:      -1,
		ReportEvery: 64,
	}
}

// fromEnv overlays variables read through getenv. Unparsable values keep the
// current setting.
func (c *config) fromEnv(getenv func(string) string) {
	if v := getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if n := atoi(getenv("LENGTH"), c.Length); n > 0 {
		c.Length = n
	}
	c.IntervalMS = atoi(getenv("INTERVAL"), c.IntervalMS)
	c.Warp = atob(getenv("WARP"), c.Warp)
	if n := atoi(getenv("MAX_LENGTH"), c.MaxLength); n > 0 {
		c.MaxLength = n
	}
	if v := getenv("NOISE"); v != "" {
		c.Noise = strings.ToLower(v)
	}
	if v := getenv("SEED_MODE"); v != "" {
		c.SeedMode = strings.ToLower(v)
	}
	if v := getenv("SEED"); v != "" {
		if s, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = s
			c.SeedMode = "repro"
		}
	}
	c.Overrides.Octaves = atoi(getenv("OCTAVES"), c.Overrides.Octaves)
	c.Overrides.Period = atof(getenv("PERIOD"), c.Overrides.Period)
	c.Overrides.Lacunarity = atof(getenv("LACUNARITY"), c.Overrides.Lacunarity)
	c.Overrides.Gain = atof(getenv("GAIN"), c.Overrides.Gain)
}

func (c *config) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.IntVar(&c.Length, "length", c.Length, "initial row length")
	fs.IntVar(&c.IntervalMS, "interval", c.IntervalMS, "milliseconds between frames (0 sends one frame per connection)")
	fs.BoolVar(&c.Warp, "warp", c.Warp, "domain-warp the field")
	fs.IntVar(&c.MaxLength, "max-length", c.MaxLength, "largest row length a client may request")
	fs.StringVar(&c.Noise, "noise", c.Noise, "noise primitive: simplex|perlin|value")
	fs.StringVar(&c.SeedMode, "seed-mode", c.SeedMode, "seed source: os|jitter|mix|repro")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for -seed-mode=repro")
	fs.IntVar(&c.Overrides.Octaves, "octaves", c.Overrides.Octaves, "fixed octave count (0 derives from length)")
	fs.Float64Var(&c.Overrides.Period, "period", c.Overrides.Period, "fixed period (0 derives from length)")
	fs.Float64Var(&c.Overrides.Lacunarity, "lacunarity", c.Overrides.Lacunarity, "frequency multiplier per octave")
	fs.Float64Var(&c.Overrides.Gain, "gain", c.Overrides.Gain, "amplitude multiplier per octave")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "debug logging")

	fs.StringVar(&c.Scrub, "scrub", c.Scrub, "run as a client of this ws:// URL instead of serving")
	fs.IntVar(&c.StoreWidth, "store-width", c.StoreWidth, "client store width in samples")
	fs.IntVar(&c.StoreHeight, "store-height", c.StoreHeight, "client store height in rows")
	fs.IntVar(&c.ViewHeight, "view", c.ViewHeight, "rows per scrub window")
	fs.Float64Var(&c.RowPixel, "row-px", c.RowPixel, "scroll units per row")
	fs.Float64Var(&c.Scroll, "scroll", c.Scroll, "scroll position (negative follows the newest rows)")
	fs.IntVar(&c.ReportEvery, "every", c.ReportEvery, "print a window report every N rows")
}

// interval is zero in single-shot mode.
func (c *config) interval() time.Duration {
	if c.IntervalMS <= 0 {
		return 0
	}
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// params derives generation parameters for a row length, applying any fixed
// overrides.
func (c *config) params(length int) noise.Params {
	return c.Overrides.Apply(noise.ParamsForLength(length))
}

func (c *config) streamConfig() stream.Config {
	return stream.Config{
		Length:       c.Length,
		Interval:     c.interval(),
		Warp:         c.Warp,
		MaxLength:    c.MaxLength,
		WriteTimeout: 10 * time.Second,
		Derive:       c.params,
	}
}

func (c *config) validate() error {
	if c.MaxLength < 1 {
		return fmt.Errorf("max-length must be positive, got %d", c.MaxLength)
	}
	if c.Length < 1 || c.Length > c.MaxLength {
		return fmt.Errorf("length must be in [1, %d], got %d", c.MaxLength, c.Length)
	}
	if _, err := noise.ParseKind(c.Noise); err != nil {
		return err
	}
	switch c.SeedMode {
	case "os", "jitter", "mix", "repro":
	default:
		return fmt.Errorf("unknown seed mode %q", c.SeedMode)
	}
	if err := c.params(c.Length).Validate(); err != nil {
		return fmt.Errorf("noise parameters: %w", err)
	}
	return nil
}
