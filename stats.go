// stats.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"reflect"
	"time"

	"gonum.org/v1/gonum/stat"

	"noise-stream/internal/client"
	"noise-stream/internal/ringstore"
	"noise-stream/internal/scrub"
)

/* ===========================
   ROW STATISTICS
   =========================== */

// meanCrossings describes how the row moves around its mean: how often
// consecutive samples fall on opposite sides, the mean run length between
// crossings, the share of samples above the mean and the lag-1
// autocorrelation. Lower crossing rates mean smoother noise.
func meanCrossings(row []float32, mean float64) map[string]any {
	n := len(row)
	xs := make([]float64, n)
	above, crossings := 0, 0
	for i, v := range row {
		xs[i] = float64(v)
		if xs[i] > mean {
			above++
		}
		if i > 0 && (xs[i] > mean) != (xs[i-1] > mean) {
			crossings++
		}
	}
	out := map[string]any{
		"n":       n,
		"count":   crossings,
		"rate":    math.NaN(),
		"meanRun": math.NaN(),
		"above":   math.NaN(),
		"lag1":    math.NaN(),
	}
	if n == 0 {
		return out
	}
	out["above"] = float64(above) / float64(n)
	out["meanRun"] = float64(n) / float64(crossings+1)
	if n > 1 {
		out["rate"] = float64(crossings) / float64(n-1)
	}
	if n > 2 {
		out["lag1"] = stat.Correlation(xs[:n-1], xs[1:], nil)
	}
	return out
}

// rowStats summarizes a row and how it crosses its mean.
func rowStats(row []float32) map[string]any {
	s := ringstore.Summarize(row)
	return map[string]any{
		"summary":   summaryMap(s),
		"crossings": meanCrossings(row, s.Mean),
	}
}

func summaryMap(s ringstore.Summary) map[string]any {
	return map[string]any{
		"count":  s.Count,
		"mean":   s.Mean,
		"stddev": s.StdDev,
		"median": s.Median,
		"min":    s.Min,
		"max":    s.Max,
	}
}

// sanitizeForJSON recursively walks common composite types and replaces
// NaN/Inf with nil so encoding/json doesn't fail with
// "json: unsupported value: NaN".
func sanitizeForJSON(v any) any {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		fv := float64(t)
		if math.IsNaN(fv) || math.IsInf(fv, 0) {
			return nil
		}
		return fv
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		bool, string:
		return t
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = sanitizeForJSON(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = sanitizeForJSON(el)
		}
		return out
	case []float32:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = sanitizeForJSON(el)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = sanitizeForJSON(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any)
		for _, key := range rv.MapKeys() {
			out[fmt.Sprint(key.Interface())] = sanitizeForJSON(rv.MapIndex(key).Interface())
		}
		return out
	default:
		return v
	}
}

/* ===========================
   SCRUB CLIENT MODE
   =========================== */

// runScrub consumes the stream at cfg.Scrub into a ring store and prints a
// JSON window report to out every cfg.ReportEvery rows.
func runScrub(ctx context.Context, cfg *config, out io.Writer) error {
	if cfg.ReportEvery < 1 {
		return fmt.Errorf("every must be positive, got %d", cfg.ReportEvery)
	}
	store, err := ringstore.New(cfg.StoreWidth, cfg.StoreHeight, cfg.Length)
	if err != nil {
		return err
	}
	win, err := scrub.NewWindow(cfg.RowPixel)
	if err != nil {
		return err
	}
	var scroller scrub.Scroller
	follow := cfg.Scroll < 0
	scroller.Scroll(cfg.Scroll)

	enc := json.NewEncoder(out)
	onRow := func(index int, _ []float32) {
		if (index+1)%cfg.ReportEvery != 0 {
			return
		}
		if follow {
			scroller.Scroll(float64(index+1)*win.RowPixelHeight - scroller.Position())
		}
		v, err := win.Query(store, scroller.Position(), cfg.ViewHeight)
		if errors.Is(err, ringstore.ErrNoView) {
			return
		}
		if err != nil {
			log.Printf("scrub: query: %v", err)
			return
		}
		_ = enc.Encode(windowReport{
			Row:     index,
			Start:   v.Start,
			Height:  v.Height,
			Width:   v.Width,
			Summary: sanitizeForJSON(summaryMap(v.Summary())),
			Time:    time.Now().UnixMilli(),
		})
	}

	log.Printf("scrub: reading %s into %dx%d store", cfg.Scrub, cfg.StoreWidth, cfg.StoreHeight)
	st, err := client.Run(ctx, client.Options{URL: cfg.Scrub, Length: cfg.Length, Logger: slog.Default()}, store, onRow)
	log.Printf("scrub: %d rows, %d dropped, %d resets", st.Rows, st.Dropped, st.Resets)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
