package main

import (
	"time"

	"noise-stream/internal/noise"
)

type sessionInfo struct {
	ID      string       `json:"id"`
	Remote  string       `json:"remote"`
	Started time.Time    `json:"started"`
	Length  int          `json:"length"`
	Params  noise.Params `json:"params"`
	Ticks   int64        `json:"ticks"`
	State   string       `json:"state"`
}

type configResponse struct {
	Length     int             `json:"length"`
	IntervalMS int             `json:"interval_ms"`
	Mode       string          `json:"mode"` // interval|single-shot
	Warp       bool            `json:"warp"`
	MaxLength  int             `json:"max_length"`
	Noise      string          `json:"noise"`
	Seed       int64           `json:"seed"` // replay with SEED_MODE=repro
	SeedTag    string          `json:"seed_tag"`
	Params     noise.Params    `json:"params"` // for Length
	Overrides  noise.Overrides `json:"overrides"`
	Sessions   int             `json:"sessions"`
	Served     int64           `json:"served"`
}

// windowReport is printed by the scrub client.
type windowReport struct {
	Row     int   `json:"row"`
	Start   int   `json:"start"`
	Height  int   `json:"height"`
	Width   int   `json:"width"`
	Summary any   `json:"summary"`
	Time    int64 `json:"time"`
}
