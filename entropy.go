package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"strconv"
	"time"
)

// seedConfig selects where the noise seed comes from.
type seedConfig struct {
	Mode   string `json:"mode"`   // os|jitter|mix|repro
	Seed64 int64  `json:"seed64"` // only for mode=repro
}

// deriveSeed returns the seed for the noise source and a tag describing its
// origin. The seed is reported at startup and on /config so any run can be
// replayed with mode=repro.
func deriveSeed(es seedConfig) (seed int64, tag string) {
	switch es.Mode {
	case "repro":
		return es.Seed64, "mode:repro seed=" + strconv.FormatInt(es.Seed64, 10)
	case "os":
		return seedFromOS(), "mode:os"
	case "jitter":
		return seedFromJitter(32), "mode:jitter"
	case "mix":
		return seedFromMaterial(rawFromOS(32), rawFromJitter(48), []byte("seed-mix-v1")), "mode:mix"
	default:
		return seedFromOS(), "mode:os"
	}
}

func seedFromOS() int64 {
	var b [8]byte
	_, _ = io.ReadFull(rand.Reader, b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}

func rawFromOS(n int) []byte {
	b := make([]byte, n)
	_, _ = io.ReadFull(rand.Reader, b)
	return b
}

func seedFromJitter(rounds int) int64 {
	b := rawFromJitter(rounds)
	return int64(binary.LittleEndian.Uint64(b[:8]))
}

// rawFromJitter hashes scheduler and timer jitter over a number of short
// busy loops.
func rawFromJitter(rounds int) []byte {
	h := sha256.New()
	tmp := make([]byte, 8)
	for i := 0; i < rounds; i++ {
		t0 := time.Now()
		spin := 100 + (i % 17)
		for k := 0; k < spin; k++ {
		}
		time.Sleep(0)
		binary.LittleEndian.PutUint64(tmp, uint64(time.Since(t0).Nanoseconds()))
		h.Write(tmp)
		binary.LittleEndian.PutUint64(tmp, uint64(time.Now().UnixNano()))
		h.Write(tmp)
	}
	return h.Sum(nil)
}
