package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
)

// hmacDRBG is a minimal HMAC-SHA256 DRBG in the SP 800-90A shape, without
// reseeding. It turns pooled seed material into a deterministic byte stream.
type hmacDRBG struct {
	k []byte
	v []byte
}

func newHMACDRBG(material []byte) *hmacDRBG {
	d := &hmacDRBG{k: make([]byte, 32), v: make([]byte, 32)}
	for i := range d.v {
		d.v[i] = 0x01
	}
	d.update(material)
	return d
}

func (d *hmacDRBG) mac(parts ...[]byte) []byte {
	m := hmac.New(sha256.New, d.k)
	for _, p := range parts {
		m.Write(p)
	}
	return m.Sum(nil)
}

func (d *hmacDRBG) update(material []byte) {
	d.k = d.mac(d.v, []byte{0x00}, material)
	d.v = d.mac(d.v)
	if len(material) == 0 {
		return
	}
	d.k = d.mac(d.v, []byte{0x01}, material)
	d.v = d.mac(d.v)
}

// generate returns the next n bytes.
func (d *hmacDRBG) generate(n int) []byte {
	out := make([]byte, 0, n+32)
	for len(out) < n {
		d.v = d.mac(d.v)
		out = append(out, d.v...)
	}
	d.update(nil)
	return out[:n]
}

// seedFromMaterial draws an int64 seed from the pooled material.
func seedFromMaterial(parts ...[]byte) int64 {
	var pool []byte
	for _, p := range parts {
		pool = append(pool, p...)
	}
	return int64(binary.LittleEndian.Uint64(newHMACDRBG(pool).generate(8)))
}
