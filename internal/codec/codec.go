// Package codec converts rows of float32 samples to and from the wire frame
// used on the stream: 4 bytes per sample, little-endian IEEE-754, no header.
// The row length is agreed out of band.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SampleSize is the encoded width of one sample in bytes.
const SampleSize = 4

// FramingError reports a frame whose length cannot hold whole samples.
type FramingError struct {
	Len int
}

func (e *FramingError) Error() string {
	if e.Len == 0 {
		return "codec: empty frame"
	}
	return fmt.Sprintf("codec: frame length %d is not a multiple of %d", e.Len, SampleSize)
}

// FrameLen returns the encoded size of a row with n samples.
func FrameLen(n int) int { return n * SampleSize }

// Encode returns the frame for row.
func Encode(row []float32) []byte {
	return AppendEncode(make([]byte, 0, FrameLen(len(row))), row)
}

// AppendEncode appends the frame for row to dst and returns the extended
// slice.
func AppendEncode(dst []byte, row []float32) []byte {
	for _, v := range row {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// Decode parses a frame into a new row.
func Decode(buf []byte) ([]float32, error) {
	if err := check(buf); err != nil {
		return nil, err
	}
	return decode(make([]float32, len(buf)/SampleSize), buf), nil
}

// DecodeInto parses a frame into dst, reusing its storage when it is large
// enough, and returns the row.
func DecodeInto(dst []float32, buf []byte) ([]float32, error) {
	if err := check(buf); err != nil {
		return dst[:0], err
	}
	n := len(buf) / SampleSize
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	return decode(dst[:n], buf), nil
}

func check(buf []byte) error {
	if len(buf) == 0 || len(buf)%SampleSize != 0 {
		return &FramingError{Len: len(buf)}
	}
	return nil
}

func decode(dst []float32, buf []byte) []float32 {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*SampleSize:]))
	}
	return dst
}
