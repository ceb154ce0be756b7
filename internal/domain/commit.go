package domain

import (
	"hash/fnv"
	"time"
)

// Commit is one commit on the analyzed branch, identified by its content hash.
type Commit struct {
	Hash    string
	Author  string
	Subject string
	When    time.Time
}

// ShortHash returns the abbreviated commit identifier used in entity paths.
func (c Commit) ShortHash() string {
	if len(c.Hash) < 7 {
		return c.Hash
	}
	return c.Hash[:7]
}

// Color is an RGBA color quadruplet passed through to the telemetry sink.
type Color [4]uint8

var (
	ColorOpen     = Color{255, 255, 255, 255}
	ColorClosed   = Color{0, 255, 0, 255}
	ColorFallback = Color{0, 0, 255, 255}

	ColorPlotOpen   = Color{255, 255, 255, 255}
	ColorPlotTotal  = Color{50, 50, 255, 255}
	ColorPlotClosed = Color{50, 255, 50, 255}

	ColorTodo = Color{255, 165, 0, 255}
)

// AuthorColor derives a stable per-author series color from the author's
// display name. The alpha channel is always opaque and the channels are
// biased upward so series stay visible on a dark background.
func AuthorColor(name string) Color {
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	return Color{
		uint8(v>>16) | 0x40,
		uint8(v>>8) | 0x40,
		uint8(v) | 0x40,
		255,
	}
}
