// SPDX-License-Identifier: MIT
package module

import (
	"blockhost/internal/engine"
	"math"
	"sync/atomic"

	"github.com/mattn/go-runewidth"
)

// DisplayWidth is the number of terminal columns a parameter label may use.
const DisplayWidth = 10

// Parameter is the host-side binding of one engine parameter: its fixed
// metadata plus the live knob value.
//
// The knob is stored atomically so a UI goroutine can turn it while the audio
// thread reads it at block boundaries.
type Parameter struct {
	Index   int
	Label   string // engine parameter name, truncated to DisplayWidth
	Name    string // full display name
	Unit    string
	Min     float64
	Max     float64
	Default float64

	value atomic.Uint64
}

// bind fills in the fixed metadata for engine parameter index.
func (p *Parameter) bind(e engine.Engine, index int) {
	info := e.ParameterInfo(index)
	name := e.ParameterName(index)
	if name == "" {
		name = info.DisplayName
	}
	p.Index = index
	p.Label = runewidth.Truncate(name, DisplayWidth, "")
	p.Name = info.DisplayName
	p.Unit = info.Unit
	p.Min = info.Min
	p.Max = info.Max
	p.Default = info.InitialValue
	p.Reset()
}

// Value returns the current knob value.
func (p *Parameter) Value() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue moves the knob, clamped to the range read at construction.
func (p *Parameter) SetValue(v float64) {
	p.value.Store(math.Float64bits(clamp(v, p.Min, p.Max)))
}

// Nudge moves the knob by a fraction of its range.
func (p *Parameter) Nudge(fraction float64) {
	p.SetValue(p.Value() + fraction*math.Abs(p.Max-p.Min))
}

// Reset returns the knob to the engine's initial value.
func (p *Parameter) Reset() {
	p.SetValue(p.Default)
}

// Scale combines a knob value with a normalised control voltage offset and
// maps the result into [lo, hi]. A full-scale CV of ±1 moves the value by the
// whole parameter range.
func Scale(knob, cv, lo, hi float64) float64 {
	return clamp(knob+cv*math.Abs(hi-lo), lo, hi)
}

func clamp(x, lo, hi float64) float64 {
	return max(min(x, hi), lo)
}
