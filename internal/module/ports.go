// SPDX-License-Identifier: MIT
package module

// VoltageScale maps the host's ±5V signal convention onto the engine's
// normalised ±1.0 samples.
const VoltageScale = 5.0

// Input is a host input jack. The host writes the voltage and connection
// state before each Tick; the module reads them during the Tick.
type Input struct {
	voltage   float32
	connected bool
}

func (in *Input) IsConnected() bool { return in.connected }
func (in *Input) Voltage() float32  { return in.voltage }

// SetVoltage sets the jack voltage. Unplugged jacks read as 0 regardless.
func (in *Input) SetVoltage(v float32) {
	in.voltage = v
}

// SetConnected plugs or unplugs the jack.
func (in *Input) SetConnected(connected bool) {
	in.connected = connected
}

// normalized returns the voltage in engine units, or 0 when unplugged.
func (in *Input) normalized() float64 {
	if !in.connected {
		return 0
	}
	return float64(in.voltage) / VoltageScale
}

// Output is a host output jack written by the module on every Tick.
type Output struct {
	voltage float32
}

func (out *Output) Voltage() float32 { return out.voltage }

func (out *Output) SetVoltage(v float32) {
	out.voltage = v
}
