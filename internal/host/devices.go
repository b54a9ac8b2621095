// SPDX-License-Identifier: MIT
package host

import (
	"blockhost/internal/config"
	"fmt"
	"io"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
)

var ErrBadDevice = errors.New("device not found")

// Device is a PortAudio device as the CLI and TUI see it.
type Device struct {
	ID                int
	Name              string
	HostAPI           string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	LowLatency        time.Duration
	HighLatency       time.Duration
}

// Type reports whether the device can capture, play back or both.
func (d Device) Type() string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "Input/Output"
	case d.MaxInputChannels > 0:
		return "Input"
	case d.MaxOutputChannels > 0:
		return "Output"
	}
	return ""
}

// Initialize sets up the PortAudio subsystem. Pair it with Terminate.
func Initialize() error {
	return errors.Wrap(portaudio.Initialize(), "failed to initialize PortAudio")
}

// Terminate shuts down the PortAudio subsystem.
func Terminate() error {
	return errors.Wrap(portaudio.Terminate(), "failed to terminate PortAudio")
}

// Replaced in tests.
var (
	paDevicesFunc       = portaudio.Devices
	paDefaultInputFunc  = portaudio.DefaultInputDevice
	paDefaultOutputFunc = portaudio.DefaultOutputDevice
)

// Devices lists every device PortAudio knows about. PortAudio must be
// initialised.
func Devices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get devices")
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			LowLatency:        max(info.DefaultLowInputLatency, info.DefaultLowOutputLatency),
			HighLatency:       max(info.DefaultHighInputLatency, info.DefaultHighOutputLatency),
		}
		if info.HostApi != nil {
			devices[i].HostAPI = info.HostApi.Name
		}
	}
	return devices, nil
}

// ListDevices writes a summary of every device to w.
func ListDevices(w io.Writer) error {
	devices, err := Devices()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nAvailable Audio Devices\n\n")
	for _, d := range devices {
		fmt.Fprintf(w, "[%d] %s (%s)\n", d.ID, d.Name, d.Type())
		fmt.Fprintf(w, "    Input channels: %d, Output channels: %d\n", d.MaxInputChannels, d.MaxOutputChannels)
		fmt.Fprintf(w, "    Default sample rate: %.0f Hz\n", d.DefaultSampleRate)
		fmt.Fprintf(w, "    Latency: Low=%.2fms, High=%.2fms\n\n",
			d.LowLatency.Seconds()*1000, d.HighLatency.Seconds()*1000)
	}
	return nil
}

// InputDevice returns the capture device for id, or the default input for
// config.MinDeviceID.
func InputDevice(id int) (*portaudio.DeviceInfo, error) {
	return lookupDevice(id, paDefaultInputFunc, func(d *portaudio.DeviceInfo) bool {
		return d.MaxInputChannels > 0
	})
}

// OutputDevice returns the playback device for id, or the default output
// for config.MinDeviceID.
func OutputDevice(id int) (*portaudio.DeviceInfo, error) {
	return lookupDevice(id, paDefaultOutputFunc, func(d *portaudio.DeviceInfo) bool {
		return d.MaxOutputChannels > 0
	})
}

func lookupDevice(id int, fallback func() (*portaudio.DeviceInfo, error), usable func(*portaudio.DeviceInfo) bool) (*portaudio.DeviceInfo, error) {
	if id == config.MinDeviceID {
		device, err := fallback()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get default device")
		}
		return device, nil
	}

	devices, err := paDevicesFunc()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get devices")
	}
	if id < 0 || id >= len(devices) {
		return nil, errors.Wrapf(ErrBadDevice, "invalid device ID %d", id)
	}
	if !usable(devices[id]) {
		return nil, errors.Wrapf(ErrBadDevice, "device %d (%s) has no channels in that direction", id, devices[id].Name)
	}
	return devices[id], nil
}
