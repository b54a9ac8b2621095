// SPDX-License-Identifier: MIT
package cmd

import (
	"blockhost/internal/config"
	"blockhost/internal/host"
	applog "blockhost/internal/log"
	"blockhost/internal/module"
	"blockhost/internal/transport"
	"blockhost/internal/transport/udp"
	"blockhost/internal/tui"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

// runLive drives the module from a PortAudio duplex stream until the user
// quits the panel or the process is interrupted.
func runLive(cfg *config.Config) error {
	if err := host.Initialize(); err != nil {
		return err
	}
	defer host.Terminate()

	m, release, err := newModule(cfg)
	if err != nil {
		return err
	}
	defer release()

	stream, err := host.NewStream(m, cfg)
	if err != nil {
		return err
	}
	if err := stream.Start(); err != nil {
		return err
	}
	defer func() {
		if err := stream.Close(); err != nil {
			applog.Errorf("Stream: %v", err)
		}
	}()

	publisher, err := newPublisher(m, cfg)
	if err != nil {
		return err
	}
	if publisher != nil {
		publisher.Start()
		defer func() {
			if err := publisher.Close(); err != nil {
				applog.Warnf("Publisher: %v", err)
			}
		}()
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		applog.Infof("Running %s headless, interrupt to stop", cfg.Engine.Name)
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		<-done
		return nil
	}

	panel := tui.NewPanelModel(m, cfg.Engine.Name, cfg.Audio.SampleRate)
	panel.Status = func() string {
		status := fmt.Sprintf("host buffer %d frames", stream.Bridge().LastFrames())
		if rec := stream.Recorder(); rec != nil && rec.IsRecording() {
			status += " · recording"
		}
		if err := m.EngineErr(); err != nil {
			status += " · " + err.Error()
		}
		return status
	}

	// Log lines would tear the alternate screen.
	applog.SetOutput(io.Discard)
	defer applog.SetOutput(os.Stderr)

	return tui.RunPanel(panel)
}

// newPublisher builds the statistics publisher for the enabled transports.
// It returns nil when nothing would receive the snapshots.
func newPublisher(m *module.Module, cfg *config.Config) (*transport.Publisher, error) {
	var transports []transport.Transport
	closeAll := func() {
		for _, t := range transports {
			t.Close()
		}
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return nil, err
		}
		transports = append(transports, sender)
		applog.Infof("Publisher: UDP telemetry to %s", cfg.Transport.UDPTargetAddress)
	}

	if cfg.Transport.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		if err != nil {
			closeAll()
			return nil, err
		}
		transports = append(transports, ws)
		applog.Infof("Publisher: WebSocket telemetry on ws://%s/ws", ws.Addr())
	}

	if applog.GetLevel() == applog.LevelDebug {
		transports = append(transports, transport.NewLoggingTransport())
	}

	if len(transports) == 0 {
		return nil, nil
	}

	publisher, err := transport.NewPublisher(m, cfg.Engine.Name, cfg.Transport.Interval, transports...)
	if err != nil {
		closeAll()
		return nil, err
	}
	return publisher, nil
}
