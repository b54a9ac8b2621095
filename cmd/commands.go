// SPDX-License-Identifier: MIT
package cmd

import (
	"blockhost/internal/config"
	"blockhost/internal/host"
	"blockhost/internal/layout"
	"blockhost/internal/module"
	"blockhost/internal/tui"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newListCommand(opts *options) *cobra.Command {
	var interactive bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd, opts); err != nil {
				return err
			}
			if err := host.Initialize(); err != nil {
				return err
			}
			defer host.Terminate()

			if !interactive {
				return host.ListDevices(cmd.OutOrStdout())
			}

			sel, err := tui.StartDeviceListUI(host.Devices)
			if err != nil || sel == nil {
				return err
			}
			return writeSelection(cmd.OutOrStdout(), sel)
		},
	}
	listCmd.Flags().BoolVarP(&interactive, "interactive", "I", false,
		"Browse devices and print the audio section for the chosen one")
	return listCmd
}

// writeSelection prints the config.yaml audio section for a device picked in
// the browser.
func writeSelection(w io.Writer, sel *tui.Selection) error {
	audio := config.Default().Audio
	audio.SampleRate = sel.SampleRate
	if sel.Device.MaxInputChannels > 0 {
		audio.InputDevice = sel.Device.ID
	}
	if sel.Device.MaxOutputChannels > 0 {
		audio.OutputDevice = sel.Device.ID
	}

	out, err := yaml.Marshal(map[string]config.AudioConfig{"audio": audio})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# %s\n%s", sel.Device.Name, out)
	return nil
}

func newParamsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Show the engine's parameters and panel layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			m, release, err := newModule(cfg)
			if err != nil {
				return err
			}
			defer release()

			writeParams(cmd.OutOrStdout(), cfg.Engine.Name, m.Descriptor())
			return nil
		},
	}
}

func writeParams(w io.Writer, name string, d module.Descriptor) {
	panel := layout.Plan(d.Inputs, d.Outputs, d.ParamLabels())

	fmt.Fprintf(w, "%s: %d in, %d out, %d params, %dHP\n\n", name, d.Inputs, d.Outputs, len(d.Params), panel.WidthHP)
	for i, p := range d.Params {
		k := panel.Params[i]
		fmt.Fprintf(w, "  [%d] %s %-24s [%g, %g] default %g %s (column %d, row %d)\n",
			i, runewidth.FillRight(p.Label, module.DisplayWidth), p.Name, p.Min, p.Max, p.Default, p.Unit, k.Column, k.Row)
	}
	if len(d.Params) > 0 {
		fmt.Fprintln(w)
	}
	for _, j := range panel.Inputs {
		fmt.Fprintf(w, "  %-6s column %d, row %d at (%.1f, %.1f)\n", j.Label, j.Column, j.Row, j.Port.X, j.Port.Y)
	}
	for _, j := range panel.Outputs {
		fmt.Fprintf(w, "  %-6s column %d, row %d at (%.1f, %.1f)\n", j.Label, j.Column, j.Row, j.Port.X, j.Port.Y)
	}
}

func newRenderCommand(opts *options) *cobra.Command {
	var (
		flush bool
		chunk int
	)

	renderCmd := &cobra.Command{
		Use:   "render <in.wav> <out.wav>",
		Short: "Run a WAV file through the module",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			m, release, err := newModule(cfg)
			if err != nil {
				return err
			}
			defer release()

			res, err := host.RenderFile(m, args[0], args[1], host.RenderOptions{
				Flush:       flush,
				ChunkFrames: chunk,
				FollowHost:  cfg.Block.FollowHost,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d frames (%d channels, %d Hz, %d-bit) to %s\n",
				res.Frames, res.Channels, res.SampleRate, res.BitDepth, args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "Blocks: %d of %d samples, resizes: %d\n",
				res.Stats.Blocks, res.Stats.BlockLength, res.Stats.Resizes)
			return nil
		},
	}
	renderCmd.Flags().BoolVar(&flush, "flush", false,
		"Append one block of silence so the final block is heard")
	renderCmd.Flags().IntVar(&chunk, "chunk", host.DefaultChunkFrames,
		"Host buffer size in frames")
	return renderCmd
}

func newPlayCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "play <in.wav>",
		Short: "Play a WAV file through the module to the speakers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			clip, err := host.LoadClip(args[0])
			if err != nil {
				return err
			}
			m, release, err := newModule(cfg)
			if err != nil {
				return err
			}
			defer release()

			stop, cancel := stopOnSignal()
			defer cancel()

			fmt.Fprintf(cmd.OutOrStdout(), "Playing %s (%.1fs) through %s\n", args[0], clip.Duration(), cfg.Engine.Name)
			return host.Play(m, clip, stop)
		},
	}
}

// stopOnSignal returns a channel closed on SIGINT or SIGTERM. cancel stops
// listening and waits for the watcher goroutine to exit.
func stopOnSignal() (<-chan struct{}, func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	stop, cancel := watchStop(sig)
	return stop, func() {
		signal.Stop(sig)
		cancel()
	}
}

func watchStop(sig <-chan os.Signal) (<-chan struct{}, func()) {
	stop := make(chan struct{})
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-sig:
			close(stop)
		case <-done:
		}
	}()
	return stop, func() {
		close(done)
		<-exited
	}
}
