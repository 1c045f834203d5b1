package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/schollz/phrasekit/internal/config"
	"github.com/schollz/phrasekit/internal/monitor"
)

func monitorCmd() *cobra.Command {
	var tickMillis int
	var samplesPerTick uint64

	cmd := &cobra.Command{
		Use:   "monitor <session.json>",
		Short: "watch a session config play in a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			base, ph, err := config.Build(cfg)
			if err != nil {
				return err
			}

			loopSamples := uint64(base.SamplesPerBar())
			m := monitor.New(ph, samplesPerTick, time.Duration(tickMillis)*time.Millisecond, loopSamples)
			p := tea.NewProgram(m, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("monitor: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&tickMillis, "tick-ms", 16, "UI tick interval in milliseconds")
	cmd.Flags().Uint64Var(&samplesPerTick, "samples-per-tick", 735, "samples advanced per UI tick (735 = 1 frame @ 44100/60fps)")
	return cmd
}
