package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schollz/phrasekit/internal/config"
	"github.com/schollz/phrasekit/internal/oscdriver"
)

func playCmd() *cobra.Command {
	var oscHost string
	var oscPort int
	var runSamples uint64
	var verbose bool

	cmd := &cobra.Command{
		Use:   "play <session.json>",
		Short: "load a session config and drive it over OSC",
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

			d := oscdriver.New(oscHost, oscPort)
			d.SamplesPerSec = base.SamplesPerSec
			d.Verbose = verbose

			ph.RunUntilTime(runSamples, d.Visitor())
			fmt.Fprintf(cmd.OutOrStdout(), "played %d rhythms up to sample %d\n", len(cfg.Rhythms), runSamples)
			return nil
		},
	}
	cmd.Flags().StringVar(&oscHost, "osc-host", "localhost", "OSC destination host")
	cmd.Flags().IntVar(&oscPort, "osc-port", 57120, "OSC destination port")
	cmd.Flags().Uint64Var(&runSamples, "samples", 44100*4, "run until this sample time is reached")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log every sent OSC message")
	return cmd
}
