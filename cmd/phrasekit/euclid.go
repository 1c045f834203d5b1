package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schollz/phrasekit/internal/pattern"
)

func euclidCmd() *cobra.Command {
	var pulses, steps uint32
	var offset int

	cmd := &cobra.Command{
		Use:   "euclid",
		Short: "print a Bjorklund (Euclidean) rhythm as a hit string",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps == 0 {
				return fmt.Errorf("--steps must be > 0")
			}
			hits := pattern.Euclidean(pulses, steps, offset)
			line := make([]byte, 0, len(hits)*2)
			for i, h := range hits {
				if i > 0 {
					line = append(line, ' ')
				}
				if h {
					line = append(line, 'x')
				} else {
					line = append(line, '~')
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(line))
			return nil
		},
	}
	cmd.Flags().Uint32Var(&pulses, "pulses", 3, "number of pulses (hits)")
	cmd.Flags().Uint32Var(&steps, "steps", 8, "number of steps")
	cmd.Flags().IntVar(&offset, "offset", 0, "rotation offset, positive = right")
	return cmd
}
