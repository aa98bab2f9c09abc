package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/superloop/internal/board"
	"github.com/comalice/superloop/internal/production"
)

var (
	graphOpts = struct {
		ticks  uint64
		format string
	}{}

	graphCmd = &cobra.Command{
		Use:   "graph",
		Short: "Print the state graph of every configured task",
		Long: `Step the configured tasks on the simulated clock and print their state
tables as Graphviz DOT or JSON. Edges are the transitions taken during the run,
labelled with how often they were taken; active states are highlighted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := board.Build(cfg, board.Options{Logger: log})
			if err != nil {
				return err
			}
			if err := b.Loop.Initialize(); err != nil {
				return err
			}
			if err := b.Loop.Run(int(graphOpts.ticks)); err != nil {
				return err
			}

			v := &production.DefaultVisualizer{}
			switch graphOpts.format {
			case "dot":
				fmt.Fprint(cmd.OutOrStdout(), v.ExportDOT(b.Graphs()...))
			case "json":
				data, err := v.ExportJSON(b.Graphs()...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			default:
				return fmt.Errorf("unknown graph format %q", graphOpts.format)
			}
			return nil
		},
	}
)

func init() {
	graphCmd.Flags().Uint64VarP(&graphOpts.ticks, "ticks", "n", 5000, "ticks to run before rendering")
	graphCmd.Flags().StringVarP(&graphOpts.format, "format", "f", "dot", "output format (dot, json)")
}
