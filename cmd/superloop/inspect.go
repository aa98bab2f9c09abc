package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/comalice/superloop/internal/production"
	"github.com/comalice/superloop/realtime"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot file>",
	Short: "Print a snapshot saved by run --snapshot-dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, file := filepath.Split(args[0])
		if dir == "" {
			dir = "."
		}
		ext := filepath.Ext(file)
		runID := strings.TrimSuffix(file, ext)

		var (
			snap realtime.Snapshot
			err  error
		)
		switch ext {
		case ".json":
			var p *production.JSONPersister
			if p, err = production.NewJSONPersister(dir); err == nil {
				snap, err = p.Load(cmd.Context(), runID)
			}
		case ".yaml":
			var p *production.YAMLPersister
			if p, err = production.NewYAMLPersister(dir); err == nil {
				snap, err = p.Load(cmd.Context(), runID)
			}
		default:
			return fmt.Errorf("%s: expected a .json or .yaml snapshot", args[0])
		}
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(snap)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}
