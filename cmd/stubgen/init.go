package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sghaida/stubgen/config"
)

func (a *app) initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.FileName
			}
			if fileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			var buf bytes.Buffer
			if err := config.WriteDefault(&buf); err != nil {
				return err
			}
			if err := writeFileAtomic(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(a.stdout, "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
