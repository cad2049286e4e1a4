package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shireesh.com/firenext/internal/config"
	"shireesh.com/firenext/internal/validator"
)

func newValidateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "Check a config file without generating anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				file = args[0]
			}
			if file == "" {
				return errors.New("a config file is required (validate <file> or --config <file>)")
			}
			path, err := expandPath(file)
			if err != nil {
				return err
			}
			opts, err := config.Load(path, config.Default())
			if err != nil {
				return err
			}
			opts.Normalize()

			out := cmd.OutOrStdout()
			res := validator.Options(opts)
			report(out, res)
			if !res.Valid {
				return fmt.Errorf("%w: %d error(s) in %s", ErrInvalidConfig, len(res.Errors), path)
			}
			success(out, "%s is valid", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "config", "c", "", "config file (.yaml, .json or .toml)")
	return cmd
}
