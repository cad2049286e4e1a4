package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	xlog "shireesh.com/firenext/internal/log"
)

// Version is set at build time with -ldflags "-X shireesh.com/firenext/cmd.Version=...".
var Version = "dev"

type rootFlags struct {
	logLevel  string
	logFormat string
}

// NewRootCmd builds the firenext command tree.
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:   "firenext",
		Short: "Scaffold Next.js + Firebase projects from templates",
		Long: `firenext generates a full-stack project: a Next.js frontend, a Firebase
backend with Cloud Functions, Firestore rules and migrations, and the
scripts and CI configuration around them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch flags.logFormat {
			case "", "console", "json":
			default:
				return fmt.Errorf("unknown log format %q (use console or json)", flags.logFormat)
			}
			xlog.Configure(xlog.Config{Level: flags.logLevel, Format: flags.logFormat, Output: cmd.ErrOrStderr()})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to $LOG_LEVEL or warn")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format (console or json)")

	root.AddCommand(
		newCreateCmd(),
		newValidateCmd(),
		newTemplatesCmd(),
		newVersionCmd(),
	)
	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		stop()
		os.Exit(1)
	}
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
