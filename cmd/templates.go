package cmd

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"shireesh.com/firenext/internal/archive"
	"shireesh.com/firenext/internal/engine"
)

func newTemplatesCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect or export the project templates",
	}
	cmd.PersistentFlags().StringVar(&source, "templates", "", "template directory or zip archive (default the built-in templates)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the template files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _, closeSrc, err := templateSource(source)
			if err != nil {
				return err
			}
			defer closeSrc()

			out := cmd.OutOrStdout()
			var files int
			var size int64
			err = fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return err
				}
				content, err := fs.ReadFile(src, p)
				if err != nil {
					return err
				}
				files++
				size += int64(len(content))
				if engine.IsBinary(p, content) {
					fmt.Fprintf(out, "%s %s\n", p, dimStyle.Render("(binary)"))
					return nil
				}
				fmt.Fprintln(out, p)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d files, %s\n", files, humanize.Bytes(uint64(size)))
			return nil
		},
	}

	export := &cobra.Command{
		Use:   "export <dest>",
		Short: "Write the templates to a directory or a .zip file for customization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _, closeSrc, err := templateSource(source)
			if err != nil {
				return err
			}
			defer closeSrc()

			dest, err := expandPath(args[0])
			if err != nil {
				return err
			}
			var n int
			if strings.HasSuffix(strings.ToLower(dest), ".zip") {
				n, err = archive.WriteFile(src, dest)
			} else {
				n, err = archive.Extract(src, osfs.New(dest))
			}
			if err != nil {
				return fmt.Errorf("exporting templates: %w", err)
			}
			success(cmd.OutOrStdout(), "exported %d files to %s", n, dest)
			return nil
		},
	}

	cmd.AddCommand(list, export)
	return cmd
}
