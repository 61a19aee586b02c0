package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/gameiq/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the question catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <dir | file...>",
	Short: "Import <sport>__<position>_core.json catalog files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var im *catalog.Importer
		return withServices(cmd, func(ctx context.Context) error {
			var res catalog.ImportResult
			if fi, err := os.Stat(args[0]); err == nil && fi.IsDir() && len(args) == 1 {
				res, err = im.ImportDir(ctx, args[0])
				if err != nil {
					return err
				}
			} else {
				res = im.ImportFiles(ctx, args...)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files:    %d\n", res.Files)
			fmt.Fprintf(out, "Inserted: %d\n", res.Inserted)
			fmt.Fprintf(out, "Skipped:  %d\n", res.Skipped)
			if len(res.Failed) > 0 {
				fmt.Fprintf(out, "Failed:   %s\n", strings.Join(res.Failed, ", "))
				return fmt.Errorf("%d file(s) failed to import", len(res.Failed))
			}
			return nil
		}, &im)
	},
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
}
