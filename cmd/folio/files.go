package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Compare stored files with the catalog",
	Long: `Scan local media storage and report:
  - orphans: image files on disk that no catalog record references
  - missing: locally stored records whose file is gone

Records held in the remote bucket are not checked.`,
	RunE: runFiles,
}

var filesJSON bool

func init() {
	filesCmd.Flags().BoolVar(&filesJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.service.Reconcile(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if filesJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if len(report.Orphans) == 0 && len(report.Missing) == 0 {
		fmt.Fprintln(out, "Storage and catalog are in sync.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tFILE")
	for _, name := range report.Orphans {
		fmt.Fprintf(w, "orphan\t%s\n", name)
	}
	for _, name := range report.Missing {
		fmt.Fprintf(w, "missing\t%s\n", name)
	}
	return w.Flush()
}
