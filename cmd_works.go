package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Paint3D/internal/export"
)

// worksCmd manages saved works without opening a window
var worksCmd = &cobra.Command{
	Use:   "works",
	Short: "Manage saved works",
	Long: `Inspect the gallery of saved works from the command line.

Available subcommands:
  list   - List saved works, oldest first
  show   - Describe one work stroke by stroke
  rm     - Delete a work
  export - Render a work to a PDF file`,
}

var worksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved works",
	Args:  cobra.NoArgs,
	RunE:  runWorksList,
}

var worksShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Describe a saved work",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorksShow,
}

var worksRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a saved work",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorksRm,
}

var worksExportCmd = &cobra.Command{
	Use:   "export <id> <out.pdf>",
	Short: "Export a saved work as a top-down PDF",
	Args:  cobra.ExactArgs(2),
	RunE:  runWorksExport,
}

func init() {
	worksCmd.AddCommand(worksListCmd)
	worksCmd.AddCommand(worksShowCmd)
	worksCmd.AddCommand(worksRmCmd)
	worksCmd.AddCommand(worksExportCmd)
}

func runWorksList(cmd *cobra.Command, args []string) error {
	g, kv, err := openGallery()
	if err != nil {
		return err
	}
	defer kv.Close()

	works := g.List()
	if len(works) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved works yet.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSAVED\tSTROKES")
	for _, w := range works {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", w.ID, w.Name, w.CreatedAt.Local().Format("2006-01-02 15:04"), len(w.Strokes))
	}
	return tw.Flush()
}

func runWorksShow(cmd *cobra.Command, args []string) error {
	g, kv, err := openGallery()
	if err != nil {
		return err
	}
	defer kv.Close()

	w, err := g.Get(args[0])
	if err != nil {
		return err
	}
	return export.Summary(cmd.OutOrStdout(), w)
}

func runWorksRm(cmd *cobra.Command, args []string) error {
	g, kv, err := openGallery()
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := g.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func runWorksExport(cmd *cobra.Command, args []string) error {
	g, kv, err := openGallery()
	if err != nil {
		return err
	}
	defer kv.Close()

	w, err := g.Get(args[0])
	if err != nil {
		return err
	}
	if err := export.PDFFile(args[1], w.Name, w.Strokes); err != nil {
		return fmt.Errorf("failed to export %s: %w", w.Name, err)
	}
	logger.Info("Exported work", zap.String("id", w.ID), zap.String("path", args[1]))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to %s\n", w.Name, args[1])
	return nil
}
