package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/progressr/internal/logger"
	"github.com/mark3labs/progressr/internal/progress"
	"github.com/mark3labs/progressr/internal/report"
	"github.com/spf13/cobra"
)

var reportFlags struct {
	plain  bool
	export string
	all    bool
	embed  bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the progress report",
	Long: `Print the progress report for every active task in the terminal.

Use --export to write one markdown file per task instead, or --embed to print
the exact message the notifier would publish.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportFlags.plain, "plain", false, "Print raw markdown without styling")
	reportCmd.Flags().StringVar(&reportFlags.export, "export", "", "Write markdown files into this directory")
	reportCmd.Flags().BoolVar(&reportFlags.all, "all", false, "Include inactive tasks when exporting")
	reportCmd.Flags().BoolVar(&reportFlags.embed, "embed", false, "Print the notifier message as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	doc, err := progress.NewStore(cfg.DataDir).Load()
	if err != nil {
		if !errors.Is(err, progress.ErrCorrupt) {
			return err
		}
		logger.Warn("Reporting an empty document: %v", err)
	}

	switch {
	case reportFlags.export != "":
		paths, err := report.Export(reportFlags.export, doc, !reportFlags.all)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	case reportFlags.embed:
		return printJSON(report.Build(doc))
	}

	term := report.NewTerminal(os.Stdout)
	term.Plain = reportFlags.plain
	return term.Print(doc)
}
