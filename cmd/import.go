package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jjenkins/pincode/internal/service"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Look up a list of pincodes and store the results",
	Long: `Import reads pincodes from a file (one per line, # starts a comment),
looks each one up with a pause between requests, and records the outcome
in the lookup history.

Examples:
  # Import the pincodes in codes.txt
  pincode import --file codes.txt

  # Read from stdin with a 2 second pause
  cat codes.txt | pincode import --file - --delay 2s`,
	Run: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "File with one pincode per line (- for stdin)")
	importCmd.Flags().Duration("delay", 0, "Pause between two lookups (default from config)")
	_ = importCmd.MarkFlagRequired("file")
	_ = viper.BindPFlag("import.delay", importCmd.Flags().Lookup("delay"))
}

func runImport(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := newLogger(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	in := os.Stdin
	if importFile != "-" {
		f, err := os.Open(importFile)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", importFile, err)
		}
		defer f.Close()
		in = f
	}

	codes, err := service.ReadCodes(in)
	if err != nil {
		log.Fatalf("%v", err)
	}

	db, history, err := openHistory(cfg)
	if err != nil {
		log.Fatalf("Failed to open history: %v", err)
	}
	var recorder service.Recorder
	if history != nil {
		defer db.Close()
		recorder = history
	} else {
		log.Println("No database configured, results will not be stored")
	}

	importer := service.NewImporter(newClient(cfg), recorder, cfg.Import.Delay, logger)

	log.Printf("Starting import of %d pincodes", len(codes))
	stats, err := importer.Import(ctx, codes)
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Import cancelled")
			importer.PrintSummary(cmd.OutOrStdout(), stats)
			os.Exit(1)
		}
		log.Fatalf("Import failed: %v", err)
	}
	importer.PrintSummary(cmd.OutOrStdout(), stats)

	if history != nil {
		total, err := history.CountLookups(context.Background())
		if err != nil {
			log.Printf("Warning: %v", err)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Lookups in history: %d\n", total)
		}
	}

	if stats.Failed > 0 {
		os.Exit(1)
	}
}
