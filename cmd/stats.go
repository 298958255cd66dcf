package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jjenkins/pincode/internal/service"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the lookup history",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if history == nil {
		return fmt.Errorf("no database configured: set database.url or DATABASE_URL")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := service.NewMetricsService(db).Calculate(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "=== Lookup Statistics ===")
	fmt.Fprintf(w, "Total lookups:     %d\n", stats.Total)
	fmt.Fprintf(w, "Found:             %d\n", stats.Successes)
	fmt.Fprintf(w, "No data:           %d\n", stats.Empties)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	fmt.Fprintf(w, "Success rate:      %.1f%%\n", stats.SuccessRate())
	fmt.Fprintf(w, "Distinct pincodes: %d\n", stats.DistinctPincodes)
	fmt.Fprintf(w, "Avg post offices:  %.2f\n", stats.AverageRecords)
	if stats.TopPincode != "" {
		fmt.Fprintf(w, "Most searched:     %s (%d lookups)\n", stats.TopPincode, stats.TopPincodeCount)
	}
	return nil
}
