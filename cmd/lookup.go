package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/jjenkins/pincode/internal/model"
	"github.com/jjenkins/pincode/internal/view"
)

var lookupFilter string
var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <pincode>",
	Short: "Look up the post offices of one pincode",
	Long: `Lookup fetches the post offices of a 6-digit pincode and prints them.

Examples:
  # Print every post office of a pincode
  pincode lookup 560001

  # Only post offices whose name contains "ram"
  pincode lookup 500013 --filter ram

  # Machine readable output
  pincode lookup 500013 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().StringVarP(&lookupFilter, "filter", "f", "", "Only show post offices whose name contains this text")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Print the result as JSON")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	db, history, err := openHistory(cfg)
	if err != nil {
		log.Printf("Warning: history disabled: %v", err)
	}

	opts := []view.Option{view.WithLogger(logger)}
	if history != nil {
		defer db.Close()
		opts = append(opts, view.WithRecorder(history))
	}

	form := view.NewController(newClient(cfg), opts...)
	defer form.Close()

	s, _ := form.Submit(args[0])
	if s.Phase != view.Loading {
		return fmt.Errorf("%s", s.Error)
	}

	done := make(chan struct{})
	go func() {
		form.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		form.Cancel()
		return fmt.Errorf("lookup cancelled")
	case <-done:
	}

	s = form.SetFilter(lookupFilter)
	if lookupJSON {
		if err := printJSON(cmd.OutOrStdout(), s); err != nil {
			return err
		}
	} else {
		printState(cmd.OutOrStdout(), s)
	}

	if s.Result.Outcome == model.OutcomeFailure {
		return fmt.Errorf("lookup of %s failed", s.Code)
	}
	return nil
}

// printState writes a finished lookup the way the form shows it
func printState(w io.Writer, s view.State) {
	fmt.Fprintf(w, "Pincode: %s\n", s.Code)

	if msg := s.Message(); msg != "" {
		fmt.Fprintln(w, msg)
		return
	}

	fmt.Fprintf(w, "Message: Number of pincode(s) found: %d\n", s.Count())
	if s.NoMatches() {
		fmt.Fprintln(w, view.NoMatchesMessage)
		return
	}

	for _, p := range s.Filtered {
		fmt.Fprintln(w, "")
		fmt.Fprintf(w, "Name:            %s\n", p.Name)
		fmt.Fprintf(w, "Branch Type:     %s\n", p.BranchType)
		fmt.Fprintf(w, "Delivery Status: %s\n", p.DeliveryStatus)
		fmt.Fprintf(w, "District:        %s\n", p.District)
		fmt.Fprintf(w, "Division:        %s\n", p.Division)
	}
}

func printJSON(w io.Writer, s view.State) error {
	out := struct {
		Pincode string             `json:"pincode"`
		Outcome model.Outcome      `json:"outcome"`
		Message string             `json:"message,omitempty"`
		Count   int                `json:"count"`
		Records []model.PostOffice `json:"records"`
	}{
		Pincode: s.Code.String(),
		Outcome: s.Result.Outcome,
		Message: s.Message(),
		Count:   s.Count(),
		Records: s.Filtered,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
