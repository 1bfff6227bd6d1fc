package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carlschroedl/votelib/pkg/ballotfile"
	"github.com/carlschroedl/votelib/pkg/core/services"
)

// CountCmd creates the count command
func CountCmd(app *AppContext) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "count <ballot_file>",
		Short: "Tabulate an STV count from a ballot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := ballotfile.Load(args[0])
			if err != nil {
				return err
			}

			var store services.CountStore
			if save {
				if app.Database == nil {
					return fmt.Errorf("--save requires databaseURL to be set in the config")
				}
				store = app.Database
			}

			result, err := services.RunCount(app.Ctx, store, app.Logger, profile, app.Cfg)
			if err != nil {
				return err
			}

			// Display results
			fmt.Printf("\n✓ Count complete!\n\n")
			if profile.Election != "" {
				fmt.Printf("Election: %s\n", profile.Election)
			}
			fmt.Printf("Method:   %s\n", app.Cfg.Method)
			fmt.Printf("Seats:    %d\n", app.Cfg.Seats)
			fmt.Printf("Quota:    %s\n\n", result.Result.Quota.RatString())

			fmt.Printf("Rounds:\n")
			for _, round := range result.Rounds {
				switch {
				case len(round.Elected) > 0:
					fmt.Printf("  %2d. elected %s\n", round.Number, strings.Join(round.Elected, ", "))
				case len(round.Eliminated) > 0:
					fmt.Printf("  %2d. eliminated %s\n", round.Number, strings.Join(round.Eliminated, ", "))
				}
				for _, total := range round.Totals {
					fmt.Printf("      %-20s %s\n", total.Candidate, total.Votes)
				}
			}

			fmt.Printf("\nElected (in order):\n")
			for i, cand := range result.Election.Elected {
				fmt.Printf("  %2d. %s\n", i+1, cand)
			}
			if result.Saved {
				fmt.Printf("\nResult stored with id %s\n", result.Election.ID)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Store the result in the configured database")
	return cmd
}
