package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carlschroedl/votelib/pkg/core/services"
)

// ResultsCmd creates the results command
func ResultsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "results [election_id]",
		Short: "List stored counts, or show one count's rounds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Database == nil {
				return fmt.Errorf("results requires databaseURL to be set in the config")
			}

			if len(args) == 0 {
				elections, err := services.ListElections(app.Ctx, app.Database, app.Logger)
				if err != nil {
					return err
				}
				if len(elections) == 0 {
					fmt.Println("No stored counts.")
					return nil
				}
				fmt.Printf("\nStored counts:\n")
				for _, e := range elections {
					fmt.Printf("  %s  %-25s %s/%d seats, elected %s (%s)\n",
						e.ID, e.Name, e.Method, e.Seats, strings.Join(e.Elected, ", "), e.CountedAt)
				}
				fmt.Println()
				return nil
			}

			election, rounds, err := services.ViewElection(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("\n%s (%s, %d seats, quota %s)\n\n", election.Name, election.Method, election.Seats, election.Quota)
			for _, round := range rounds {
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
			fmt.Printf("\nElected (in order): %s\n\n", strings.Join(election.Elected, ", "))
			return nil
		},
	}
}
