package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carlschroedl/votelib/pkg/ballotfile"
	"github.com/carlschroedl/votelib/pkg/core/services"
)

// TransferCmd creates the transfer command
func TransferCmd(app *AppContext) *cobra.Command {
	var (
		elect     []string
		eliminate []string
		quota     string
	)

	cmd := &cobra.Command{
		Use:   "transfer <ballot_file>",
		Short: "Apply a single transfer step for inspection",
		Long: `Allocates first preferences from the ballot file, then removes the named
elected candidates (each consuming --quota votes) and eliminated candidates,
printing the totals before and after. Nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := ballotfile.Load(args[0])
			if err != nil {
				return err
			}

			step, err := services.RunTransfer(app.Logger, profile, app.Cfg, elect, eliminate, quota)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Transfer applied\n\n")
			fmt.Printf("Before:\n")
			for _, total := range step.Before {
				fmt.Printf("  %-20s %s\n", total.Candidate, total.Votes)
			}
			fmt.Printf("\nAfter:\n")
			for _, total := range step.After {
				fmt.Printf("  %-20s %s\n", total.Candidate, total.Votes)
			}
			fmt.Printf("\nDiscarded (quotas + exhausted): %s\n\n", step.Discarded)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&elect, "elect", nil, "Candidate to elect, consuming --quota votes (repeatable)")
	cmd.Flags().StringArrayVar(&eliminate, "eliminate", nil, "Candidate to eliminate (repeatable)")
	cmd.Flags().StringVar(&quota, "quota", "", "Quota each elected candidate consumes, as an exact rational (e.g. 15 or 31/2)")
	return cmd
}
