package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carlschroedl/votelib/pkg/ballotfile"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <ballot_file>",
		Short: "Check that a ballot file parses and is well-formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := ballotfile.Load(args[0])
			if err != nil {
				return err
			}

			var voters int64
			for _, ballot := range profile.Ballots {
				voters += ballot.Count
			}
			fmt.Printf("\n✓ Ballot file is valid\n\n")
			fmt.Printf("Ballot forms: %d\n", len(profile.Ballots))
			fmt.Printf("Total votes:  %d\n\n", voters)
			return nil
		},
	}
}
