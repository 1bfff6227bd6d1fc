// Package ballotfile reads ranked ballot profiles from YAML files.
//
// A profile lists distinct ballot forms with the number of voters who cast
// each. Ranks are listed highest preference first; a rank is either a single
// candidate name or a list of names ranked equally:
//
//	election: City Council 2026
//	ballots:
//	  - ranks: [Alice, [Bob, Carol], Dave]
//	    count: 12
//	  - ranks: [Bob]
//	    count: 7
package ballotfile

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/carlschroedl/votelib/pkg/core/count"
	"github.com/carlschroedl/votelib/pkg/core/transfer"
)

var validate = validator.New()

// Rank is one preference position: one candidate, or several ranked equally.
type Rank []string

// UnmarshalYAML accepts either a bare scalar or a sequence of scalars.
func (r *Rank) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		*r = Rank{name}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*r = Rank(names)
		return nil
	default:
		return fmt.Errorf("line %d: rank must be a candidate or a list of candidates", node.Line)
	}
}

// Ballot is one distinct ballot form and how many voters cast it.
type Ballot struct {
	Ranks []Rank `yaml:"ranks" validate:"required,min=1"`
	Count int64  `yaml:"count" validate:"required,min=1"`
}

// Profile is a parsed ballot file.
type Profile struct {
	Election string   `yaml:"election,omitempty"`
	Ballots  []Ballot `yaml:"ballots" validate:"required,min=1,dive"`
}

// Load reads and validates a ballot profile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ballot file: %w", err)
	}
	profile, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profile, nil
}

// Parse parses and validates a YAML ballot profile.
func Parse(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse ballot file: %w", err)
	}
	if err := validate.Struct(&profile); err != nil {
		return nil, fmt.Errorf("ballot file validation failed: %w", err)
	}
	for i, ballot := range profile.Ballots {
		seen := make(map[string]bool)
		for j, rank := range ballot.Ranks {
			if len(rank) == 0 {
				return nil, fmt.Errorf("ballots[%d].ranks[%d] is empty", i, j)
			}
			for _, name := range rank {
				if name == "" {
					return nil, fmt.Errorf("ballots[%d].ranks[%d] has an empty candidate name", i, j)
				}
				if seen[name] {
					return nil, fmt.Errorf("ballots[%d] ranks candidate %q twice", i, name)
				}
				seen[name] = true
			}
		}
	}
	return &profile, nil
}

// BallotCounts converts the profile into counting input.
func (p *Profile) BallotCounts() []count.BallotCount {
	out := make([]count.BallotCount, len(p.Ballots))
	for i, ballot := range p.Ballots {
		ranks := make([]transfer.Rank, len(ballot.Ranks))
		for j, rank := range ballot.Ranks {
			converted := make(transfer.Rank, len(rank))
			for k, name := range rank {
				converted[k] = transfer.Candidate(name)
			}
			ranks[j] = converted
		}
		out[i] = count.BallotCount{
			Ballot: transfer.NewBallot(ranks...),
			Count:  ballot.Count,
		}
	}
	return out
}
