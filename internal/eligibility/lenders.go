package eligibility

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// LenderSet maps each category to its recommended lenders plus the subset
// that processes high-urgency applications faster.
type LenderSet struct {
	Categories map[types.Category][]string `yaml:"categories"`
	FastTrack  map[types.Category][]string `yaml:"fast_track"`
}

// DefaultLenders is the built-in recommendation table
func DefaultLenders() LenderSet {
	return LenderSet{
		Categories: map[types.Category][]string{
			types.CategoryPublicSecured:    {"State Bank of India", "Bank of Baroda", "Punjab National Bank", "Canara Bank"},
			types.CategoryPrivateUnsecured: {"Auxilo", "Avanse", "Credila", "InCred"},
			types.CategoryIntlUSD:          {"Prodigy Finance", "MPower Financing", "Leap Finance"},
		},
		FastTrack: map[types.Category][]string{
			types.CategoryPublicSecured:    {"Bank of Baroda", "Canara Bank"},
			types.CategoryPrivateUnsecured: {"Auxilo", "InCred"},
			types.CategoryIntlUSD:          {"Leap Finance"},
		},
	}
}

// LoadLenderSet overlays a yaml file onto the defaults. Categories present in
// the file replace the default list; absent categories keep theirs. An empty
// path returns the defaults unchanged.
func LoadLenderSet(path string) (LenderSet, error) {
	set := DefaultLenders()
	if path == "" {
		return set, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return LenderSet{}, fmt.Errorf("read lender config: %w", err)
	}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return LenderSet{}, fmt.Errorf("parse lender config: %w", err)
	}
	if err := set.Validate(); err != nil {
		return LenderSet{}, err
	}
	return set, nil
}

// Validate checks that every fast-track lender belongs to its category list
func (s LenderSet) Validate() error {
	for category, fast := range s.FastTrack {
		base := s.Categories[category]
		for _, lender := range fast {
			if !containsLender(base, lender) {
				return fmt.Errorf("lender config: fast-track %q not in %s list", lender, category)
			}
		}
	}
	return nil
}

// Recommend returns the lender list for a category. High urgency moves the
// fast-track subset to the front, preserving relative order elsewhere.
func (s LenderSet) Recommend(category types.Category, urgency types.Urgency) []string {
	base := s.Categories[category]
	if len(base) == 0 {
		return nil
	}
	fast := s.FastTrack[category]
	if urgency != types.UrgencyHigh || len(fast) == 0 {
		return append([]string(nil), base...)
	}
	out := make([]string, 0, len(base))
	out = append(out, fast...)
	for _, lender := range base {
		if !containsLender(fast, lender) {
			out = append(out, lender)
		}
	}
	return out
}

func containsLender(list []string, lender string) bool {
	for _, l := range list {
		if l == lender {
			return true
		}
	}
	return false
}
