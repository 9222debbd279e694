package flow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dennisdiepolder/eduvoice/internal/interpreter"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Config carries the flow tunables that are deployment choices rather than
// contract constants: the question order. Thresholds and timeouts are
// compile-time constants on purpose.
type Config struct {
	Questions []types.ConvState `yaml:"questions"`
}

// DefaultConfig is the standard qualification sequence
func DefaultConfig() Config {
	return Config{
		Questions: []types.ConvState{
			types.StateLanguageDetection,
			types.StateDegreeQuestion,
			types.StateCountryQuestion,
			types.StateLoanAmountQuestion,
			types.StateOfferLetterQuestion,
			types.StateCoapplicantQuestion,
			types.StateCollateralQuestion,
			types.StateVisaTimelineQuestion,
		},
	}
}

// LoadConfig overlays a yaml file onto the default sequence. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read flow config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse flow config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects empty, duplicated or non-question states in the sequence
func (c Config) Validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("flow config: question sequence is empty")
	}
	seen := make(map[types.ConvState]bool, len(c.Questions))
	for _, q := range c.Questions {
		if _, ok := interpreter.ExpectedEntity(q); !ok {
			return fmt.Errorf("flow config: %s is not a question state", q)
		}
		if seen[q] {
			return fmt.Errorf("flow config: duplicate question state %s", q)
		}
		seen[q] = true
	}
	return nil
}
