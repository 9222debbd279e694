// Package prompts holds the per-state, per-language things the bot says.
// The catalog is an injected read-only object: the state machine receives it
// at construction and never mutates it, so prompt wording can change per
// deployment without touching flow logic.
package prompts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Required lists every key the conversation flow renders. Validate enforces
// full coverage across the supported languages.
var Required = []string{
	"greeting",
	"intent_confirmation",
	"language_detection",
	"degree_question",
	"country_question",
	"loan_amount_question",
	"offer_letter_question",
	"coapplicant_itr_question",
	"collateral_question",
	"visa_timeline_question",
	"qualification_summary",
	"qualification_summary_escalate",
	"handoff_offer",
	"handoff_offer_escalation",
	"handoff_accepted",
	"handoff_failed",
	"callback_scheduling",
	"callback_confirmed",
	"goodbye",
	"clarification_prefix",
	"empathy_prefix",
	"silence_prefix",
	"language_switch_ack",
}

// Catalog maps prompt keys to per-language templates. Templates may carry
// {placeholder} tokens filled from the data map at render time.
type Catalog struct {
	templates map[string]map[types.Language]string
}

// Default returns the built-in catalog
func Default() *Catalog {
	return &Catalog{templates: defaultTemplates()}
}

// Load overlays a yaml file onto the default catalog. Keys and languages
// present in the file replace the defaults; everything else is kept. An
// empty path returns the defaults unchanged.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt config: %w", err)
	}
	var overlay map[string]map[string]string
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse prompt config: %w", err)
	}
	for key, byLang := range overlay {
		if c.templates[key] == nil {
			c.templates[key] = make(map[types.Language]string)
		}
		for langName, tpl := range byLang {
			lang, ok := types.ParseLanguage(langName)
			if !ok {
				return nil, fmt.Errorf("prompt config: unknown language %q under %q", langName, key)
			}
			c.templates[key][lang] = tpl
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that every required key covers every supported language
func (c *Catalog) Validate() error {
	for _, key := range Required {
		byLang, ok := c.templates[key]
		if !ok {
			return fmt.Errorf("prompt catalog: missing key %q", key)
		}
		for _, lang := range types.SupportedLanguages {
			if _, ok := byLang[lang]; !ok {
				return fmt.Errorf("prompt catalog: key %q missing language %s", key, lang)
			}
		}
	}
	return nil
}

// Render produces the prompt for a key in the given language, expanding
// {placeholder} tokens from data. A language gap falls back to english, then
// to the platform default.
func (c *Catalog) Render(key string, lang types.Language, data map[string]string) (string, error) {
	byLang, ok := c.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt catalog: unknown key %q", key)
	}
	tpl, ok := byLang[lang]
	if !ok {
		if tpl, ok = byLang[types.LangEnglish]; !ok {
			if tpl, ok = byLang[types.DefaultLanguage]; !ok {
				return "", fmt.Errorf("prompt catalog: key %q has no usable language", key)
			}
		}
	}
	return expand(tpl, data), nil
}

func expand(tpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tpl, "{") {
		return tpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// CategoryLabel is the spoken name of a loan category
func CategoryLabel(category types.Category, lang types.Language) string {
	if byLang, ok := categoryLabels[category]; ok {
		if label, ok := byLang[lang]; ok {
			return label
		}
		return byLang[types.LangEnglish]
	}
	return string(category)
}
