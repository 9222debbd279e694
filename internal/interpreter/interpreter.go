package interpreter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Contract constants. Callers must treat results below ConfidenceFloor as
// unreliable, and scores below NegativeSentimentFloor as negative turns.
// These are not tunable per call.
const (
	ConfidenceFloor        = 0.6
	NegativeSentimentFloor = -0.3
)

// ErrUnavailable is returned when the scoring collaborator failed or timed
// out; callers recover with the fallback extractor.
var ErrUnavailable = errors.New("interpretation unavailable")

// Scorer is the remote model boundary, narrowed for testability
type Scorer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Interpreter wraps NLU and sentiment scoring behind a per-utterance contract
type Interpreter struct {
	model   Scorer // nil runs the deterministic extractor only
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates an Interpreter. A nil scorer disables the model path so every
// turn is interpreted by the rule extractor.
func New(model Scorer, timeout time.Duration, logger zerolog.Logger) *Interpreter {
	if timeout <= 0 || timeout > 3*time.Second {
		timeout = 3 * time.Second
	}
	return &Interpreter{
		model:   model,
		timeout: timeout,
		logger:  logger.With().Str("component", "interpreter").Logger(),
	}
}

// Interpret scores one user utterance. The current state biases entity
// extraction. Model failures and timeouts return ErrUnavailable; the caller
// falls back to ExtractFallback.
func (i *Interpreter) Interpret(ctx context.Context, utterance string, lang types.Language, state types.ConvState) (types.InterpretResult, error) {
	if i.model == nil {
		return i.ExtractFallback(utterance, lang, state), nil
	}

	scoreCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	raw, err := i.model.Generate(scoreCtx, buildPrompt(utterance, lang, state))
	if err != nil {
		i.logger.Warn().Err(err).Str("state", string(state)).Msg("scoring call failed")
		return types.InterpretResult{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	res, err := parseModelResponse(raw)
	if err != nil {
		i.logger.Warn().Err(err).Msg("unparseable scoring response")
		return types.InterpretResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Invalid extractions are dropped, not stored
	res.Entities = validateEntities(res.Entities, lang)

	// Blend the model sentiment with the keyword lexicon
	res.Sentiment = combineSentiment(res.Sentiment, LexiconScore(utterance, lang))

	if detected, ok := Detect(utterance); ok && detected != lang {
		res.Language = detected
	}
	if target, ok := ParseSwitchRequest(utterance); ok {
		res.Intent = types.IntentLanguageSwitch
		res.Language = target
	}

	return res, nil
}

// modelResult is the strict JSON contract the scoring model must return
type modelResult struct {
	Intent     string            `json:"intent"`
	Entities   map[string]string `json:"entities"`
	Confidence float64           `json:"confidence"`
	Sentiment  float64           `json:"sentiment"`
}

func parseModelResponse(raw string) (types.InterpretResult, error) {
	// Models occasionally wrap JSON in a code fence
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var mr modelResult
	if err := sonic.UnmarshalString(raw, &mr); err != nil {
		return types.InterpretResult{}, fmt.Errorf("decoding scoring response: %w", err)
	}

	intent := types.Intent(mr.Intent)
	if !types.KnownIntents[intent] {
		intent = types.IntentUnknown
	}

	return types.InterpretResult{
		Intent:     intent,
		Entities:   mr.Entities,
		Confidence: clamp(mr.Confidence, 0, 1),
		Sentiment:  clamp(mr.Sentiment, -1, 1),
	}, nil
}

func buildPrompt(utterance string, lang types.Language, state types.ConvState) string {
	var b strings.Builder
	b.WriteString("You score one turn of a loan qualification phone call.\n")
	b.WriteString("Return ONLY a JSON object: {\"intent\": string, \"entities\": object, \"confidence\": number 0..1, \"sentiment\": number -1..1}.\n")
	b.WriteString("Intents: affirmative, negative, provide_info, request_human, clarification_needed, greeting, farewell, language_switch, unknown.\n")
	if et, ok := stateEntity[state]; ok {
		fmt.Fprintf(&b, "The caller is answering the %s question; extract the %q entity when present.\n", state, et)
	}
	fmt.Fprintf(&b, "Conversation language: %s.\nUtterance: %q\n", lang, utterance)
	return b.String()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// combineSentiment weights the model score against the keyword lexicon
func combineSentiment(model, lexicon float64) float64 {
	return clamp(0.7*model+0.3*lexicon, -1, 1)
}
