package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pavelanni/autograder/internal/llm/prompts"
)

// Completer is a generative text capability: one prompt in, free text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMScorer grades subjective answers by asking a Completer for a reply
// whose first line is the score and whose remaining lines are feedback.
type LLMScorer struct {
	completer Completer
	variant   prompts.PromptVariant
	timeout   time.Duration
}

// NewLLMScorer creates a subjective scorer. A zero timeout means no
// per-call deadline beyond the caller's context.
func NewLLMScorer(c Completer, variant prompts.PromptVariant, timeout time.Duration) *LLMScorer {
	if variant == "" {
		variant = prompts.PromptStrict
	}
	return &LLMScorer{completer: c, variant: variant, timeout: timeout}
}

var _ SubjectiveScorer = (*LLMScorer)(nil)

// ScoreSubjective implements SubjectiveScorer.
func (s *LLMScorer) ScoreSubjective(ctx context.Context, teacherAnswer, studentAnswer string, maxMarks float64) Result {
	prompt, err := prompts.BuildGradePrompt(s.variant, teacherAnswer, studentAnswer, maxMarks)
	if err != nil {
		return failure(err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("subjective scoring failed", "error", err)
		return failure(err)
	}
	return ParseReply(raw, maxMarks)
}

// ParseReply reads a "score on the first line, feedback after" reply. A
// reply that does not parse, or whose score lies outside [0, maxMarks],
// scores zero with the raw reply in the feedback.
func ParseReply(raw string, maxMarks float64) Result {
	raw = strings.TrimSpace(raw)
	first, rest, _ := strings.Cut(raw, "\n")

	score, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
	if err != nil {
		return failure(fmt.Errorf("could not read score from %q", strings.TrimSpace(first)))
	}
	if math.IsNaN(score) || score < 0 || score > maxMarks {
		return Result{
			Score:    0,
			Feedback: "Invalid score parsed. Raw response:\n" + raw,
		}
	}
	return Result{Score: score, Feedback: strings.TrimSpace(rest)}
}

func failure(err error) Result {
	return Result{Score: 0, Feedback: "Error grading answer: " + err.Error()}
}
