package questionbank

import (
	"encoding/json"
	"fmt"
	"slices"
)

// SubQuestion is a marks-bearing part of a Question, labelled with a
// lowercase roman numeral.
type SubQuestion struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	MaxMarks int    `json:"max_marks"`
	Answer   string `json:"answer"`
}

// Question is a top-level "Q<n>" entry of a bank. When Subs is non-empty the
// question's own MaxMarks and Answer are not used for scoring.
type Question struct {
	ID       string        `json:"id"`
	Prompt   string        `json:"prompt"`
	MaxMarks int           `json:"max_marks"`
	Answer   string        `json:"answer"`
	Subs     []SubQuestion `json:"subquestions,omitempty"`
}

// HasSubQuestions reports whether scoring happens per sub-question.
func (q Question) HasSubQuestions() bool {
	return len(q.Subs) > 0
}

// SubQuestion returns the sub-question with the given id.
func (q Question) SubQuestion(id string) (SubQuestion, bool) {
	for _, s := range q.Subs {
		if s.ID == id {
			return s, true
		}
	}
	return SubQuestion{}, false
}

// Bank is an ordered set of questions parsed from one document. Iteration
// order is document order. A Bank is not modified after construction.
type Bank struct {
	order []string
	byID  map[string]Question
}

// NewBank builds a bank from questions in the given order. A repeated id
// replaces the earlier question but keeps its position.
func NewBank(questions ...Question) *Bank {
	b := &Bank{byID: make(map[string]Question, len(questions))}
	for _, q := range questions {
		b.put(q)
	}
	return b
}

func (b *Bank) put(q Question) {
	if _, ok := b.byID[q.ID]; !ok {
		b.order = append(b.order, q.ID)
	}
	b.byID[q.ID] = q.clone()
}

// clone detaches Subs from the caller's backing array.
func (q Question) clone() Question {
	q.Subs = slices.Clone(q.Subs)
	return q
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// IDs returns question ids in document order.
func (b *Bank) IDs() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Question looks up a question by id. A nil bank has no questions.
func (b *Bank) Question(id string) (Question, bool) {
	if b == nil {
		return Question{}, false
	}
	q, ok := b.byID[id]
	return q.clone(), ok
}

// Questions returns all questions in document order.
func (b *Bank) Questions() []Question {
	if b == nil {
		return nil
	}
	out := make([]Question, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.byID[id].clone())
	}
	return out
}

// Equal reports whether two banks hold the same questions in the same order.
func (b *Bank) Equal(other *Bank) bool {
	if b.Len() != other.Len() {
		return false
	}
	for i, id := range b.IDs() {
		if other.order[i] != id {
			return false
		}
		if !questionEqual(b.byID[id], other.byID[id]) {
			return false
		}
	}
	return true
}

func questionEqual(a, b Question) bool {
	if a.ID != b.ID || a.Prompt != b.Prompt || a.MaxMarks != b.MaxMarks || a.Answer != b.Answer {
		return false
	}
	if len(a.Subs) != len(b.Subs) {
		return false
	}
	for i := range a.Subs {
		if a.Subs[i] != b.Subs[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the bank as an array so document order survives.
func (b *Bank) MarshalJSON() ([]byte, error) {
	qs := b.Questions()
	if qs == nil {
		qs = []Question{}
	}
	return json.Marshal(qs)
}

// UnmarshalJSON decodes the array form produced by MarshalJSON.
func (b *Bank) UnmarshalJSON(data []byte) error {
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return fmt.Errorf("decode question bank: %w", err)
	}
	*b = *NewBank(qs...)
	return nil
}
