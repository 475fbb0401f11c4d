package questionbank

import (
	"encoding/json"
	"reflect"
	"testing"
)

const endToEndTeacher = "Q1. Define X (3 marks)\nAns: X is Y.\n(i) Sub one? (1 marks)\n(ii) Sub two? (2 marks)\nAns (i): true\nAns (ii): detailed answer"

func TestLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"blank lines dropped", "a\n\n  \nb", []string{"a", "b"}},
		{"crlf", "a\r\nb\rc", []string{"a", "b", "c"}},
		{"trimmed", "  Q1. x  \n\tAns: y\f", []string{"Q1. x", "Ans: y"}},
		{"nfc", "cafe\u0301", []string{"caf\u00e9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseEndToEndExample(t *testing.T) {
	b := Parse(endToEndTeacher)
	if b.Len() != 1 {
		t.Fatalf("expected 1 question, got %d", b.Len())
	}
	q, ok := b.Question("Q1")
	if !ok {
		t.Fatal("Q1 missing")
	}
	if q.Prompt != "Define X" || q.MaxMarks != 3 || q.Answer != "X is Y." {
		t.Errorf("unexpected Q1 fields: %+v", q)
	}
	if !q.HasSubQuestions() {
		t.Fatal("Q1 should have sub-questions")
	}
	want := []SubQuestion{
		{ID: "i", Prompt: "Sub one?", MaxMarks: 1, Answer: "true"},
		{ID: "ii", Prompt: "Sub two?", MaxMarks: 2, Answer: "detailed answer"},
	}
	if !reflect.DeepEqual(q.Subs, want) {
		t.Errorf("subs = %+v, want %+v", q.Subs, want)
	}
}

func TestParseMultiLineAnswer(t *testing.T) {
	text := `Q1. Explain goroutines (5 marks)
Ans: A goroutine is a lightweight thread
managed by the Go runtime.
It is cheap to create.
Q2. Explain channels (4 marks)
Ans: Typed conduits.`

	b := Parse(text)
	q1, _ := b.Question("Q1")
	if q1.Answer != "A goroutine is a lightweight thread managed by the Go runtime. It is cheap to create." {
		t.Errorf("Q1 answer = %q", q1.Answer)
	}
	if q1.HasSubQuestions() {
		t.Error("Q1 should not have sub-questions")
	}
	q2, _ := b.Question("Q2")
	if q2.Answer != "Typed conduits." || q2.MaxMarks != 4 {
		t.Errorf("Q2 = %+v", q2)
	}
}

func TestParseOrderPreserved(t *testing.T) {
	text := "Q1. a (1 marks)\nAns: a\nQ3. c (1 marks)\nAns: c\nQ2. b (1 marks)\nAns: b"
	got := Parse(text).IDs()
	want := []string{"Q1", "Q3", "Q2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestParseIdempotent(t *testing.T) {
	a := Parse(endToEndTeacher)
	b := Parse(endToEndTeacher)
	if !a.Equal(b) {
		t.Error("parsing the same text twice should give equal banks")
	}
}

func TestParseCaseInsensitiveMarkers(t *testing.T) {
	text := "q7. Lower case marker (2 MARKS)\nANS: yes\n"
	b := Parse(text)
	q, ok := b.Question("Q7")
	if !ok {
		t.Fatalf("expected Q7, got ids %v", b.IDs())
	}
	if q.MaxMarks != 2 || q.Answer != "yes" {
		t.Errorf("Q7 = %+v", q)
	}
}

func TestParseSubAnswerBackfill(t *testing.T) {
	text := `Q1. Parts (3 marks)
(i) First (1 marks)
(ii) Second (2 marks)
first answer line
second answer line
stray line`

	q, _ := Parse(text).Question("Q1")
	if q.Subs[0].Answer != "first answer line" {
		t.Errorf("sub i answer = %q", q.Subs[0].Answer)
	}
	if q.Subs[1].Answer != "second answer line" {
		t.Errorf("sub ii answer = %q", q.Subs[1].Answer)
	}
}

func TestParseOpenAnswerWinsOverBackfill(t *testing.T) {
	text := `Q1. Parts (3 marks)
Ans: overall
(i) First (1 marks)
continued text`

	q, _ := Parse(text).Question("Q1")
	if q.Answer != "overall continued text" {
		t.Errorf("answer = %q", q.Answer)
	}
	if q.Subs[0].Answer != "" {
		t.Errorf("sub answer should stay empty, got %q", q.Subs[0].Answer)
	}
}

func TestParseUndeclaredSubAnswerIgnored(t *testing.T) {
	text := "Q1. Parts (2 marks)\n(i) First (2 marks)\nAns (ii): lost\nAns (i): kept"
	q, _ := Parse(text).Question("Q1")
	if len(q.Subs) != 1 {
		t.Fatalf("expected 1 sub, got %d", len(q.Subs))
	}
	if q.Subs[0].Answer != "kept" {
		t.Errorf("sub answer = %q", q.Subs[0].Answer)
	}
}

func TestParseLinesBeforeFirstQuestionDropped(t *testing.T) {
	text := "Answer sheet\n(i) orphan (1 marks)\nAns: orphan\nQ1. Real (2 marks)\nAns: real"
	b := Parse(text)
	if b.Len() != 1 {
		t.Fatalf("expected 1 question, got %d", b.Len())
	}
	q, _ := b.Question("Q1")
	if q.HasSubQuestions() || q.Answer != "real" {
		t.Errorf("Q1 = %+v", q)
	}
}

func TestParseDuplicateIDKeepsPosition(t *testing.T) {
	text := "Q1. first (1 marks)\nQ2. second (1 marks)\nQ1. again (4 marks)\nAns: new"
	b := Parse(text)
	if got := b.IDs(); !reflect.DeepEqual(got, []string{"Q1", "Q2"}) {
		t.Errorf("IDs() = %v", got)
	}
	q, _ := b.Question("Q1")
	if q.Prompt != "again" || q.MaxMarks != 4 || q.Answer != "new" {
		t.Errorf("Q1 = %+v", q)
	}
}

func TestParseRedeclaredSubKeepsPosition(t *testing.T) {
	text := "Q1. p (3 marks)\n(i) a (1 marks)\n(ii) b (1 marks)\n(i) a2 (2 marks)"
	q, _ := Parse(text).Question("Q1")
	if len(q.Subs) != 2 || q.Subs[0].ID != "i" || q.Subs[0].MaxMarks != 2 || q.Subs[1].ID != "ii" {
		t.Errorf("subs = %+v", q.Subs)
	}
}

func TestParseGarbage(t *testing.T) {
	for _, in := range []string{"", "\n\n", "nothing to see", "Ans: no question", "Q. missing number (2 marks)"} {
		if b := Parse(in); b.Len() != 0 {
			t.Errorf("Parse(%q) produced %d questions", in, b.Len())
		}
	}
}

func TestBankJSONKeepsOrder(t *testing.T) {
	b := Parse("Q2. b (1 marks)\nAns: b\nQ1. a (2 marks)\n(i) x (2 marks)\nAns (i): y")
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Bank
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !b.Equal(&got) {
		t.Errorf("decoded bank differs: %s", data)
	}
}

func TestBankNotMutatedThroughAccessors(t *testing.T) {
	b := Parse(endToEndTeacher)

	qs := b.Questions()
	qs[0].Subs[0].Answer = "tampered"
	q, _ := b.Question("Q1")
	if got := q.Subs[0].Answer; got != "true" {
		t.Fatalf("after editing Questions() result, sub answer = %q, want %q", got, "true")
	}

	q.Subs[1].MaxMarks = 99
	again, _ := b.Question("Q1")
	if got := again.Subs[1].MaxMarks; got != 2 {
		t.Errorf("after editing Question() result, sub marks = %d, want 2", got)
	}

	subs := []SubQuestion{{ID: "i", MaxMarks: 1, Answer: "a"}}
	built := NewBank(Question{ID: "Q9", Subs: subs})
	subs[0].Answer = "changed"
	q9, _ := built.Question("Q9")
	if got := q9.Subs[0].Answer; got != "a" {
		t.Errorf("NewBank shares caller's Subs: answer = %q, want %q", got, "a")
	}
}
