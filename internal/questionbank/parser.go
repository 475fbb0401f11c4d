package questionbank

import (
	"regexp"
	"strconv"
	"strings"
)

// ParserVersion changes whenever Parse can produce a different bank for the
// same text. Persistent caches include it in their keys.
const ParserVersion = "1"

var (
	questionRe    = regexp.MustCompile(`(?i)^(Q\d+)\.\s*(.*?)\s*\((\d+)\s*marks\)`)
	subQuestionRe = regexp.MustCompile(`^\(([ivxlc]+)\)\s*(.*?)\s*\((\d+)\s*(?i:marks)\)`)
	subAnswerRe   = regexp.MustCompile(`^(?i:ans)\s*\(([ivxlc]+)\)\s*:\s*(.*)`)
	answerRe      = regexp.MustCompile(`^(?i:ans)\s*:\s*(.*)`)
)

// Parse builds a question bank from extracted document text. It never fails:
// lines it cannot place are dropped.
//
// Recognised lines:
//
//	Q1. Define X (3 marks)
//	(i) Sub one? (1 marks)
//	Ans (i): true
//	Ans: X is Y.
//
// Any other line continues the open "Ans:" buffer, or else becomes the answer
// of the first sub-question that has none.
func Parse(text string) *Bank {
	p := &parser{bank: NewBank()}
	for _, line := range Lines(text) {
		p.feed(line)
	}
	p.flush()
	return p.bank
}

type parser struct {
	bank *Bank
	cur  *Question
}

func (p *parser) feed(line string) {
	if m := questionRe.FindStringSubmatch(line); m != nil {
		if marks, ok := parseMarks(m[3]); ok {
			p.flush()
			p.cur = &Question{
				ID:       strings.ToUpper(m[1]),
				Prompt:   strings.TrimSpace(m[2]),
				MaxMarks: marks,
			}
			return
		}
	}

	// Everything below belongs to an open question.
	if p.cur == nil {
		return
	}

	if m := subQuestionRe.FindStringSubmatch(line); m != nil {
		if marks, ok := parseMarks(m[3]); ok {
			p.putSub(SubQuestion{
				ID:       m[1],
				Prompt:   strings.TrimSpace(m[2]),
				MaxMarks: marks,
			})
			return
		}
	}

	if m := subAnswerRe.FindStringSubmatch(line); m != nil {
		if i := p.subIndex(m[1]); i >= 0 {
			p.cur.Subs[i].Answer = strings.TrimSpace(m[2])
		}
		return
	}

	if m := answerRe.FindStringSubmatch(line); m != nil {
		p.cur.Answer = strings.TrimSpace(m[1])
		return
	}

	p.continuation(line)
}

// continuation places an unrecognised line. The question-level buffer wins
// over back-filling sub-answers.
func (p *parser) continuation(line string) {
	if p.cur.Answer != "" {
		p.cur.Answer += " " + line
		return
	}
	for i := range p.cur.Subs {
		if p.cur.Subs[i].Answer == "" {
			p.cur.Subs[i].Answer = line
			return
		}
	}
}

func (p *parser) putSub(s SubQuestion) {
	if i := p.subIndex(s.ID); i >= 0 {
		p.cur.Subs[i] = s
		return
	}
	p.cur.Subs = append(p.cur.Subs, s)
}

func (p *parser) subIndex(id string) int {
	for i, s := range p.cur.Subs {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (p *parser) flush() {
	if p.cur == nil {
		return
	}
	p.bank.put(*p.cur)
	p.cur = nil
}

func parseMarks(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
