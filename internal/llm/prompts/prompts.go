package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	studentAnswerRegex      = regexp.MustCompile(`(?i)</?\s*student-answer\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

const maxAnswerRunes = 10000

// PromptVariant represents a grading prompt variant.
type PromptVariant string

const (
	// PromptStrict is the default variant: an extremely strict grader.
	PromptStrict PromptVariant = "strict"
	// PromptStandard gives credit for correct ideas in different wording.
	PromptStandard PromptVariant = "standard"
	// PromptLenient is for electives.
	PromptLenient PromptVariant = "lenient"
)

var validVariants = map[PromptVariant]bool{
	PromptStrict:   true,
	PromptStandard: true,
	PromptLenient:  true,
}

var (
	loadOnce       sync.Once
	loadErr        error
	gradeTemplates map[PromptVariant]*template.Template
)

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[PromptVariant(v)]
}

// GradeData holds template data for subjective grading prompts.
type GradeData struct {
	MaxMarks      string
	TeacherAnswer string
	StudentAnswer string
}

// Load parses the embedded templates. Safe to call more than once.
func Load() error {
	loadOnce.Do(func() {
		gradeTemplates = make(map[PromptVariant]*template.Template)
		for v := range validVariants {
			name := "templates/grade_" + string(v) + ".txt"
			content, err := templateFS.ReadFile(name)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", name, err)
				return
			}
			tmpl, err := template.New(string(v)).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", name, err)
				return
			}
			gradeTemplates[v] = tmpl
		}
	})
	return loadErr
}

// BuildGradePrompt renders the grading prompt for one teacher/student answer pair.
func BuildGradePrompt(variant PromptVariant, teacherAnswer, studentAnswer string, maxMarks float64) (string, error) {
	if err := Load(); err != nil {
		return "", err
	}
	tmpl, ok := gradeTemplates[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	data := GradeData{
		MaxMarks:      FormatMarks(maxMarks),
		TeacherAnswer: strings.TrimSpace(teacherAnswer),
		StudentAnswer: sanitizeAnswer(studentAnswer),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatMarks renders marks without trailing zeros ("3", "2.5").
func FormatMarks(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

func sanitizeAnswer(answer string) string {
	answer = studentAnswerRegex.ReplaceAllString(answer, "")
	answer = systemInstructionsRegex.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(answer)

	if answer == "" {
		return "[No answer provided]"
	}

	if utf8.RuneCountInString(answer) > maxAnswerRunes {
		runes := []rune(answer)
		answer = string(runes[:maxAnswerRunes]) + "\n\n[Answer truncated due to length]"
	}

	return answer
}
