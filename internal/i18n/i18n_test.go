package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "AppTitle"); got != "Autograder" {
		t.Errorf("T(AppTitle) = %q, want 'Autograder'", got)
	}
	if got := T(ctx, "ColFeedback"); got != "Feedback" {
		t.Errorf("T(ColFeedback) = %q, want 'Feedback'", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	if got := T(ctx, "AppTitle"); got != "Автопроверка" {
		t.Errorf("T(AppTitle) = %q, want 'Автопроверка'", got)
	}
	if got := T(ctx, "ReportTitle"); got != "Отчёт о проверке" {
		t.Errorf("T(ReportTitle) = %q, want 'Отчёт о проверке'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	tests := []struct {
		lang  string
		count int
		want  string
	}{
		{"en", 1, "1 question graded."},
		{"en", 5, "5 questions graded."},
		{"ru", 1, "Проверен 1 вопрос."},
		{"ru", 3, "Проверено 3 вопроса."},
		{"ru", 5, "Проверено 5 вопросов."},
	}
	for _, tt := range tests {
		ctx := initLang(t, tt.lang)
		if got := Tp(ctx, "QuestionsGraded", tt.count); got != tt.want {
			t.Errorf("Tp(%s, %d) = %q, want %q", tt.lang, tt.count, got, tt.want)
		}
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "TotalScore", map[string]any{"Obtained": "4.5", "Max": "7"})
	if got != "Total: 4.5 / 7" {
		t.Errorf("Td(TotalScore) = %q, want 'Total: 4.5 / 7'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestMatch(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru"},
		{"de-DE,de;q=0.9", "en"},
		{"en-GB", "en"},
	}
	for _, tt := range tests {
		if got := Match(tt.header); got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	var title string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = T(r.Context(), "AppTitle")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ru")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if title != "Автопроверка" {
		t.Errorf("title = %q, want Russian", title)
	}
	if got := rec.Header().Get("Content-Language"); got != "ru" {
		t.Errorf("Content-Language = %q, want ru", got)
	}
}
