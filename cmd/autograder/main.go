package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/autograder/internal/cache"
	"github.com/pavelanni/autograder/internal/events"
	"github.com/pavelanni/autograder/internal/export"
	"github.com/pavelanni/autograder/internal/extract"
	"github.com/pavelanni/autograder/internal/grading"
	"github.com/pavelanni/autograder/internal/handler"
	appI18n "github.com/pavelanni/autograder/internal/i18n"
	"github.com/pavelanni/autograder/internal/llm"
	"github.com/pavelanni/autograder/internal/llm/prompts"
	"github.com/pavelanni/autograder/internal/model"
	"github.com/pavelanni/autograder/internal/questionbank"
	"github.com/pavelanni/autograder/internal/scoring"
	"github.com/pavelanni/autograder/internal/store"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "autograder",
		Short:        "Answer-sheet parsing and grading engine",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, gradeCmd(), gradeAssignmentCmd(), parseCmd(), totalMarksCmd(),
		recomputeCmd(), assignmentCmd(), submissionCmd(), userCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `autograder --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLogFlags(f *pflag.FlagSet) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func addDBFlags(f *pflag.FlagSet) {
	f.String("driver", string(store.DriverSQLite), "Database driver (sqlite, postgres)")
	f.String("db", "autograder.db", "SQLite path or postgres URL")
	addLogFlags(f)
}

func addGradingFlags(f *pflag.FlagSet) {
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.Float32("llm-temperature", 0, "Sampling temperature for grading calls")
	f.Duration("llm-timeout", 60*time.Second, "Timeout per subjective scoring call (0 = none)")
	f.String("prompt-variant", string(prompts.PromptStrict), "Grading prompt variant (strict, standard, lenient)")
	f.Int("workers", 1, "Submissions graded concurrently in a batch")
	f.String("upload-dir", "uploads", "Directory holding uploaded sheets")
	f.Duration("pdf-timeout", 30*time.Second, "Timeout for pdftotext")
	f.String("redis-url", "", "Redis URL for the parsed bank cache (empty = in-memory)")
	f.Duration("cache-ttl", 24*time.Hour, "TTL of cached banks in Redis")
	f.StringSlice("kafka-brokers", nil, "Kafka brokers for grading events (empty = in-process)")
	f.String("events-topic", events.DefaultTopic, "Topic for grading events")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP grading server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "en", "Default report language (en, ru)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /grader)")
	f.StringSlice("cors-origins", nil, "Allowed CORS origins (empty = CORS disabled)")
	f.Duration("grade-interval", 0, "Grade due submissions periodically (0 = disabled)")
	f.String("admin-password", "", "Initial admin password (or set AUTOGRADER_ADMIN_PASSWORD)")
	addDBFlags(f)
	addGradingFlags(f)
	return cmd
}

func gradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade all ungraded submissions of assignments past their deadline",
		RunE:  runGrade,
	}
	addDBFlags(cmd.Flags())
	addGradingFlags(cmd.Flags())
	return cmd
}

func gradeAssignmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade-assignment ASSIGNMENT_ID",
		Short: "Grade one assignment's ungraded submissions regardless of deadline",
		Args:  cobra.ExactArgs(1),
		RunE:  runGradeAssignment,
	}
	addDBFlags(cmd.Flags())
	addGradingFlags(cmd.Flags())
	return cmd
}

func recomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute ASSIGNMENT_ID",
		Short: "Recompute grades of graded submissions from their stored question rows",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecompute,
	}
	addDBFlags(cmd.Flags())
	return cmd
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse an answer sheet and print the question bank as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().Duration("pdf-timeout", 30*time.Second, "Timeout for pdftotext")
	addLogFlags(cmd.Flags())
	return cmd
}

func totalMarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "total-marks FILE",
		Short: "Print the total marks of a solution sheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runTotalMarks,
	}
	cmd.Flags().Duration("pdf-timeout", 30*time.Second, "Timeout for pdftotext")
	addLogFlags(cmd.Flags())
	return cmd
}

func assignmentCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "assignment", Short: "Manage assignments"}
	add := &cobra.Command{
		Use:   "add",
		Short: "Register an assignment with its solution sheet",
		RunE:  runAssignmentAdd,
	}
	f := add.Flags()
	f.String("title", "", "Assignment title (required)")
	f.String("solution", "", "Solution sheet path, relative to --upload-dir or absolute (required)")
	f.String("questions", "", "Question paper path")
	f.String("deadline", "", "Deadline in RFC3339 (required)")
	f.Int64("teacher-id", 0, "Owning teacher's user ID")
	f.String("upload-dir", "uploads", "Directory holding uploaded sheets")
	addDBFlags(f)
	_ = add.MarkFlagRequired("title")
	_ = add.MarkFlagRequired("solution")
	_ = add.MarkFlagRequired("deadline")
	cmd.AddCommand(add)
	return cmd
}

func submissionCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "submission", Short: "Manage submissions"}
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a student's answer sheet",
		RunE:  runSubmissionAdd,
	}
	f := add.Flags()
	f.Int64("assignment-id", 0, "Assignment ID (required)")
	f.Int64("student-id", 0, "Student user ID")
	f.String("file", "", "Answer sheet path (required)")
	addDBFlags(f)
	_ = add.MarkFlagRequired("assignment-id")
	_ = add.MarkFlagRequired("file")
	cmd.AddCommand(add)
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}
	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runUserAdd,
	}
	f := add.Flags()
	f.String("password", "", "Password (required)")
	f.String("role", string(model.UserRoleStudent), "Role (student, teacher, administration)")
	f.String("display-name", "", "Display name")
	addDBFlags(f)
	_ = add.MarkFlagRequired("password")
	cmd.AddCommand(add)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an assignment's grades as JSON or XLSX",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.Int64("assignment-id", 0, "Assignment ID (required)")
	f.String("format", "json", "Output format (json, xlsx)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addDBFlags(f)
	_ = cmd.MarkFlagRequired("assignment-id")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("AUTOGRADER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("autograder")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/autograder")
	v.AddConfigPath("/etc/autograder")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func openStore(ctx context.Context, v *viper.Viper) (*store.Store, error) {
	driver := store.Driver(strings.ToLower(v.GetString("driver")))
	db, err := store.New(ctx, driver, v.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func newExtractor(v *viper.Viper) extract.Extractor {
	auto := extract.NewAuto()
	auto.PDF = &extract.PDFToText{Binary: "pdftotext", Timeout: v.GetDuration("pdf-timeout")}
	return auto
}

// gradingStack is the grading pipeline wired from configuration.
type gradingStack struct {
	service   *grading.Service
	batch     *grading.Batch
	publisher events.Publisher
	closers   []io.Closer
}

func (g *gradingStack) Close() {
	for _, c := range g.closers {
		if err := c.Close(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
}

func newGradingStack(ctx context.Context, v *viper.Viper, db *store.Store) (*gradingStack, error) {
	variant := strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant")))
	if !prompts.IsValidVariant(variant) {
		slog.Warn("invalid prompt-variant, using strict", "variant", variant)
		variant = string(prompts.PromptStrict)
	}
	if err := prompts.Load(); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	llmClient, err := llm.New(llm.Config{
		BaseURL:     v.GetString("llm-url"),
		APIKey:      v.GetString("llm-key"),
		Model:       v.GetString("llm-model"),
		Temperature: float32(v.GetFloat64("llm-temperature")),
	})
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}
	if err := llmClient.Ping(ctx); err != nil {
		return nil, fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))

	stack := &gradingStack{}

	var bankCache cache.BankCache = cache.NewMemory(256)
	if url := v.GetString("redis-url"); url != "" {
		rc, err := cache.NewRedis(ctx, url, v.GetDuration("cache-ttl"))
		if err != nil {
			return nil, err
		}
		bankCache = rc
		stack.closers = append(stack.closers, rc)
		slog.Info("using redis bank cache")
	}

	topic := v.GetString("events-topic")
	if brokers := v.GetStringSlice("kafka-brokers"); len(brokers) > 0 {
		pub, err := events.NewKafka(brokers, topic, slog.Default())
		if err != nil {
			stack.Close()
			return nil, err
		}
		stack.publisher = pub
		slog.Info("publishing grading events to kafka", "brokers", brokers, "topic", topic)
	} else {
		stack.publisher = events.NewInProcess(topic, slog.Default())
	}
	stack.closers = append(stack.closers, stack.publisher)

	scorer := scoring.New(scoring.NewLLMScorer(llmClient, prompts.PromptVariant(variant), v.GetDuration("llm-timeout")))
	stack.service = grading.NewService(grading.ServiceConfig{
		Store:        db,
		Extractor:    newExtractor(v),
		Orchestrator: grading.NewOrchestrator(scorer),
		Cache:        bankCache,
		Publisher:    stack.publisher,
		Logger:       slog.Default(),
		FileRoot:     v.GetString("upload-dir"),
	})
	stack.batch = grading.NewBatch(db, stack.service, v.GetInt("workers"), slog.Default())
	return stack, nil
}

// logEvents mirrors in-process grading events into the log until ctx ends.
func logEvents(ctx context.Context, pub events.Publisher) {
	wp, ok := pub.(*events.WatermillPublisher)
	if !ok {
		return
	}
	msgs, err := wp.Subscribe(ctx)
	if err != nil {
		return
	}
	go func() {
		for msg := range msgs {
			ev, err := events.Decode(msg)
			msg.Ack()
			if err != nil {
				slog.Warn("undecodable grading event", "error", err)
				continue
			}
			slog.Debug("grading event", "event_id", ev.ID, "submission_id", ev.SubmissionID,
				"total", ev.Total, "max_marks", ev.MaxMarks)
		}
	}()
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer db.Close()

	// Seed default admin user if no users exist.
	if err := seedAdmin(ctx, db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	stack, err := newGradingStack(ctx, v, db)
	if err != nil {
		return err
	}
	defer stack.Close()
	if len(v.GetStringSlice("kafka-brokers")) == 0 {
		logEvents(ctx, stack.publisher)
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	h := handler.New(db, stack.service, stack.batch, handler.Config{
		BasePath:    basePath,
		Lang:        lang,
		UploadDir:   v.GetString("upload-dir"),
		CORSOrigins: v.GetStringSlice("cors-origins"),
	})

	if interval := v.GetDuration("grade-interval"); interval > 0 {
		go gradeLoop(ctx, stack.batch, interval)
	}

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: h.Router(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting server",
		"addr", addr,
		"driver", v.GetString("driver"),
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"prompt_variant", v.GetString("prompt-variant"),
		"workers", v.GetInt("workers"),
		"grade_interval", v.GetDuration("grade-interval"),
		"lang", lang,
		"base_path", basePath,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func gradeLoop(ctx context.Context, b *grading.Batch, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := b.RunDue(ctx, now); err != nil {
				slog.Error("periodic grading failed", "error", err)
			}
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runGrade(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	db, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer db.Close()

	stack, err := newGradingStack(ctx, v, db)
	if err != nil {
		return err
	}
	defer stack.Close()

	report, err := stack.batch.RunDue(ctx, time.Now())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}

func runGradeAssignment(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid assignment ID %q", args[0])
	}

	db, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer db.Close()

	stack, err := newGradingStack(ctx, v, db)
	if err != nil {
		return err
	}
	defer stack.Close()

	report, err := stack.batch.RunAssignment(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}

func runRecompute(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid assignment ID %q", args[0])
	}

	db, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.GetAssignment(ctx, id); err != nil {
		return err
	}
	n, err := db.RecomputeAssignmentGrades(ctx, id)
	if err != nil {
		return err
	}
	slog.Info("recomputed grades", "assignment_id", id, "submissions", n)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d submissions\n", n)
	return err
}

func readBank(cmd *cobra.Command, path string) (*questionbank.Bank, error) {
	text, err := newExtractor(viperForCmd(cmd)).ExtractText(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	return questionbank.Parse(text), nil
}

func runParse(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	bank, err := readBank(cmd, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), bank)
}

func runTotalMarks(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	total := 0
	if bank, err := readBank(cmd, args[0]); err != nil {
		slog.Error("cannot compute total marks", "path", args[0], "error", err)
	} else {
		total = grading.TotalMarks(bank)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), total)
	return err
}

func runAssignmentAdd(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	deadline, err := time.Parse(time.RFC3339, v.GetString("deadline"))
	if err != nil {
		return fmt.Errorf("deadline must be RFC3339: %w", err)
	}

	db, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer db.Close()

	a := model.Assignment{
		Title:        v.GetString("title"),
		TeacherID:    v.GetInt64("teacher-id"),
		QuestionFile: v.GetString("questions"),
		SolutionFile: v.GetString("solution"),
		Deadline:     deadline,
	}
	a.ID, err = db.CreateAssignment(ctx, a)
	if err != nil {
		return err
	}
	slog.Info("created assignment", "id", a.ID, "title", a.Title)
	return printJSON(cmd.OutOrStdout(), a)
}

func runSubmissionAdd(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	db, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer db.Close()

	assignmentID := v.GetInt64("assignment-id")
	if _, err := db.GetAssignment(ctx, assignmentID); err != nil {
		return err
	}
	sub := model.Submission{
		AssignmentID:  assignmentID,
		StudentID:     v.GetInt64("student-id"),
		SubmittedFile: v.GetString("file"),
		SubmittedAt:   time.Now().UTC(),
	}
	sub.ID, err = db.CreateSubmission(ctx, sub)
	if err != nil {
		return err
	}
	slog.Info("created submission", "id", sub.ID, "assignment_id", assignmentID)
	return printJSON(cmd.OutOrStdout(), sub)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	role := model.UserRole(v.GetString("role"))
	if !model.IsValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(v.GetString("password")), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	db, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer db.Close()

	displayName := v.GetString("display-name")
	if displayName == "" {
		displayName = args[0]
	}
	id, err := db.CreateUser(ctx, model.User{
		Username:     args[0],
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, role %s)\n", args[0], id, role)
	return err
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	format := strings.ToLower(v.GetString("format"))
	if format != "json" && format != "xlsx" {
		return fmt.Errorf("unknown format %q (want json or xlsx)", format)
	}

	db, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer db.Close()

	exp, err := db.ExportAssignment(ctx, v.GetInt64("assignment-id"))
	if err != nil {
		return fmt.Errorf("export assignment: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "xlsx" {
		return export.WriteXLSX(w, exp)
	}
	return export.WriteJSON(w, exp)
}

func seedAdmin(ctx context.Context, db *store.Store, password string) error {
	count, err := db.UserCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or AUTOGRADER_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(ctx, model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
