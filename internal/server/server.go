package server

import (
	"context"
	"time"

	"github.com/joshdurbin/bodycode-mcp/internal/bodytype"
	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"github.com/joshdurbin/bodycode-mcp/internal/habits"
	"github.com/joshdurbin/bodycode-mcp/internal/insights"
	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/joshdurbin/bodycode-mcp/internal/retention"
	"github.com/joshdurbin/bodycode-mcp/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "bodycode-mcp"
	serverVersion = "1.0.0"
)

// ptr returns a pointer to the given value - useful for optional fields in structs
func ptr[T any](v T) *T {
	return &v
}

// Tracker is the tracker surface the MCP tools need
type Tracker interface {
	Engine() *bodytype.Engine
	Catalog() *habits.Catalog
	Today() string
	Onboard(ctx context.Context, record map[string]any) (domain.Classification, error)
	Classification(ctx context.Context) (domain.Classification, error)
	SaveLog(ctx context.Context, date string, patch domain.DailyLog) (tracker.SaveResult, error)
	Logs(ctx context.Context) ([]domain.DailyLog, error)
	TodayPlan(ctx context.Context, date string) (habits.Plan, bool, error)
	DailyInsight(ctx context.Context, date string) (insights.Insight, error)
	WeeklySummary(ctx context.Context, endDate string) (insights.WeeklySummary, error)
	Patterns(ctx context.Context) (insights.PatternReport, error)
	Access(ctx context.Context) (retention.Access, error)
	Reminder(ctx context.Context, today string) (retention.Reminder, error)
	RetentionInsight(ctx context.Context) (retention.WeeklyInsight, error)
	SetPlan(ctx context.Context, tier domain.PlanTier) (retention.Access, error)
	Streak(ctx context.Context, today string) (int, error)
	Export(ctx context.Context, now time.Time) (tracker.Export, error)
}

// Server wraps the MCP server and the tracker
type Server struct {
	mcp       *mcp.Server
	tracker   Tracker
	telemetry *Telemetry
	now       func() time.Time
}

// MCPServer returns the underlying MCP server (for use with HTTP/SSE transport)
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// New creates a new MCP server exposing the tracker. telemetry may be nil.
func New(t Tracker, telemetry *Telemetry) *Server {
	logging.Info("MCP server initializing", "name", serverName, "version", serverVersion)

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	s := &Server{
		mcp:       mcpServer,
		tracker:   t,
		telemetry: telemetry,
		now:       time.Now,
	}

	logging.Debug("Registering MCP tools")
	s.registerTools()
	s.registerTrackingTools()
	s.registerAnalysisTools()
	s.registerPlanTools()

	logging.Debug("Registering MCP resources")
	s.registerResources()

	logging.Debug("Registering MCP prompts")
	s.registerPrompts()

	logging.Info("MCP server initialized", "tools_registered", 11, "resources_registered", 4, "prompts_registered", 3)
	return s
}

// Run starts the MCP server over stdio transport
func (s *Server) Run(ctx context.Context) error {
	logging.Info("MCP server starting")
	defer logging.Info("MCP server stopped")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// observed wraps a tool handler with call logging and telemetry
func observed[In, Out any](s *Server, name string, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		if logging.IsVerbose() {
			logging.Debug("MCP request params", "tool", name, "input", logging.ToJSON(in))
		}
		start := time.Now()
		res, out, err := h(ctx, req, in)
		elapsed := time.Since(start)
		s.telemetry.ObserveToolCall(name, elapsed, err)

		if err != nil {
			logging.Warn("MCP tool failed", "tool", name, "error", err, "duration_ms", elapsed.Milliseconds())
		} else if logging.IsTraceEnabled() {
			logging.Debug("MCP response", "tool", name, "output", logging.ToJSON(out))
		}
		return res, out, err
	}
}

func (s *Server) registerTools() {
	logging.Debug("Registering tool", "name", "classify_body_type")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "classify_body_type",
		Description: `Classify the user into a body type from an onboarding trait record or quiz answers, and save it as the current classification.

Use when:
- User finishes onboarding or retakes the body type quiz
- User asks "What's my body type?" after answering questions

Parameters:
- traits (object): Flat trait record, e.g. {"age": 34, "gender": "female", "stress_level": "high", "sleep_quality": "poor"}.
- answers (object): Quiz answers keyed by question id with option A-D, e.g. {"PT01": "A", "PR02": "C"}. Call get_quiz_questions for the bank.

Provide exactly one of traits or answers. A retake replaces the previous classification.

Returns: primary and secondary body type, confidence (0-100), raw scores, triggered rules and a plain-language reasoning.

Example: {"traits": {"abdominal_fat": "yes", "energy_drop_after_meal": "yes", "sweet_cravings": "high"}}`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Classify Body Type",
			ReadOnlyHint:    false,
			IdempotentHint:  false,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "classify_body_type", s.classifyBodyType))

	logging.Debug("Registering tool", "name", "get_quiz_questions")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_quiz_questions",
		Description: `Get the 16-question body type quiz: questions, the A-D options and category weights.

Use when:
- User wants to take or retake the body type quiz
- You need valid question ids before calling classify_body_type with answers

Returns: quiz version, option definitions (type, label, color, shape, core traits), categories with weights, and every question with its four answer texts.`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Get Quiz Questions",
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "get_quiz_questions", s.getQuizQuestions))
}

// ClassifyInput - onboarding record of either shape
type ClassifyInput struct {
	Traits  map[string]any    `json:"traits,omitempty" jsonschema:"Flat onboarding trait record. Keys are trait names such as stress_level, sleep_quality, abdominal_fat; values are the chosen answers."`
	Answers map[string]string `json:"answers,omitempty" jsonschema:"Quiz answers keyed by question id (PT01-PT08, PR01-PR03, PS01-PS05) with option code A, B, C or D."`
}

// ClassifyOutput - the saved classification
type ClassifyOutput struct {
	InputKind        string                `json:"input_kind"`
	Classification   domain.Classification `json:"classification"`
	SuggestedActions []SuggestedAction     `json:"suggested_actions,omitempty"`
}

func (s *Server) classifyBodyType(ctx context.Context, req *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, ClassifyOutput, error) {
	logging.Info("MCP tool call", "tool", "classify_body_type", "traits", len(input.Traits), "answers", len(input.Answers))

	switch {
	case len(input.Traits) == 0 && len(input.Answers) == 0:
		return nil, ClassifyOutput{}, NewInvalidInputError("provide either traits or answers")
	case len(input.Traits) > 0 && len(input.Answers) > 0:
		return nil, ClassifyOutput{}, NewInvalidInputError("provide traits or answers, not both")
	}

	record := make(map[string]any, len(input.Traits)+len(input.Answers))
	for k, v := range input.Traits {
		record[k] = v
	}
	bank := s.tracker.Engine().Questions()
	for id, code := range input.Answers {
		if !bodytype.IsQuestionID(id) || !bank.HasQuestion(id) {
			return nil, ClassifyOutput{}, NewInvalidInputErrorWithDetails("unknown quiz question id", id)
		}
		record[id] = code
	}

	c, err := s.tracker.Onboard(ctx, record)
	if err != nil {
		logging.Error("classify_body_type failed", "error", err)
		return nil, ClassifyOutput{}, toToolError("saving classification", err)
	}

	logging.Info("Body type classified", "primary", c.PrimaryType, "secondary", c.SecondaryType, "confidence", c.Confidence, "variant", c.Variant)
	return nil, ClassifyOutput{
		InputKind:        string(c.Variant),
		Classification:   c,
		SuggestedActions: SuggestNextActions("classification"),
	}, nil
}

// QuizQuestionsInput - no parameters
type QuizQuestionsInput struct{}

// QuizQuestionsOutput - the question bank
type QuizQuestionsOutput struct {
	Scoring string                `json:"scoring"`
	Bank    bodytype.QuestionBank `json:"bank"`
}

func (s *Server) getQuizQuestions(ctx context.Context, req *mcp.CallToolRequest, input QuizQuestionsInput) (*mcp.CallToolResult, QuizQuestionsOutput, error) {
	logging.Info("MCP tool call", "tool", "get_quiz_questions")

	engine := s.tracker.Engine()
	return nil, QuizQuestionsOutput{
		Scoring: string(engine.Scoring()),
		Bank:    engine.Questions(),
	}, nil
}
