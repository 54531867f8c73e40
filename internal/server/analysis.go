package server

import (
	"context"

	"github.com/joshdurbin/bodycode-mcp/internal/insights"
	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerAnalysisTools registers the insight, summary and pattern tools
func (s *Server) registerAnalysisTools() {
	logging.Debug("Registering tool", "name", "get_daily_insight")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_daily_insight",
		Description: `Get the single most important insight for one day's log, tailored to the user's body type.

Use when:
- User just logged their day and asks "How did I do?"
- User wants one thing to focus on today

Parameters:
- date (string): Date in YYYY-MM-DD format. Default: today.

Returns: type, category, title, why it matters, a concrete action, a reminder and a priority (high|medium|low). A day with nothing concerning returns a positive insight.`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Get Daily Insight",
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "get_daily_insight", s.getDailyInsight))

	logging.Debug("Registering tool", "name", "get_weekly_summary")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_weekly_summary",
		Description: `Summarize the 7 days ending on a date: averages, sleep consistency, wins, areas to improve and a focus for next week.

Use when:
- User asks "How was my week?"
- Weekly review or planning the next week

Parameters:
- end_date (string): Last day of the week in YYYY-MM-DD format. Default: today.

Averages only count days that reported the metric. Days without logs are not counted.

Returns: week number, days logged, date range, stats, insights, wins, areas to improve and next week's focus.`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Get Weekly Summary",
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "get_weekly_summary", s.getWeeklySummary))

	logging.Debug("Registering tool", "name", "analyze_patterns")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "analyze_patterns",
		Description: `Look for relationships across the whole log history: sleep vs energy, stress vs mood, movement vs energy, meal tracking vs energy and weekend sleep shifts.

Use when:
- User asks "What affects my energy?" or "Do I sleep worse on weekends?"
- After at least a week of logging

Needs at least 7 logged days. With fewer, has_enough_data is false and no patterns are returned.

Returns: up to 5 patterns ordered by strength, each with the metrics involved, correlation where applicable, trend and a plain-language insight.`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Analyze Patterns",
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "analyze_patterns", s.analyzePatterns))
}

// DailyInsightInput - date of the log to analyze
type DailyInsightInput struct {
	Date string `json:"date,omitempty" jsonschema:"Date to analyze. Format: YYYY-MM-DD. Default: today."`
}

// DailyInsightOutput - the day's top insight
type DailyInsightOutput struct {
	Date             string            `json:"date"`
	Insight          insights.Insight  `json:"insight"`
	SuggestedActions []SuggestedAction `json:"suggested_actions,omitempty"`
}

func (s *Server) getDailyInsight(ctx context.Context, req *mcp.CallToolRequest, input DailyInsightInput) (*mcp.CallToolResult, DailyInsightOutput, error) {
	logging.Info("MCP tool call", "tool", "get_daily_insight", "date", input.Date)

	date := input.Date
	if date == "" {
		date = s.tracker.Today()
	}
	insight, err := s.tracker.DailyInsight(ctx, date)
	if err != nil {
		logging.Error("get_daily_insight failed", "error", err)
		return nil, DailyInsightOutput{}, toToolError("building daily insight", err)
	}

	return nil, DailyInsightOutput{
		Date:             date,
		Insight:          insight,
		SuggestedActions: SuggestNextActions("daily_insight"),
	}, nil
}

// WeeklySummaryInput - end of the week window
type WeeklySummaryInput struct {
	EndDate string `json:"end_date,omitempty" jsonschema:"Last day of the 7-day window. Format: YYYY-MM-DD. Default: today."`
}

// WeeklySummaryOutput - the week's aggregate
type WeeklySummaryOutput struct {
	Summary          insights.WeeklySummary `json:"summary"`
	SuggestedActions []SuggestedAction      `json:"suggested_actions,omitempty"`
}

func (s *Server) getWeeklySummary(ctx context.Context, req *mcp.CallToolRequest, input WeeklySummaryInput) (*mcp.CallToolResult, WeeklySummaryOutput, error) {
	logging.Info("MCP tool call", "tool", "get_weekly_summary", "end_date", input.EndDate)

	summary, err := s.tracker.WeeklySummary(ctx, input.EndDate)
	if err != nil {
		logging.Error("get_weekly_summary failed", "error", err)
		return nil, WeeklySummaryOutput{}, toToolError("building weekly summary", err)
	}

	logging.Debug("Weekly summary built", "days", summary.TotalDays, "wins", len(summary.Wins), "areas", len(summary.AreasToImprove))
	return nil, WeeklySummaryOutput{
		Summary:          summary,
		SuggestedActions: SuggestNextActions("weekly_summary"),
	}, nil
}

// PatternsInput - no parameters
type PatternsInput struct{}

// PatternsOutput - detected patterns
type PatternsOutput struct {
	Report           insights.PatternReport `json:"report"`
	SuggestedActions []SuggestedAction      `json:"suggested_actions,omitempty"`
}

func (s *Server) analyzePatterns(ctx context.Context, req *mcp.CallToolRequest, input PatternsInput) (*mcp.CallToolResult, PatternsOutput, error) {
	logging.Info("MCP tool call", "tool", "analyze_patterns")

	report, err := s.tracker.Patterns(ctx)
	if err != nil {
		logging.Error("analyze_patterns failed", "error", err)
		return nil, PatternsOutput{}, toToolError("analyzing patterns", err)
	}

	next := "patterns"
	if !report.HasEnoughData {
		next = "not_enough_data"
	}
	return nil, PatternsOutput{
		Report:           report,
		SuggestedActions: SuggestNextActions(next),
	}, nil
}
