package server

import (
	"context"
	"strings"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/joshdurbin/bodycode-mcp/internal/retention"
	"github.com/joshdurbin/bodycode-mcp/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPlanTools registers the plan status, plan tier and export tools
func (s *Server) registerPlanTools() {
	logging.Debug("Registering tool", "name", "get_plan_status")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_plan_status",
		Description: `Get the current plan, how many tracker days are used and left, today's reminder, the weekly retention note and the current streak.

Use when:
- User asks "How many free days do I have left?"
- A log write came back with code PLAN_LIMIT
- Deciding whether to nudge the user to check in

Returns: access (plan, days used, days remaining, whether a new day can be logged), reminder, weekly retention insight (paid plan only) and current streak.`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Get Plan Status",
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "get_plan_status", s.getPlanStatus))

	logging.Debug("Registering tool", "name", "set_plan_tier")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "set_plan_tier",
		Description: `Switch the plan between free and paid.

Use when:
- User upgrades or downgrades their plan

Parameters:
- tier (string): "free" or "paid". Required.

The free plan keeps every day already logged; it only blocks new dates beyond its limit.

Returns: the access summary under the new plan.`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Set Plan Tier",
			ReadOnlyHint:    false,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "set_plan_tier", s.setPlanTier))

	logging.Debug("Registering tool", "name", "export_data")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "export_data",
		Description: `Export everything stored for the user as one JSON document: profile, body type, every daily log and lifetime statistics.

Use when:
- User asks for a copy of their data
- Before a reset, or before switching devices

Returns: export id, export date, version, plan, user, body type, habit logs and statistics (days logged, current streak, date range, averages).`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Export Data",
			ReadOnlyHint:    true,
			IdempotentHint:  false,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "export_data", s.exportData))
}

// PlanStatusInput - no parameters
type PlanStatusInput struct{}

// PlanStatusOutput - plan access and retention state
type PlanStatusOutput struct {
	Access           retention.Access        `json:"access"`
	Reminder         retention.Reminder      `json:"reminder"`
	WeeklyInsight    retention.WeeklyInsight `json:"weekly_insight"`
	CurrentStreak    int                     `json:"current_streak"`
	SuggestedActions []SuggestedAction       `json:"suggested_actions,omitempty"`
}

func (s *Server) getPlanStatus(ctx context.Context, req *mcp.CallToolRequest, input PlanStatusInput) (*mcp.CallToolResult, PlanStatusOutput, error) {
	logging.Info("MCP tool call", "tool", "get_plan_status")

	today := s.tracker.Today()
	access, err := s.tracker.Access(ctx)
	if err != nil {
		return nil, PlanStatusOutput{}, toToolError("loading plan", err)
	}
	reminder, err := s.tracker.Reminder(ctx, today)
	if err != nil {
		return nil, PlanStatusOutput{}, toToolError("building reminder", err)
	}
	weekly, err := s.tracker.RetentionInsight(ctx)
	if err != nil {
		return nil, PlanStatusOutput{}, toToolError("building weekly insight", err)
	}
	streak, err := s.tracker.Streak(ctx, today)
	if err != nil {
		return nil, PlanStatusOutput{}, toToolError("computing streak", err)
	}

	output := PlanStatusOutput{
		Access:        access,
		Reminder:      reminder,
		WeeklyInsight: weekly,
		CurrentStreak: streak,
	}
	if !access.CanLogToday {
		output.SuggestedActions = SuggestNextActions("plan_limit")
	}
	return nil, output, nil
}

// SetPlanInput - the new tier
type SetPlanInput struct {
	Tier string `json:"tier" jsonschema:"Plan tier. Valid values: free, paid."`
}

// SetPlanOutput - access under the new tier
type SetPlanOutput struct {
	Access retention.Access `json:"access"`
}

func (s *Server) setPlanTier(ctx context.Context, req *mcp.CallToolRequest, input SetPlanInput) (*mcp.CallToolResult, SetPlanOutput, error) {
	logging.Info("MCP tool call", "tool", "set_plan_tier", "tier", input.Tier)

	tier := domain.PlanTier(strings.ToLower(strings.TrimSpace(input.Tier)))
	if tier != domain.PlanFree && tier != domain.PlanPaid {
		return nil, SetPlanOutput{}, NewInvalidInputErrorWithDetails("tier must be free or paid", input.Tier)
	}

	access, err := s.tracker.SetPlan(ctx, tier)
	if err != nil {
		logging.Error("set_plan_tier failed", "error", err)
		return nil, SetPlanOutput{}, toToolError("saving plan", err)
	}

	logging.Info("Plan tier changed", "plan", access.Plan, "days_used", access.DaysUsed)
	return nil, SetPlanOutput{Access: access}, nil
}

// ExportInput - no parameters
type ExportInput struct{}

// ExportOutput - the export document
type ExportOutput struct {
	Export tracker.Export `json:"export"`
}

func (s *Server) exportData(ctx context.Context, req *mcp.CallToolRequest, input ExportInput) (*mcp.CallToolResult, ExportOutput, error) {
	logging.Info("MCP tool call", "tool", "export_data")

	doc, err := s.tracker.Export(ctx, s.now())
	if err != nil {
		logging.Error("export_data failed", "error", err)
		return nil, ExportOutput{}, toToolError("exporting data", err)
	}

	logging.Info("Data exported", "export_id", doc.ID, "days", doc.Statistics.TotalDaysLogged)
	return nil, ExportOutput{Export: doc}, nil
}
