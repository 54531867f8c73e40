package server

import (
	"context"
	"fmt"

	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts registers all MCP prompts for the server
func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "weekly_review",
		Description: "Review a week of daily logs with wins, weak spots and one focus for next week",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "end_date",
				Description: "Last day of the week to review in YYYY-MM-DD format. Defaults to today.",
				Required:    false,
			},
		},
	}, s.weeklyReviewPrompt)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "daily_checkin",
		Description: "Walk through today's check-in: log the day, then get the habit plan and the day's insight",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "date",
				Description: "Date to check in for in YYYY-MM-DD format. Defaults to today.",
				Required:    false,
			},
		},
	}, s.dailyCheckinPrompt)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "onboarding_quiz",
		Description: "Run the 16-question body type quiz and save the result",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "mode",
				Description: "How to classify: 'quiz' for the question bank or 'traits' for a short trait interview. Defaults to quiz.",
				Required:    false,
			},
		},
	}, s.onboardingQuizPrompt)

	logging.Debug("MCP prompts registered", "count", 3)
}

// promptArg reads an optional prompt argument
func promptArg(req *mcp.GetPromptRequest, name, fallback string) string {
	if req.Params.Arguments != nil {
		if v, ok := req.Params.Arguments[name]; ok && v != "" {
			return v
		}
	}
	return fallback
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (s *Server) weeklyReviewPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	endDate := promptArg(req, "end_date", s.tracker.Today())

	logging.Info("MCP prompt requested", "prompt", "weekly_review", "end_date", endDate)

	promptText := fmt.Sprintf(`Please review my week of habits ending %s.

Use the following tools to gather data:
1. **get_weekly_summary** with end_date="%s" for averages, wins and areas to improve
2. **analyze_patterns** to see what links my sleep, energy, stress and mood
3. **get_plan_status** to check my streak and plan

Then provide:
- **Summary**: Days logged, average sleep, movement, hydration and mood
- **Wins**: What went well, in my body type's terms
- **Weak spots**: The one or two areas that held me back
- **Patterns**: Any relationship worth acting on
- **Next week**: One concrete focus, using next_week_focus as the starting point

Use the actual numbers from the tools and keep it encouraging.`, endDate, endDate)

	return userPrompt("Weekly habit review prompt", promptText), nil
}

func (s *Server) dailyCheckinPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	date := promptArg(req, "date", s.tracker.Today())

	logging.Info("MCP prompt requested", "prompt", "daily_checkin", "date", date)

	promptText := fmt.Sprintf(`Let's do my daily check-in for %s.

1. Ask me briefly about sleep (hours and quality), energy, movement, stress, meals, water, sunlight, recovery and mood. Skip anything I don't want to answer.
2. Save my answers with **log_daily_metrics** and date="%s". If it returns code PLAN_LIMIT, tell me plainly and stop there.
3. Call **get_today_habits** with date="%s" and present the main habit, the secondary habit and any risk warning.
4. Call **get_daily_insight** with date="%s" and give me the one thing to focus on.

Keep each step short and friendly.`, date, date, date, date)

	return userPrompt("Daily check-in prompt", promptText), nil
}

func (s *Server) onboardingQuizPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	mode := promptArg(req, "mode", "quiz")

	logging.Info("MCP prompt requested", "prompt", "onboarding_quiz", "mode", mode)

	var promptText string
	if mode == "traits" {
		promptText = `Help me find my body type with a short interview.

Ask me one question at a time about: age, gender, stress level, sleep quality, energy drop after meals, sweet cravings, abdominal fat, weight distribution, digestive issues, recovery rate and mood swings.

When done, call **classify_body_type** with a traits object built from my answers, using snake_case keys such as stress_level, sleep_quality, energy_drop_after_meal and weight_distribution.

Then explain my primary body type, any secondary type and the confidence score in plain language, and suggest calling **get_today_habits**.`
	} else {
		promptText = `Help me take the body type quiz.

1. Call **get_quiz_questions** to load the question bank.
2. Ask me each of the 16 questions one at a time with its four options (A-D). Let me skip any question.
3. Call **classify_body_type** with answers keyed by question id, for example {"PT01": "A", "PR02": "C"}.
4. Explain my primary body type, the distribution across types and whether another type is close behind.

Finish by suggesting **get_today_habits** for my first plan.`
	}

	return userPrompt("Body type onboarding prompt", promptText), nil
}
