package server

// SuggestedAction represents a suggested next tool call
type SuggestedAction struct {
	Tool        string `json:"tool"`        // Tool name to call
	Description string `json:"description"` // Why this action is suggested
	Priority    string `json:"priority"`    // "high", "medium", "low"
}

// SuggestNextActions suggests logical next tool calls based on context
func SuggestNextActions(context string) []SuggestedAction {
	suggestions := make([]SuggestedAction, 0)

	switch context {
	case "classification":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_today_habits",
				Description: "Get today's habits for this body type",
				Priority:    "high",
			},
			SuggestedAction{
				Tool:        "log_daily_metrics",
				Description: "Start the daily check-in",
				Priority:    "medium",
			},
		)
	case "log":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_daily_insight",
				Description: "See what today's log says",
				Priority:    "high",
			},
			SuggestedAction{
				Tool:        "get_today_habits",
				Description: "Check today's habit plan",
				Priority:    "medium",
			},
		)
	case "plan_limit":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_plan_status",
				Description: "Review what the free plan includes",
				Priority:    "high",
			},
			SuggestedAction{
				Tool:        "export_data",
				Description: "Keep a copy of the logged days",
				Priority:    "low",
			},
		)
	case "habits":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "lookup_habit",
				Description: "Read the full habit card",
				Priority:    "low",
			},
			SuggestedAction{
				Tool:        "log_daily_metrics",
				Description: "Log today's metrics",
				Priority:    "medium",
			},
		)
	case "daily_insight":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_weekly_summary",
				Description: "Put today in the context of the week",
				Priority:    "medium",
			},
		)
	case "weekly_summary":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "analyze_patterns",
				Description: "Look for links between sleep, energy and stress",
				Priority:    "high",
			},
			SuggestedAction{
				Tool:        "get_today_habits",
				Description: "Act on next week's focus today",
				Priority:    "medium",
			},
		)
	case "patterns":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_weekly_summary",
				Description: "Check this week's averages",
				Priority:    "medium",
			},
		)
	case "not_enough_data":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "log_daily_metrics",
				Description: "Keep logging to unlock pattern analysis",
				Priority:    "high",
			},
		)
	}

	return suggestions
}
