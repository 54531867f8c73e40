package insights

import "github.com/joshdurbin/bodycode-mcp/internal/domain"

type goodPoor struct {
	good string
	poor string
}

type card struct {
	title    string
	why      string
	action   string
	reminder string
}

var sleepTexts = map[domain.BodyType]goodPoor{
	domain.TypeRed: {
		good: "Enough sleep keeps your insulin sensitivity at its best",
		poor: "Too little sleep can trigger insulin resistance and cravings",
	},
	domain.TypeBlue: {
		good: "Quality sleep lowers cortisol and supports recovery",
		poor: "Sleep debt adds to your stress load, so prioritize recovery tonight",
	},
	domain.TypeGreen: {
		good: "Gut healing works best when you sleep enough",
		poor: "Too little sleep raises inflammatory markers",
	},
	domain.TypeYellow: {
		good: "Sleep quality supports hormonal balance through your cycle",
		poor: "Lack of sleep worsens hormonal symptoms",
	},
}

var nutritionTexts = map[domain.BodyType]card{
	domain.TypeRed: {
		title:    "Blood Sugar Pattern",
		why:      "Your eating pattern directly affects your insulin response",
		action:   "Make sure every meal has protein and fiber for a stable release",
		reminder: "Small consistent choices beat drastic changes",
	},
	domain.TypeBlue: {
		title:    "Stress-Eating Check",
		why:      "Irregular eating can trigger cortisol spikes",
		action:   "Keep consistent meal times to regulate your stress hormone",
		reminder: "Nourish your nervous system with regularity",
	},
	domain.TypeGreen: {
		title:    "Inflammation Check",
		why:      "The foods you choose can reduce or increase inflammation",
		action:   "Track how you feel 2-3 hours after eating",
		reminder: "Your body gives feedback - learn to listen",
	},
	domain.TypeYellow: {
		title:    "Hormonal Nutrition",
		why:      "Your nutritional needs change through your cycle",
		action:   "Notice cravings - they often signal what your body needs",
		reminder: "Honor your cycle, don't fight it",
	},
}

var movementTexts = map[domain.BodyType]goodPoor{
	domain.TypeRed: {
		good: "Post-meal movement is one of the best habits for metabolic health",
		poor: "Even a 10 minute walk after a meal can improve insulin sensitivity by 30%",
	},
	domain.TypeBlue: {
		good: "The right movement helps regulate cortisol naturally",
		poor: "Gentle movement can be a powerful stress relief",
	},
	domain.TypeGreen: {
		good: "Consistent movement supports lymphatic drainage and reduces inflammation",
		poor: "Low-impact movement still benefits your gut-immune system",
	},
	domain.TypeYellow: {
		good: "Movement aligned with your cycle phase optimizes your hormonal response",
		poor: "Listen to your energy - even gentle stretching counts",
	},
}

var defaultTexts = map[domain.BodyType]card{
	domain.TypeRed: {
		title:    "Your Daily Focus",
		why:      "Metabolic health is built from small consistent actions",
		action:   "Today: log your meals and notice energy patterns",
		reminder: "Progress is not about perfect, it is about consistent",
	},
	domain.TypeBlue: {
		title:    "Stress Check-In",
		why:      "Managing stress is the core of your health journey",
		action:   "Take 5 minutes for breathwork or journaling today",
		reminder: "Calm nervous system = healthy body",
	},
	domain.TypeGreen: {
		title:    "Inflammation Awareness",
		why:      "Healing your gut and reducing inflammation is a journey, not a sprint",
		action:   "Notice your energy, digestion and physical comfort today",
		reminder: "Your body is always communicating - practice listening",
	},
	domain.TypeYellow: {
		title:    "Cycle Awareness",
		why:      "Understanding your hormonal patterns gives you control and compassion",
		action:   "Track your cycle phase and adjust expectations accordingly",
		reminder: "Honor where you are in your cycle today",
	},
}

var nextWeekFocus = map[domain.BodyType]string{
	domain.TypeRed:    "Focus on post-meal movement and blood sugar stability",
	domain.TypeBlue:   "Priority: sleep quality and stress management",
	domain.TypeGreen:  "Continue anti-inflammatory nutrition and gut support",
	domain.TypeYellow: "Track cycle patterns and honor hormonal needs",
}
