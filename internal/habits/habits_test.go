package habits

import (
	"testing"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	c, err := LoadCatalog()
	require.NoError(t, err)
	assert.Equal(t, 34, c.Len())

	for _, typ := range domain.CanonicalTypes {
		for _, cat := range Categories {
			assert.NotEmpty(t, c.Pool(typ, cat), "%s/%s has no habits", typ, cat)
			assert.NotEqual(t, DefaultFocusMessage, c.FocusMessage(cat, typ), "%s/%s has no focus message", typ, cat)
		}
	}
}

func TestParseCatalogRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "types: [unclosed"},
		{name: "missing type", yaml: "types:\n  red: {}\n"},
		{
			name: "duplicate id",
			yaml: `types:
  red: {sleep: [{id: x}], nutrition: [{id: x}]}
  blue: {}
  green: {}
  yellow: {}
`,
		},
		{
			name: "unknown category",
			yaml: `types:
  red: {naps: [{id: x}]}
  blue: {}
  green: {}
  yellow: {}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLookupHabitByID(t *testing.T) {
	t.Parallel()

	c := MustLoadCatalog()

	e, ok := c.LookupHabitByID("recovery_blue_1")
	require.True(t, ok)
	assert.Equal(t, "Breathwork practice", e.Title)
	assert.Equal(t, CategoryRecovery, e.Category)
	assert.Equal(t, domain.TypeBlue, e.BodyType)

	e, ok = c.LookupHabitByID("nutrition_red_1")
	require.True(t, ok)
	assert.Equal(t, "25-30g protein", e.Target)

	_, ok = c.LookupHabitByID("sleep_purple_1")
	assert.False(t, ok)
}

func TestSelectDailyHabitsRotatesMainCategory(t *testing.T) {
	t.Parallel()

	s := NewSelector(MustLoadCatalog(), 42)
	for day := 0; day < 12; day++ {
		plan := s.SelectDailyHabits(domain.TypeGreen, "2024-01-14", day, Progress{})
		want := Categories[day%len(Categories)]

		assert.Equal(t, want, plan.FocusCategory)
		require.NotNil(t, plan.MainHabit)
		assert.Equal(t, want, plan.MainHabit.Category)
		assert.Equal(t, PriorityMain, plan.MainHabit.Priority)
		require.NotNil(t, plan.SecondaryHabit)
		assert.NotEqual(t, want, plan.SecondaryHabit.Category)
		assert.Equal(t, PrioritySecondary, plan.SecondaryHabit.Priority)
		assert.Nil(t, plan.RiskHabit)
		assert.Equal(t, "2024-01-14", plan.Date)

		entry, ok := s.Catalog().LookupHabitByID(plan.MainHabit.ID)
		require.True(t, ok)
		assert.Equal(t, domain.TypeGreen, entry.BodyType)
	}
}

func TestSelectDailyHabitsNegativeDayIndex(t *testing.T) {
	t.Parallel()

	s := NewSelector(MustLoadCatalog(), 7)
	plan := s.SelectDailyHabits(domain.TypeRed, "2024-01-14", -1, Progress{})
	assert.Equal(t, CategoryEmotional, plan.FocusCategory)
}

func TestSelectDailyHabitsIsReproducibleWithSeed(t *testing.T) {
	t.Parallel()

	a := NewSelector(MustLoadCatalog(), 99)
	b := NewSelector(MustLoadCatalog(), 99)
	for day := 0; day < 10; day++ {
		assert.Equal(t,
			a.SelectDailyHabits(domain.TypeBlue, "2024-01-14", day, Progress{}),
			b.SelectDailyHabits(domain.TypeBlue, "2024-01-14", day, Progress{}),
		)
	}
}

func TestSelectDailyHabitsFallsBackToDefaultLibrary(t *testing.T) {
	t.Parallel()

	s := NewSelector(MustLoadCatalog(), 3)
	plan := s.SelectDailyHabits(domain.TypeWhite, "2024-01-14", 0, Progress{})

	require.NotNil(t, plan.MainHabit)
	entry, ok := s.Catalog().LookupHabitByID(plan.MainHabit.ID)
	require.True(t, ok)
	assert.Equal(t, domain.DefaultType, entry.BodyType)
	assert.Equal(t, DefaultFocusMessage, plan.FocusMessage)

	plan = s.SelectDailyHabits("", "2024-01-14", 0, Progress{})
	assert.Equal(t, domain.DefaultType, plan.BodyType)
	assert.Equal(t, "Today, focus on sleep quality for a metabolic reset", plan.FocusMessage)
}

func TestRiskFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		progress Progress
		wantType string
	}{
		{name: "unknown progress", progress: Progress{}},
		{name: "healthy", progress: Progress{SleepConsistency: domain.Ptr(85), DaysLogged: domain.Ptr(7)}},
		{name: "low consistency", progress: Progress{SleepConsistency: domain.Ptr(69), DaysLogged: domain.Ptr(7)}, wantType: "warning"},
		{name: "boundary consistency", progress: Progress{SleepConsistency: domain.Ptr(70)}},
		{name: "few days logged", progress: Progress{DaysLogged: domain.Ptr(2)}, wantType: "reminder"},
		{name: "no days logged", progress: Progress{DaysLogged: domain.Ptr(0)}, wantType: "reminder"},
		{name: "sleep wins over tracking", progress: Progress{SleepConsistency: domain.Ptr(40), DaysLogged: domain.Ptr(1)}, wantType: "warning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RiskFor(tt.progress)
			if tt.wantType == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
		})
	}
}
