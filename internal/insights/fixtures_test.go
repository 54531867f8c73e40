package insights

import (
	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

func day(date string, sleep float64, quality domain.SleepQuality, energy domain.Energy, movement int, stress domain.Stress, meals bool, habits int) domain.DailyLog {
	return domain.DailyLog{
		Date:            date,
		SleepHours:      domain.Ptr(sleep),
		SleepQuality:    quality,
		EnergyLevel:     energy,
		MovementMinutes: domain.Ptr(movement),
		StressLevel:     stress,
		MealsLogged:     domain.Ptr(meals),
		HabitsCompleted: domain.Ptr(habits),
	}
}

// sampleWeek runs Sunday 2024-01-14 through Saturday 2024-01-20
func sampleWeek() []domain.DailyLog {
	return []domain.DailyLog{
		day("2024-01-14", 7, domain.SleepGood, domain.EnergyHigh, 25, domain.StressLow, true, 2),
		day("2024-01-15", 6.5, domain.SleepFair, domain.EnergyMedium, 15, domain.StressMedium, true, 1),
		day("2024-01-16", 8, domain.SleepGood, domain.EnergyHigh, 40, domain.StressLow, true, 3),
		day("2024-01-17", 7.5, domain.SleepGood, domain.EnergyHigh, 30, domain.StressLow, false, 2),
		day("2024-01-18", 6, domain.SleepPoor, domain.EnergyLow, 10, domain.StressHigh, true, 1),
		day("2024-01-19", 7, domain.SleepFair, domain.EnergyMedium, 20, domain.StressMedium, true, 2),
		day("2024-01-20", 7.5, domain.SleepGood, domain.EnergyHigh, 35, domain.StressLow, true, 2),
	}
}
