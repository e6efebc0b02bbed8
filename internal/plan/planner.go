// internal/plan/planner.go
package plan

import (
	"math"
	"sort"

	"fitness-coach/internal/catalog"
	"fitness-coach/internal/models"
)

// DaysFromWeeklyHours maps available weekly hours to training days.
// Monotonic non-decreasing over its domain.
func DaysFromWeeklyHours(hours float64) int {
	switch {
	case hours <= 1:
		return 1
	case hours <= 2:
		return 2
	case hours <= 4:
		return 3
	case hours <= 6:
		return 4
	default:
		return 5
	}
}

// GoalToFocus maps a goal to the ordered focus tags used to score
// exercises. Unrecognized goals fall back to general training.
func GoalToFocus(goal string) []string {
	switch goal {
	case "Weight loss":
		return []string{"fat_loss", "general"}
	case "Muscle gain":
		return []string{"hypertrophy", "strength"}
	case "General fitness":
		return []string{"general", "strength", "endurance"}
	case "Endurance":
		return []string{"endurance"}
	case "Flexibility":
		return []string{"flexibility", "mobility", "recovery"}
	default:
		return []string{"general"}
	}
}

type scoredExercise struct {
	catalog.Exercise
	score int
}

// BuildWeeklyPlan computes the deterministic weekly schedule for a
// validated profile. Pure: same input always yields identical output.
func BuildWeeklyPlan(goal string, weeklyHours float64, equipment []string) models.WeeklyPlan {
	days := DaysFromWeeklyHours(weeklyHours)
	focus := GoalToFocus(goal)

	owned := make(map[string]bool, len(equipment))
	for _, eq := range equipment {
		owned[eq] = true
	}
	focusSet := make(map[string]bool, len(focus))
	for _, f := range focus {
		focusSet[f] = true
	}

	var scored []scoredExercise
	for _, ex := range catalog.Exercises() {
		usable := false
		for _, eq := range ex.Equipment {
			if owned[eq] {
				usable = true
				break
			}
		}
		if !usable {
			continue
		}
		score := 0
		for _, f := range ex.Focus {
			if focusSet[f] {
				score += 2
			}
		}
		scored = append(scored, scoredExercise{Exercise: ex, score: score})
	}
	// Ties keep catalog order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	sessionMinutes := clamp(int(math.Round(weeklyHours*60/float64(days))), 20, 75)

	cardio := focusSet["fat_loss"] || focusSet["endurance"]
	finisher := "Core + stretch cooldown"
	if cardio {
		finisher = "5–10 min easy cardio cooldown"
	}

	sessions := make([]models.PlanSession, 0, days)
	for i := 0; i < days; i++ {
		// Rotating window over the scored list; short windows just mean a
		// shorter session.
		window := sliceWindow(scored, i*3, i*3+6)
		main := make([]string, 0, 4)
		for _, ex := range window {
			if len(main) == 4 {
				break
			}
			main = append(main, ex.Name)
		}
		sessions = append(sessions, models.PlanSession{
			Day:             i + 1,
			DurationMinutes: sessionMinutes,
			Warmup:          "5–10 min dynamic warm-up",
			Main:            main,
			Finisher:        finisher,
		})
	}

	return models.WeeklyPlan{
		Meta:     models.PlanMeta{Days: days, SessionMinutes: sessionMinutes, Focus: focus},
		Sessions: sessions,
	}
}

func sliceWindow(s []scoredExercise, lo, hi int) []scoredExercise {
	if lo > len(s) {
		lo = len(s)
	}
	if hi > len(s) {
		hi = len(s)
	}
	return s[lo:hi]
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
