// internal/catalog/catalog.go
package catalog

// Exercise is a single catalog entry. Equipment lists what the exercise
// needs; Focus lists the training categories it serves.
type Exercise struct {
	Name      string   `json:"name"`
	Equipment []string `json:"equipment"`
	Focus     []string `json:"focus"`
}

var goals = []string{
	"Weight loss",
	"Muscle gain",
	"General fitness",
	"Endurance",
	"Flexibility",
}

var equipment = []string{
	"Treadmills",
	"Spin bikes",
	"Dumbbells",
	"Resistance bands",
	"Ellipticals",
	"Home gym",
	"Kettlebells",
	"Yoga mats",
}

var exercises = []Exercise{
	{Name: "Treadmill brisk walk (incline)", Equipment: []string{"Treadmills"}, Focus: []string{"fat_loss", "endurance"}},
	{Name: "Treadmill intervals", Equipment: []string{"Treadmills"}, Focus: []string{"fat_loss", "endurance"}},
	{Name: "Spin bike steady ride", Equipment: []string{"Spin bikes"}, Focus: []string{"endurance", "general"}},
	{Name: "Spin bike HIIT sprints", Equipment: []string{"Spin bikes"}, Focus: []string{"fat_loss", "endurance"}},

	{Name: "Dumbbell goblet squat", Equipment: []string{"Dumbbells"}, Focus: []string{"strength", "hypertrophy", "general"}},
	{Name: "Dumbbell bench/floor press", Equipment: []string{"Dumbbells"}, Focus: []string{"strength", "hypertrophy"}},
	{Name: "Dumbbell one-arm row", Equipment: []string{"Dumbbells"}, Focus: []string{"strength", "hypertrophy"}},
	{Name: "Dumbbell shoulder press", Equipment: []string{"Dumbbells"}, Focus: []string{"strength", "hypertrophy"}},

	{Name: "Resistance band rows", Equipment: []string{"Resistance bands"}, Focus: []string{"strength", "general"}},
	{Name: "Resistance band glute bridges", Equipment: []string{"Resistance bands"}, Focus: []string{"strength", "general"}},

	{Name: "Kettlebell deadlift", Equipment: []string{"Kettlebells"}, Focus: []string{"strength", "general"}},
	{Name: "Kettlebell swings", Equipment: []string{"Kettlebells"}, Focus: []string{"fat_loss", "endurance"}},

	{Name: "Yoga mobility flow", Equipment: []string{"Yoga mats"}, Focus: []string{"mobility", "flexibility", "recovery"}},
	{Name: "Core: plank variations", Equipment: []string{"Yoga mats"}, Focus: []string{"general", "strength"}},

	// Home gym = assumed cables/machine options
	{Name: "Cable lat pulldown / assisted pull", Equipment: []string{"Home gym"}, Focus: []string{"strength", "hypertrophy"}},
	{Name: "Leg press (machine)", Equipment: []string{"Home gym"}, Focus: []string{"strength", "hypertrophy"}},
	{Name: "Chest press (machine)", Equipment: []string{"Home gym"}, Focus: []string{"strength", "hypertrophy"}},

	{Name: "Elliptical steady cardio", Equipment: []string{"Ellipticals"}, Focus: []string{"fat_loss", "endurance"}},
}

// Goals returns the ordered list of selectable fitness goals.
func Goals() []string {
	out := make([]string, len(goals))
	copy(out, goals)
	return out
}

// Equipment returns the ordered list of selectable equipment options.
func Equipment() []string {
	out := make([]string, len(equipment))
	copy(out, equipment)
	return out
}

// Exercises returns the full exercise library in catalog order.
func Exercises() []Exercise {
	out := make([]Exercise, len(exercises))
	copy(out, exercises)
	return out
}

// IsValidGoal reports whether name is exactly one of the catalog goals.
// Matching is case-sensitive.
func IsValidGoal(name string) bool {
	for _, g := range goals {
		if g == name {
			return true
		}
	}
	return false
}

// IsValidEquipment reports whether name is exactly one of the catalog
// equipment options. Matching is case-sensitive.
func IsValidEquipment(name string) bool {
	for _, e := range equipment {
		if e == name {
			return true
		}
	}
	return false
}
