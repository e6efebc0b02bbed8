// internal/plan/prompt.go
package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"fitness-coach/internal/models"
)

// SystemPrompt is the standing instruction set for the narrative generator.
func SystemPrompt() string {
	return strings.TrimSpace(`
You are an AI-Powered Personal Training Assistant designed to create personalized fitness plans through a chat-based conversational flow.

Rules:
- Ask only ONE question per turn.
- Follow the mandatory steps in order: Goal -> Age -> Weight -> Height -> Weekly hours -> Equipment -> Generate plan.
- Do not diagnose medical conditions.
- Keep outputs clear, structured, and safe.

When generating the final plan:
- Use the provided computed schedule JSON as the source of truth.
- Present the plan in a clean, email-ready layout.
- Include: Profile, Weekly schedule, Training guidelines, Nutrition tips, Recovery & rest.`)
}

// RenderUserPrompt builds the user message asking the generator to render
// the computed schedule as prose. The schedule JSON is the ground truth the
// output must not contradict.
func RenderUserPrompt(profile models.Profile, computed models.WeeklyPlan) string {
	scheduleJSON, err := json.MarshalIndent(computed, "", "  ")
	if err != nil {
		scheduleJSON = []byte("{}")
	}

	return strings.TrimSpace(fmt.Sprintf(`
Create a personalized fitness plan using this user profile and computed schedule.

USER PROFILE:
- Goal: %s
- Age: %d
- Weight: %g kg
- Height: %g cm
- Weekly time: %g hours
- Equipment: %s

COMPUTED SCHEDULE JSON (do not contradict it):
%s

Output must be in the style:
## 🎯 YOUR PROFILE
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
...
## 📋 X-DAY WEEKLY SCHEDULE
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
### Day 1: ...
...

IMPORTANT: For the WEEKLY SCHEDULE section, format each day as a flat list (not nested):
### Day 1:
- **Duration:** X minutes
- **Warm-up:** [warm-up description]
- **Main Workout:**
  - [exercise 1]
  - [exercise 2]
- **Finisher:** [finisher description]

Note: Duration, Warm-up, Main Workout, and Finisher must all be at the same indentation level (single dash). Only the exercises within Main Workout should be nested (double dash).

## 💡 TRAINING GUIDELINES
## 🍎 NUTRITION TIPS
## 😴 RECOVERY & REST

Add a short safety note: "If you have injuries or medical conditions, consult a professional."`,
		profile.Goal, profile.Age, profile.Weight, profile.Height, profile.WeeklyHours,
		strings.Join(profile.Equipment, ", "), scheduleJSON))
}

// LearningContextPrompt renders similar past sessions as style guidance for
// the generator. Returns "" when there is nothing to reference.
func LearningContextPrompt(similar []models.PlanRecord) string {
	if len(similar) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("REFERENCE PLANS FROM PAST USERS (for style & structure guidance only):\n")
	for i, rec := range similar {
		summary := rec.PlanText
		if len(summary) > 600 {
			summary = summary[:600]
		}
		fmt.Fprintf(&b, "\nExample %d:\nGoal: %s\nWeekly Hours: %g\nEquipment: %s\n\nPlan Summary:\n%s\n",
			i+1, rec.Goal, rec.WeeklyHours, strings.Join(rec.Equipment, ", "), summary)
	}
	b.WriteString("\nRules:\n- Do NOT copy text verbatim\n- Use these examples to improve clarity, balance, and structure")
	return b.String()
}
