// internal/flow/flow.go
package flow

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"fitness-coach/internal/catalog"
	"fitness-coach/internal/models"
)

// ShareEmailTrigger is the sentinel a client sends from DONE to start the
// email-share branch.
const ShareEmailTrigger = "__SHARE_EMAIL__"

// Closed validation ranges, inclusive at both ends.
const (
	MinAge    = 10
	MaxAge    = 90
	MinWeight = 25.0
	MaxWeight = 350.0
	MinHeight = 120.0
	MaxHeight = 230.0
	MinHours  = 0.5
	MaxHours  = 20.0
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Input is one turn of user input after transport decoding. Message is the
// free-typed text; Selection comes from buttons.
type Input struct {
	Message   string
	Selection models.Selection
}

// Result reports whether the input was accepted. A rejected input never
// mutated the session; the caller re-prompts the same stage.
type Result struct {
	OK    bool
	Error string
}

func ok() Result             { return Result{OK: true} }
func fail(msg string) Result { return Result{Error: msg} }

// Prompt is the assistant's next question for a session.
type Prompt struct {
	Text string
	UI   *models.UIHint
}

func goalPrompt(text string) Prompt {
	return Prompt{
		Text: text,
		UI:   &models.UIHint{Type: models.UISingleSelect, Options: catalog.Goals()},
	}
}

// NextPrompt returns the question to display for the session's current
// stage. It is a pure function of the stage and may be called repeatedly.
// An unknown stage falls back to a reset prompt identical to GOAL's.
func NextPrompt(s *models.Session) Prompt {
	switch s.Stage {
	case models.StageGoal:
		return goalPrompt("Select your primary fitness goal:")
	case models.StageAge:
		return Prompt{Text: "What is your age (years)?"}
	case models.StageWeight:
		return Prompt{Text: "What is your weight (kg)?"}
	case models.StageHeight:
		return Prompt{Text: "What is your height (cm)?"}
	case models.StageHours:
		return Prompt{Text: "How many hours per week can you dedicate to workouts? (0.5–20)"}
	case models.StageEquipment:
		return Prompt{
			Text: "Which equipment do you have access to? (You can select multiple.)",
			UI:   &models.UIHint{Type: models.UIMultiSelect, Options: catalog.Equipment()},
		}
	case models.StagePlan:
		return Prompt{Text: "Generating your plan now…"}
	case models.StageEmailShare:
		return Prompt{Text: "Please enter the email address where you'd like to receive your plan link."}
	case models.StageDone, models.StageEmailSending:
		return Prompt{Text: "Your plan is ready. You can share it via email at any time."}
	default:
		return goalPrompt("Let's start again. Select your primary fitness goal:")
	}
}

// ApplyInput validates in against the session's current stage and, on
// success, records the answer and advances the stage. On failure the
// session is left untouched.
func ApplyInput(s *models.Session, in Input) Result {
	switch s.Stage {
	case models.StageGoal:
		chosen := in.Selection.Single()
		if chosen == "" {
			chosen = in.Message
		}
		if !catalog.IsValidGoal(chosen) {
			return fail("Please select one of the provided goals.")
		}
		s.Profile.Goal = chosen
		s.Stage = models.StageAge
		return ok()

	case models.StageAge:
		n, valid := looseNumber(in.Message)
		if !valid || n != math.Trunc(n) || n < MinAge || n > MaxAge {
			return fail("Please enter a valid age (10–90).")
		}
		s.Profile.Age = int(n)
		s.Stage = models.StageWeight
		return ok()

	case models.StageWeight:
		n, valid := looseNumber(in.Message)
		if !valid || n < MinWeight || n > MaxWeight {
			return fail("Please enter a valid weight in kg (25–350).")
		}
		s.Profile.Weight = n
		s.Stage = models.StageHeight
		return ok()

	case models.StageHeight:
		n, valid := looseNumber(in.Message)
		if !valid || n < MinHeight || n > MaxHeight {
			return fail("Please enter a valid height in cm (120–230).")
		}
		s.Profile.Height = n
		s.Stage = models.StageHours
		return ok()

	case models.StageHours:
		n, valid := looseNumber(in.Message)
		if !valid || n < MinHours || n > MaxHours {
			return fail("Please enter weekly hours (0.5–20).")
		}
		s.Profile.WeeklyHours = n
		s.Stage = models.StageEquipment
		return ok()

	case models.StageEquipment:
		list := in.Selection.Values
		if !in.Selection.Set {
			for _, part := range strings.Split(in.Message, ",") {
				if part = strings.TrimSpace(part); part != "" {
					list = append(list, part)
				}
			}
		}
		var valid []string
		seen := make(map[string]bool)
		for _, item := range list {
			if catalog.IsValidEquipment(item) && !seen[item] {
				seen[item] = true
				valid = append(valid, item)
			}
		}
		if len(valid) == 0 {
			return fail("Please select at least one equipment option.")
		}
		s.Profile.Equipment = valid
		s.Stage = models.StagePlan
		return ok()

	case models.StageDone:
		if in.Selection.Single() == ShareEmailTrigger || in.Message == ShareEmailTrigger {
			s.Stage = models.StageEmailShare
			return ok()
		}
		return fail("Invalid state.")

	case models.StageEmailShare:
		email := strings.TrimSpace(in.Message)
		if email == "" {
			return fail("Please enter an email address.")
		}
		if !emailRe.MatchString(email) {
			return fail("Please enter a valid email address.")
		}
		s.Profile.ShareEmail = email
		s.Stage = models.StageEmailSending
		return ok()
	}

	return fail("Invalid state.")
}

// looseNumber trims and parses free-typed text as a float. The loose
// coercion lets the same validator accept typed text and machine-sent
// numeric values.
func looseNumber(raw string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}
