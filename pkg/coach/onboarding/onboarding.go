// Package onboarding defines the questionnaire that collects the required
// profile fields, one per turn, in a fixed priority order.
package onboarding

import "run-coach-be/pkg/coach/profile"

// Step is one onboarding question. Chips are optional quick-answer choices
// rendered under the question bubble.
type Step struct {
	Key      profile.FieldKey
	Question string
	Chips    []string
}

// Steps in priority order. The order must match profile.RequiredFields.
var Steps = []Step{
	{Key: profile.FieldName, Question: "What should I call you?"},
	{Key: profile.FieldGender, Question: "What's your gender?", Chips: []string{"Male", "Female", "Other"}},
	{Key: profile.FieldBirthYear, Question: "What year were you born?"},
	{Key: profile.FieldLevel, Question: "How experienced are you?", Chips: []string{"Beginner", "Intermediate", "Advanced"}},
	{Key: profile.FieldWeeklySessions, Question: "How many times do you run per week?", Chips: []string{"2", "3", "4", "5"}},
	{Key: profile.FieldCurrent5KTime, Question: "What's your current 5K time?", Chips: []string{"19:30", "22:00", "25:00"}},
}

// CompletionMessage is typed out once the last required field lands.
const CompletionMessage = "Thanks! I’ve got everything I need. Want me to sketch your next week of training?"

// RetryMessage re-poses the pending question after a rejected answer.
const RetryMessage = "Hmm, that didn’t look valid. Try again."

// NextStep returns the question for the first required field the profile is
// still missing, or nil when onboarding is done.
func NextStep(p *profile.Profile) *Step {
	for i := range Steps {
		if !p.IsSet(Steps[i].Key) {
			return &Steps[i]
		}
	}
	return nil
}

// StepFor returns the step that collects the given field, or nil.
func StepFor(key profile.FieldKey) *Step {
	for i := range Steps {
		if Steps[i].Key == key {
			return &Steps[i]
		}
	}
	return nil
}
