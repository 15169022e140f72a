package onboarding

import (
	"testing"

	"run-coach-be/pkg/coach/profile"
)

func TestStepsMatchRequiredFields(t *testing.T) {
	if len(Steps) != len(profile.RequiredFields) {
		t.Fatalf("len(Steps) = %d, want %d", len(Steps), len(profile.RequiredFields))
	}
	for i, key := range profile.RequiredFields {
		if Steps[i].Key != key {
			t.Errorf("Steps[%d].Key = %s, want %s", i, Steps[i].Key, key)
		}
	}
}

func TestNextStep(t *testing.T) {
	p := profile.New()

	step := NextStep(p)
	if step == nil || step.Key != profile.FieldName {
		t.Fatalf("first step = %v, want name", step)
	}

	p.Set(profile.FieldName, "Anna")
	step = NextStep(p)
	if step == nil || step.Key != profile.FieldGender {
		t.Fatalf("second step = %v, want gender", step)
	}

	// Filling a later field out of order does not change the walk.
	p.Set(profile.FieldCurrent5KTime, "00:22:30")
	step = NextStep(p)
	if step == nil || step.Key != profile.FieldGender {
		t.Fatalf("step after out-of-order fill = %v, want gender", step)
	}

	p.Set(profile.FieldGender, "female")
	p.Set(profile.FieldBirthYear, 1991)
	p.Set(profile.FieldLevel, "intermediate")
	p.Set(profile.FieldWeeklySessions, 4)
	if step := NextStep(p); step != nil {
		t.Errorf("NextStep on complete profile = %v, want nil", step)
	}
}

func TestStepFor(t *testing.T) {
	step := StepFor(profile.FieldLevel)
	if step == nil {
		t.Fatal("StepFor(level) = nil")
	}
	if len(step.Chips) != 3 {
		t.Errorf("level chips = %v", step.Chips)
	}
	if StepFor(profile.FieldInjuryNotes) != nil {
		t.Error("StepFor returned a step for a non-onboarding field")
	}
}
