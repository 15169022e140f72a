// Package infer extracts candidate profile values from free-form user text.
// Best effort only: every hit is re-checked through validate before being
// offered, and the orchestrator never lets an inferred value overwrite a
// field the user already answered.
package infer

import (
	"regexp"
	"strconv"
	"strings"

	"run-coach-be/pkg/coach/profile"
	"run-coach-be/pkg/coach/validate"
)

var (
	// MM:SS or H:MM:SS anywhere in the text.
	reTime = regexp.MustCompile(`\b(\d{1,2}):([0-5]\d)(:[0-5]\d)?\b`)
	// Small integer next to a frequency keyword (English or Swedish).
	reWeekly = regexp.MustCompile(`\b(\d{1,2})\s*(pass|pass/v|pass i veckan|runs|times per week|per week|veckor|vecka)\b`)
	// 4-digit year inside the plausible birth-year window.
	reBirthYear = regexp.MustCompile(`\b(19[4-9]\d|200\d|201[0-5])\b`)

	reGenderMale   = regexp.MustCompile(`\b(male|man|kille|pojke|herr)\b`)
	reGenderFemale = regexp.MustCompile(`\b(female|woman|tjej|flicka|dam)\b`)
	reGenderOther  = regexp.MustCompile(`\b(other|non-binary|nb|annan)\b`)
)

// FromText scans arbitrary user text and returns a patch containing only the
// fields it is confident about. Never errors, may return an empty patch.
func FromText(text string) profile.Patch {
	patch := profile.Patch{}
	if strings.TrimSpace(text) == "" {
		return patch
	}
	t := strings.ToLower(text)

	if m := reTime.FindString(t); m != "" {
		if v, ok := validate.Normalize(profile.FieldCurrent5KTime, m); ok {
			patch[profile.FieldCurrent5KTime] = v
		}
	}

	if m := reWeekly.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		if v, ok := validate.Normalize(profile.FieldWeeklySessions, strconv.Itoa(n)); ok {
			patch[profile.FieldWeeklySessions] = v
		}
	}

	if m := reBirthYear.FindString(t); m != "" {
		if v, ok := validate.Normalize(profile.FieldBirthYear, m); ok {
			patch[profile.FieldBirthYear] = v
		}
	}

	switch {
	case reGenderMale.MatchString(t):
		patch[profile.FieldGender] = "male"
	case reGenderFemale.MatchString(t):
		patch[profile.FieldGender] = "female"
	case reGenderOther.MatchString(t):
		patch[profile.FieldGender] = "other"
	}

	return patch
}
