// Package validate normalizes raw answer strings into typed profile values.
// The accept/reject boundaries here are the single source of truth for what
// counts as a valid onboarding answer.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"run-coach-be/pkg/coach/profile"
)

const (
	MinBirthYear = 1940
	MaxBirthYear = 2015

	MinWeeklySessions = 1
	MaxWeeklySessions = 14

	maxNameLength = 50
)

var (
	// MM:SS (minutes may be a single digit, seconds always two)
	reMMSS = regexp.MustCompile(`^[0-5]?\d:[0-5]\d$`)
	// H:MM:SS or HH:MM:SS
	reHMMSS = regexp.MustCompile(`^\d{1,2}:[0-5]?\d:[0-5]\d$`)
	// Race dates arrive as ISO dates from the model.
	reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var genderSynonyms = map[string]string{
	"male": "male", "man": "male", "m": "male", "kille": "male", "pojke": "male", "herr": "male", "h": "male",
	"female": "female", "woman": "female", "f": "female", "tjej": "female", "flicka": "female", "dam": "female", "d": "female",
	"other": "other", "annan": "other", "övrigt": "other", "non-binary": "other", "nb": "other",
}

var levelSynonyms = map[string]string{
	"beginner": "beginner", "nybörjare": "beginner",
	"intermediate": "intermediate", "medel": "intermediate", "medelvan": "intermediate",
	"advanced": "advanced", "avancerad": "advanced", "erfaren": "advanced",
}

var raceDistances = map[string]bool{
	"5k": true, "10k": true, "21k": true, "42k": true, "trail": true, "other": true,
}

// Normalize parses and canonicalizes a raw answer for the given field.
// It returns the typed value (string, int or bool) and true on success,
// or nil and false when the answer is rejected. Pure: never errors.
func Normalize(key profile.FieldKey, raw string) (any, bool) {
	s := strings.TrimSpace(raw)

	switch key {
	case profile.FieldName:
		if s == "" {
			return nil, false
		}
		if r := []rune(s); len(r) > maxNameLength {
			s = string(r[:maxNameLength])
		}
		return s, true

	case profile.FieldGender:
		if v, ok := genderSynonyms[strings.ToLower(s)]; ok {
			return v, true
		}
		return nil, false

	case profile.FieldBirthYear:
		y, err := strconv.Atoi(s)
		if err != nil || y < MinBirthYear || y > MaxBirthYear {
			return nil, false
		}
		return y, true

	case profile.FieldLevel:
		if v, ok := levelSynonyms[strings.ToLower(s)]; ok {
			return v, true
		}
		return nil, false

	case profile.FieldWeeklySessions:
		n, err := strconv.Atoi(s)
		if err != nil || n < MinWeeklySessions || n > MaxWeeklySessions {
			return nil, false
		}
		return n, true

	case profile.FieldCurrent5KTime:
		return normalizeTime(s)

	case profile.FieldLanguage:
		l := strings.ToLower(s)
		if l == profile.LanguageEnglish || l == profile.LanguageSwedish {
			return l, true
		}
		return nil, false

	case profile.FieldAgent:
		a := strings.ToLower(s)
		for _, agent := range profile.Agents {
			if a == agent {
				return a, true
			}
		}
		return nil, false

	case profile.FieldRaceDistance:
		d := strings.ToLower(s)
		if raceDistances[d] {
			return d, true
		}
		return nil, false

	case profile.FieldRaceDate:
		if reISODate.MatchString(s) {
			return s, true
		}
		return nil, false

	case profile.FieldRaceComingUp:
		switch strings.ToLower(s) {
		case "true", "yes", "ja", "y":
			return true, true
		case "false", "no", "nej", "n":
			return false, true
		}
		return nil, false

	case profile.FieldInjuryNotes:
		if s == "" {
			return nil, false
		}
		return s, true
	}

	return nil, false
}

// normalizeTime canonicalizes a 5K time to "HH:MM:SS". "M:SS"/"MM:SS" inputs
// are prefixed with "00:", hour forms are zero-padded per segment.
func normalizeTime(raw string) (any, bool) {
	t := strings.Join(strings.Fields(raw), "")
	if reMMSS.MatchString(t) {
		if len(t) == 4 {
			t = "0" + t
		}
		return "00:" + t, true
	}
	if reHMMSS.MatchString(t) {
		parts := strings.Split(t, ":")
		for i, part := range parts {
			if len(part) == 1 {
				parts[i] = "0" + part
			}
		}
		return strings.Join(parts, ":"), true
	}
	return nil, false
}

// SanitizePatch filters a raw model-proposed profile update field by field.
// Unknown keys and values that fail normalization are dropped individually;
// the surviving fields come back as a typed patch. Numeric JSON values are
// accepted for the integer fields (the model sends numbers, not strings).
func SanitizePatch(raw map[string]any) profile.Patch {
	patch := profile.Patch{}
	for k, v := range raw {
		key := profile.FieldKey(k)
		var s string
		switch value := v.(type) {
		case string:
			s = value
		case float64:
			s = strconv.Itoa(int(value))
		case bool:
			s = strconv.FormatBool(value)
		default:
			continue
		}
		if normalized, ok := Normalize(key, s); ok {
			patch[key] = normalized
		}
	}
	return patch
}
