package validate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"run-coach-be/pkg/coach/profile"
)

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"male", "male", true},
		{"Man", "male", true},
		{"m", "male", true},
		{"kille", "male", true},
		{"female", "female", true},
		{"Tjej", "female", true},
		{"dam", "female", true},
		{"non-binary", "other", true},
		{"annan", "other", true},
		{"robot", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Normalize(profile.FieldGender, tt.in)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeBirthYear(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOk bool
	}{
		{"1991", 1991, true},
		{"1940", 1940, true},
		{"2015", 2015, true},
		{"1939", 0, false},
		{"2016", 0, false},
		{"ninety-one", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := Normalize(profile.FieldBirthYear, tt.in)
		if ok != tt.wantOk {
			t.Errorf("Normalize(birthYear, %q) ok = %v, want %v", tt.in, ok, tt.wantOk)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Normalize(birthYear, %q) = %v, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"beginner", "beginner", true},
		{"Nybörjare", "beginner", true},
		{"intermediate", "intermediate", true},
		{"medel", "intermediate", true},
		{"Advanced", "advanced", true},
		{"erfaren", "advanced", true},
		{"pro", "", false},
	}

	for _, tt := range tests {
		got, ok := Normalize(profile.FieldLevel, tt.in)
		if ok != tt.wantOk {
			t.Errorf("Normalize(level, %q) ok = %v, want %v", tt.in, ok, tt.wantOk)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Normalize(level, %q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeWeeklySessions(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOk bool
	}{
		{"1", 1, true},
		{"4", 4, true},
		{"14", 14, true},
		{"0", 0, false},
		{"15", 0, false},
		{"three", 0, false},
	}

	for _, tt := range tests {
		got, ok := Normalize(profile.FieldWeeklySessions, tt.in)
		if ok != tt.wantOk {
			t.Errorf("Normalize(weeklySessions, %q) ok = %v, want %v", tt.in, ok, tt.wantOk)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Normalize(weeklySessions, %q) = %v, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalize5KTime(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"19:52", "00:19:52", true},
		{"9:52", "00:09:52", true},
		{"1:19:52", "01:19:52", true},
		{"01:19:52", "01:19:52", true},
		{" 22:30 ", "00:22:30", true},
		{"19:5", "", false},
		{"62:00", "", false},
		{"19.52", "", false},
		{"fast", "", false},
	}

	for _, tt := range tests {
		got, ok := Normalize(profile.FieldCurrent5KTime, tt.in)
		if ok != tt.wantOk {
			t.Errorf("Normalize(current5kTime, %q) ok = %v, want %v", tt.in, ok, tt.wantOk)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Normalize(current5kTime, %q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	got, ok := Normalize(profile.FieldName, "  Anna  ")
	if !ok || got != "Anna" {
		t.Errorf("got %v, %v; want Anna, true", got, ok)
	}

	long := strings.Repeat("a", 80)
	got, ok = Normalize(profile.FieldName, long)
	if !ok || len(got.(string)) != 50 {
		t.Errorf("long name not truncated to 50: got %d chars", len(got.(string)))
	}

	if _, ok := Normalize(profile.FieldName, "   "); ok {
		t.Error("blank name accepted")
	}

	// Truncation counts runes so a multi-byte character is never split.
	longSwedish := strings.Repeat("ö", 60)
	got, ok = Normalize(profile.FieldName, longSwedish)
	if !ok {
		t.Fatal("long multi-byte name rejected")
	}
	if s := got.(string); !utf8.ValidString(s) || utf8.RuneCountInString(s) != 50 {
		t.Errorf("multi-byte name truncated badly: %d runes, valid=%v", utf8.RuneCountInString(s), utf8.ValidString(s))
	}
}

func TestNormalizeRaceFields(t *testing.T) {
	if v, ok := Normalize(profile.FieldRaceComingUp, "Ja"); !ok || v != true {
		t.Errorf("raceComingUp Ja = %v, %v", v, ok)
	}
	if v, ok := Normalize(profile.FieldRaceComingUp, "no"); !ok || v != false {
		t.Errorf("raceComingUp no = %v, %v", v, ok)
	}
	if _, ok := Normalize(profile.FieldRaceComingUp, "maybe"); ok {
		t.Error("raceComingUp maybe accepted")
	}

	if v, ok := Normalize(profile.FieldRaceDistance, "21K"); !ok || v != "21k" {
		t.Errorf("raceDistance 21K = %v, %v", v, ok)
	}
	if _, ok := Normalize(profile.FieldRaceDistance, "marathon"); ok {
		t.Error("raceDistance marathon accepted")
	}

	if v, ok := Normalize(profile.FieldRaceDate, "2026-10-04"); !ok || v != "2026-10-04" {
		t.Errorf("raceDate = %v, %v", v, ok)
	}
	if _, ok := Normalize(profile.FieldRaceDate, "next sunday"); ok {
		t.Error("raceDate free text accepted")
	}
}

func TestNormalizeAgentAndLanguage(t *testing.T) {
	for _, agent := range profile.Agents {
		if v, ok := Normalize(profile.FieldAgent, agent); !ok || v != agent {
			t.Errorf("agent %q rejected", agent)
		}
	}
	if _, ok := Normalize(profile.FieldAgent, "physio"); ok {
		t.Error("unknown agent accepted")
	}

	if v, ok := Normalize(profile.FieldLanguage, "Swedish"); !ok || v != "swedish" {
		t.Errorf("language Swedish = %v, %v", v, ok)
	}
	if _, ok := Normalize(profile.FieldLanguage, "german"); ok {
		t.Error("unsupported language accepted")
	}
}

func TestSanitizePatch(t *testing.T) {
	raw := map[string]any{
		"current5kTime":  "21:30",
		"birthYear":      float64(1991), // JSON numbers arrive as float64
		"weeklySessions": float64(4),
		"gender":         "tjej",
		"level":          "alien",          // invalid value: dropped
		"favoriteColor":  "blue",           // unknown key: dropped
		"raceComingUp":   true,             // JSON bool round-trips
		"injuryNotes":    map[string]any{}, // unsupported type: dropped
	}

	patch := SanitizePatch(raw)

	if got := patch[profile.FieldCurrent5KTime]; got != "00:21:30" {
		t.Errorf("current5kTime = %v, want 00:21:30", got)
	}
	if got := patch[profile.FieldBirthYear]; got != 1991 {
		t.Errorf("birthYear = %v, want 1991", got)
	}
	if got := patch[profile.FieldWeeklySessions]; got != 4 {
		t.Errorf("weeklySessions = %v, want 4", got)
	}
	if got := patch[profile.FieldGender]; got != "female" {
		t.Errorf("gender = %v, want female", got)
	}
	if got := patch[profile.FieldRaceComingUp]; got != true {
		t.Errorf("raceComingUp = %v, want true", got)
	}
	if _, ok := patch[profile.FieldLevel]; ok {
		t.Error("invalid level survived sanitization")
	}
	if _, ok := patch[profile.FieldKey("favoriteColor")]; ok {
		t.Error("unknown key survived sanitization")
	}
	if _, ok := patch[profile.FieldInjuryNotes]; ok {
		t.Error("non-scalar value survived sanitization")
	}
}
