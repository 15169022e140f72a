// Package profile holds the runner profile value type used by the
// conversation orchestrator. Persistence shapes live in internal/entity
// and internal/model; this package is pure domain state.
package profile

// FieldKey identifies a single profile attribute. The string values double
// as the JSON keys used on the wire (model profileUpdate blocks, REST DTOs).
type FieldKey string

const (
	FieldName           FieldKey = "name"
	FieldLanguage       FieldKey = "language"
	FieldGender         FieldKey = "gender"
	FieldBirthYear      FieldKey = "birthYear"
	FieldLevel          FieldKey = "level"
	FieldWeeklySessions FieldKey = "weeklySessions"
	FieldCurrent5KTime  FieldKey = "current5kTime"
	FieldInjuryNotes    FieldKey = "injuryNotes"
	FieldRaceComingUp   FieldKey = "raceComingUp"
	FieldRaceDate       FieldKey = "raceDate"
	FieldRaceDistance   FieldKey = "raceDistance"
	FieldAgent          FieldKey = "agent"
)

// RequiredFields is the fixed priority order onboarding walks through.
// Completeness is defined over exactly this set.
var RequiredFields = []FieldKey{
	FieldName,
	FieldGender,
	FieldBirthYear,
	FieldLevel,
	FieldWeeklySessions,
	FieldCurrent5KTime,
}

const (
	LanguageEnglish = "english"
	LanguageSwedish = "swedish"

	AgentCoach           = "coach"
	AgentRacePlanner     = "race-planner"
	AgentStrategist      = "strategist"
	AgentNutritionist    = "nutritionist"
	AgentInjuryAssistant = "injury-assistant"
)

// Agents lists the selectable coach roles.
var Agents = []string{AgentCoach, AgentRacePlanner, AgentStrategist, AgentNutritionist, AgentInjuryAssistant}

// Profile is one user's runner profile. Nil pointer means "not answered yet".
type Profile struct {
	Name                *string `json:"name"`
	Language            string  `json:"language"`
	Gender              *string `json:"gender"`
	BirthYear           *int    `json:"birthYear"`
	Level               *string `json:"level"`
	WeeklySessions      *int    `json:"weeklySessions"`
	Current5KTime       *string `json:"current5kTime"`
	InjuryNotes         *string `json:"injuryNotes"`
	RaceComingUp        *bool   `json:"raceComingUp"`
	RaceDate            *string `json:"raceDate"`
	RaceDistance        *string `json:"raceDistance"`
	Agent               string  `json:"agent"`
	ProfileComplete     bool    `json:"profileComplete"`
	ConversationSummary string  `json:"conversationSummary"`
}

// New returns an empty profile with defaults applied.
func New() *Profile {
	return &Profile{
		Language: LanguageEnglish,
		Agent:    AgentCoach,
	}
}

// IsSet reports whether the given field currently holds a value.
func (p *Profile) IsSet(key FieldKey) bool {
	switch key {
	case FieldName:
		return p.Name != nil && *p.Name != ""
	case FieldLanguage:
		return p.Language != ""
	case FieldGender:
		return p.Gender != nil
	case FieldBirthYear:
		return p.BirthYear != nil
	case FieldLevel:
		return p.Level != nil
	case FieldWeeklySessions:
		return p.WeeklySessions != nil
	case FieldCurrent5KTime:
		return p.Current5KTime != nil
	case FieldInjuryNotes:
		return p.InjuryNotes != nil
	case FieldRaceComingUp:
		return p.RaceComingUp != nil
	case FieldRaceDate:
		return p.RaceDate != nil
	case FieldRaceDistance:
		return p.RaceDistance != nil
	case FieldAgent:
		return p.Agent != ""
	}
	return false
}

// Set writes a normalized value into the field. The value must already have
// passed validate.Normalize for the same key; a type mismatch returns false
// and leaves the profile untouched.
func (p *Profile) Set(key FieldKey, value any) bool {
	switch key {
	case FieldName, FieldGender, FieldLevel, FieldCurrent5KTime,
		FieldInjuryNotes, FieldRaceDate, FieldRaceDistance:
		s, ok := value.(string)
		if !ok {
			return false
		}
		switch key {
		case FieldName:
			p.Name = &s
		case FieldGender:
			p.Gender = &s
		case FieldLevel:
			p.Level = &s
		case FieldCurrent5KTime:
			p.Current5KTime = &s
		case FieldInjuryNotes:
			p.InjuryNotes = &s
		case FieldRaceDate:
			p.RaceDate = &s
		case FieldRaceDistance:
			p.RaceDistance = &s
		}
		return true
	case FieldLanguage, FieldAgent:
		s, ok := value.(string)
		if !ok {
			return false
		}
		if key == FieldLanguage {
			p.Language = s
		} else {
			p.Agent = s
		}
		return true
	case FieldBirthYear, FieldWeeklySessions:
		n, ok := value.(int)
		if !ok {
			return false
		}
		if key == FieldBirthYear {
			p.BirthYear = &n
		} else {
			p.WeeklySessions = &n
		}
		return true
	case FieldRaceComingUp:
		b, ok := value.(bool)
		if !ok {
			return false
		}
		p.RaceComingUp = &b
		return true
	}
	return false
}

// Recompute rederives ProfileComplete from the required set. Called after
// every mutation; ProfileComplete is never written directly anywhere else.
func (p *Profile) Recompute() {
	for _, key := range RequiredFields {
		if !p.IsSet(key) {
			p.ProfileComplete = false
			return
		}
	}
	p.ProfileComplete = true
}

// NextMissing returns the first required field without a value, in priority
// order. ok is false when the profile is complete.
func (p *Profile) NextMissing() (FieldKey, bool) {
	for _, key := range RequiredFields {
		if !p.IsSet(key) {
			return key, true
		}
	}
	return "", false
}

// Patch is a partial profile update: normalized values keyed by field.
type Patch map[FieldKey]any

// Apply writes the patch into the profile. When overwrite is false, fields
// that already hold a value are skipped (the inference rule); when true,
// patch values win (the model profileUpdate rule). Returns the keys that
// were actually written. ProfileComplete is recomputed before returning.
func (patch Patch) Apply(p *Profile, overwrite bool) []FieldKey {
	var applied []FieldKey
	for key, value := range patch {
		if !overwrite && p.IsSet(key) {
			continue
		}
		if p.Set(key, value) {
			applied = append(applied, key)
		}
	}
	p.Recompute()
	return applied
}

// Clone returns a deep copy; pointer fields are reallocated.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Name = clonePtr(p.Name)
	c.Gender = clonePtr(p.Gender)
	c.BirthYear = clonePtr(p.BirthYear)
	c.Level = clonePtr(p.Level)
	c.WeeklySessions = clonePtr(p.WeeklySessions)
	c.Current5KTime = clonePtr(p.Current5KTime)
	c.InjuryNotes = clonePtr(p.InjuryNotes)
	c.RaceComingUp = clonePtr(p.RaceComingUp)
	c.RaceDate = clonePtr(p.RaceDate)
	c.RaceDistance = clonePtr(p.RaceDistance)
	return &c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
