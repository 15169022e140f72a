// Package prompt assembles model-call context and parses the structured
// parts out of raw model replies.
package prompt

import (
	"encoding/json"
	"regexp"
	"strings"

	"run-coach-be/pkg/coach/profile"
	"run-coach-be/pkg/coach/validate"
)

// TranscriptWindow is how many recent messages are rendered into context.
const TranscriptWindow = 5

// Line is one rendered transcript entry, oldest first.
type Line struct {
	Sender string
	Text   string
}

// AskContext is everything the model sees for one turn.
type AskContext struct {
	SystemSummary  string
	RecentMessages string
	Message        string
	UserProfile    *profile.Profile
}

// QuickReply is a tappable suggestion chip proposed by the model.
type QuickReply struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// RoleSuggestion offers a switch to another coach role.
type RoleSuggestion struct {
	Options []string `json:"options"`
}

// VisualCard is a rich card rendered under the reply.
type VisualCard struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Bullets     []string     `json:"bullets,omitempty"`
	CTAs        []QuickReply `json:"ctas,omitempty"`
}

// NextAction is a structured follow-up directive.
type NextAction struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Answer is the parsed model response for one turn. Every field besides
// Reply is optional and independent of the others.
type Answer struct {
	Reply            string
	ProfileUpdate    profile.Patch
	QuickReplies     []QuickReply
	RoleSuggestion   *RoleSuggestion
	VisualCard       *VisualCard
	NextAction       *NextAction
	ConversationTags []string
	UrgencyScore     *float64
}

var (
	reProfileUpdate = regexp.MustCompile(`(?s)\[PROFILE UPDATE\](.*?)\[/PROFILE UPDATE\]`)
	reDirectives    = regexp.MustCompile(`(?s)\[DIRECTIVES\](.*?)\[/DIRECTIVES\]`)
)

// RenderTranscript joins transcript lines oldest-first into the plain
// "sender: text" form the system prompt embeds.
func RenderTranscript(lines []Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.Sender+": "+l.Text)
	}
	return strings.Join(parts, "\n")
}

// BuildSystem composes the full system prompt: base coaching rules with the
// rolling summary and recent transcript, the active role, and the reply
// language.
func BuildSystem(ctx AskContext) string {
	agent := profile.AgentCoach
	language := profile.LanguageEnglish
	if ctx.UserProfile != nil {
		if ctx.UserProfile.Agent != "" {
			agent = ctx.UserProfile.Agent
		}
		if ctx.UserProfile.Language != "" {
			language = ctx.UserProfile.Language
		}
	}

	sections := []string{
		basePrompt(ctx.SystemSummary, ctx.RecentMessages),
		rolePrompt(agent),
		languagePrompt(language),
		outputContract,
	}
	return strings.Join(sections, "\n\n")
}

func basePrompt(summary, recent string) string {
	var b strings.Builder
	b.WriteString("You are Run Mastery AI — a world-class running coach.\n\n")
	b.WriteString("Conversation summary:\n")
	b.WriteString(summary)
	b.WriteString("\n\nRecent messages:\n")
	b.WriteString(recent)
	b.WriteString("\n\nCore rules:\n")
	b.WriteString("- Speak like a warm, practical human coach.\n")
	b.WriteString("- Keep replies short (1-2 paragraphs).\n")
	b.WriteString("- Never say you're an AI.\n")
	b.WriteString("- Never repeat what the user already said.\n")
	b.WriteString("- Always ask a follow-up question, even after \"ok\".\n\n")
	b.WriteString("If the user gives a brief answer (e.g. \"20\"), confirm it:\n")
	b.WriteString("  \"So your 5K time is 20 minutes? Awesome. What's next?\"\n\n")
	b.WriteString("Greet by name only in your very first reply.")
	return b.String()
}

func rolePrompt(agent string) string {
	switch agent {
	case profile.AgentRacePlanner:
		return "You're their Race Planner: focus on pacing, tapering, race strategy."
	case profile.AgentStrategist:
		return "You're their Mental Strategist: guide mindset, pacing and tactics."
	case profile.AgentNutritionist:
		return "You're their Nutrition Coach: give fueling, hydration and recovery advice."
	case profile.AgentInjuryAssistant:
		return "You're their Injury Assistant: support safe return to running, no diagnoses."
	default:
		return "You're their Training Coach: build consistent, personalized training."
	}
}

func languagePrompt(language string) string {
	if language == profile.LanguageSwedish {
		return "Svara bara på svenska. Korta, tydliga och coachande meningar."
	}
	return "Reply only in English. Keep tone warm, smart, and concise."
}

const outputContract = `If the conversation reveals or corrects profile facts, append a block:
[PROFILE UPDATE]{"current5kTime":"00:21:30"}[/PROFILE UPDATE]
Optionally append UI directives as a block:
[DIRECTIVES]{"quickReplies":[{"label":"Yes","value":"yes"}]}[/DIRECTIVES]
Both blocks must contain valid JSON and come after your reply text.`

// ParseAnswer splits a raw model reply into text and structured parts. The
// profile update is sanitized field by field; malformed blocks or directive
// fields are dropped silently, never failing the whole answer.
func ParseAnswer(raw string) *Answer {
	answer := &Answer{ProfileUpdate: profile.Patch{}}

	if m := reProfileUpdate.FindStringSubmatch(raw); m != nil {
		var fields map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &fields); err == nil {
			answer.ProfileUpdate = validate.SanitizePatch(fields)
		}
	}
	if m := reDirectives.FindStringSubmatch(raw); m != nil {
		parseDirectives(strings.TrimSpace(m[1]), answer)
	}

	reply := reProfileUpdate.ReplaceAllString(raw, "")
	reply = reDirectives.ReplaceAllString(reply, "")
	answer.Reply = strings.TrimSpace(reply)
	return answer
}

// directivesEnvelope mirrors the optional JSON directive block.
type directivesEnvelope struct {
	QuickReplies     []QuickReply    `json:"quickReplies"`
	RoleSuggestion   *RoleSuggestion `json:"roleSuggestion"`
	VisualCard       *VisualCard     `json:"visualCard"`
	NextAction       *NextAction     `json:"nextAction"`
	ConversationTags []string        `json:"conversationTags"`
	UrgencyScore     *float64        `json:"urgencyScore"`
}

func parseDirectives(raw string, answer *Answer) {
	var env directivesEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return
	}
	answer.QuickReplies = env.QuickReplies
	answer.ConversationTags = env.ConversationTags
	answer.UrgencyScore = env.UrgencyScore
	if env.RoleSuggestion != nil && len(env.RoleSuggestion.Options) > 0 {
		answer.RoleSuggestion = env.RoleSuggestion
	}
	if env.VisualCard != nil && env.VisualCard.Title != "" {
		answer.VisualCard = env.VisualCard
	}
	if env.NextAction != nil && env.NextAction.Type != "" {
		answer.NextAction = env.NextAction
	}
}
