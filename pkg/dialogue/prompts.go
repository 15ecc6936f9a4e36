package dialogue

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/scenario"
	"github.com/pkg/errors"
)

// FeedbackNoMistakes is the canonical "nothing to correct" feedback string.
// The tutor prompt asks the model to signal a clean utterance with a marker
// phrase; whatever it literally returns is normalized to this constant so
// clients can detect a perfect utterance uniformly.
const FeedbackNoMistakes = "No mistakes. Good job!"

const noMistakesMarker = "no mistakes"

var promptFuncs = sprig.TxtFuncMap()

func mustTemplate(name, tpl string) *template.Template {
	return template.Must(template.New(name).Funcs(promptFuncs).Parse(tpl))
}

var systemPromptTemplate = mustTemplate("system-prompt", `You are playing a character in a roleplay scene used for language practice.
Persona: {{ .AISetting | trim }}
Setting: {{ .Settings | trim }}
Stay in character, answer in English, and keep your replies short and conversational. Help the learner move the scene forward.`)

var feedbackPromptTemplate = mustTemplate("feedback-prompt", `You are an English tutor. The learner is practicing in this scene: {{ .Settings | trim }}
Review the learner's utterance below for grammar and natural phrasing. Give one short piece of corrective feedback. If there is nothing to correct, reply exactly with "{{ .NoMistakes }}".

Learner: {{ .Utterance }}`)

var goalPromptTemplate = mustTemplate("goal-prompt", `You are judging whether a roleplay conversation has achieved its goal.
Goal: {{ .Mission | trim }}

Conversation so far:
{{ range .Lines }}{{ . }}
{{ end }}
Decision rules:
- If the final assistant message states that the requested action was completed, or that nothing further is needed, the goal is met.
- If the final assistant message asks a clarifying question or offers further options, the goal is not met.
- If fewer than 5 messages have been exchanged, the goal is not met regardless of content.

Answer with a single word: true if the goal is met, false otherwise.`)

// RenderSystemPrompt synthesizes the system instruction seeded as the first
// transcript entry, from the scenario's settings and persona text.
func RenderSystemPrompt(sc *scenario.Scenario) (string, error) {
	var b strings.Builder
	if err := systemPromptTemplate.Execute(&b, sc); err != nil {
		return "", errors.Wrap(err, "could not render system prompt")
	}
	return b.String(), nil
}

func renderFeedbackPrompt(sc *scenario.Scenario, utterance string) (string, error) {
	var b strings.Builder
	err := feedbackPromptTemplate.Execute(&b, map[string]interface{}{
		"Settings":   sc.Settings,
		"Utterance":  utterance,
		"NoMistakes": FeedbackNoMistakes,
	})
	if err != nil {
		return "", errors.Wrap(err, "could not render feedback prompt")
	}
	return b.String(), nil
}

func renderGoalPrompt(t *conversation.Transcript, mission string) (string, error) {
	lines := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		lines = append(lines, e.View())
	}
	var b strings.Builder
	err := goalPromptTemplate.Execute(&b, map[string]interface{}{
		"Mission": mission,
		"Lines":   lines,
	})
	if err != nil {
		return "", errors.Wrap(err, "could not render goal prompt")
	}
	return b.String(), nil
}

// normalizeFeedback collapses the model's "nothing to correct" marker into
// the canonical constant, regardless of surrounding text.
func normalizeFeedback(feedback string) string {
	if strings.Contains(strings.ToLower(feedback), noMistakesMarker) {
		return FeedbackNoMistakes
	}
	return strings.TrimSpace(feedback)
}
