package dialogue

import (
	"context"
	"strings"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/rs/zerolog/log"
)

// goalMinEntries gates evaluation on very short conversations: with fewer
// than this many entries the mission cannot plausibly be complete.
const goalMinEntries = 5

// EvaluateGoal asks the language service whether the scenario's mission is
// satisfied by the transcript so far. The classifier is a free-text
// heuristic: the response is matched case-insensitively for the substring
// "true", so any other text (including "false") counts as not met. The
// caller guarantees monotonic application; this function never looks at the
// current flag.
func (s *Service) EvaluateGoal(ctx context.Context, t *conversation.Transcript, mission string) (bool, error) {
	if len(t.Entries) < goalMinEntries {
		return false, nil
	}

	prompt, err := renderGoalPrompt(t, mission)
	if err != nil {
		return false, err
	}

	resp, err := s.engine.Complete(ctx, []conversation.Message{
		{Role: conversation.RoleSystem, Content: prompt},
	})
	if err != nil {
		return false, err
	}

	met := strings.Contains(strings.ToLower(resp), "true")
	log.Debug().
		Str("user_id", t.UserID).
		Str("scenario_id", t.ScenarioID).
		Bool("goal_met", met).
		Msg("goal evaluation finished")
	return met, nil
}
