package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uxagent/internal/browser"
	"uxagent/internal/executor"
	"uxagent/internal/logger"
	"uxagent/internal/model"
	"uxagent/internal/planner"
	"uxagent/internal/sentiment"
)

type loopSession struct {
	visible map[string]bool
	navErr  error
	closed  bool
}

func (s *loopSession) Navigate(ctx context.Context, url string) error { return s.navErr }
func (s *loopSession) URL() string                                    { return "https://example.com" }
func (s *loopSession) Title() (string, error)                         { return "Example", nil }
func (s *loopSession) Evaluate(ctx context.Context, script string) (any, error) {
	return []interface{}{}, nil
}

func (s *loopSession) Count(selector string) (int, error) {
	if _, ok := s.visible[selector]; ok {
		return 1, nil
	}
	return 0, nil
}

func (s *loopSession) IsVisible(selector string) (bool, error) { return s.visible[selector], nil }

func (s *loopSession) ScrollIntoView(ctx context.Context, selector string) error { return nil }
func (s *loopSession) Click(ctx context.Context, selector string) error          { return nil }
func (s *loopSession) Fill(ctx context.Context, selector, value string) error    { return nil }
func (s *loopSession) ScrollBy(ctx context.Context, y int) error                 { return nil }
func (s *loopSession) WaitForLoad(ctx context.Context, state string) error       { return nil }
func (s *loopSession) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return []byte{}, nil
}

func (s *loopSession) Close() error {
	s.closed = true
	return nil
}

type stubPlanner struct {
	fn func(step int) (*model.PlanOutput, error)
}

func (s stubPlanner) PlanNextAction(ctx context.Context, in planner.Input) (*model.PlanOutput, error) {
	return s.fn(in.Step)
}

func newTestAgent(t *testing.T, session *loopSession, plan stubPlanner) *Agent {
	t.Helper()

	orig := digestFunc
	digestFunc = func(ctx context.Context, s browser.Session) (*model.PageDigest, error) {
		return &model.PageDigest{Title: "Example", URL: "https://example.com"}, nil
	}
	t.Cleanup(func() { digestFunc = orig })

	log := logger.NewNop()
	return New(plan, executor.NewScreenshotStore(t.TempDir(), log), log, Config{
		Launch: func(ctx context.Context, cfg browser.Config) (browser.Session, error) {
			return session, nil
		},
	})
}

func clickPlan(selector string) *model.PlanOutput {
	return &model.PlanOutput{
		Intent: "Click the element",
		Action: model.PlannedAction{
			Type:   model.ActionClick,
			Target: &model.ActionTarget{Selector: selector},
		},
		Rationale:  "try the element",
		Confidence: 0.8,
	}
}

func scrollPlan() *model.PlanOutput {
	return &model.PlanOutput{
		Intent:     "Scroll down",
		Action:     model.PlannedAction{Type: model.ActionScroll},
		Rationale:  "look for more content",
		Confidence: 0.8,
	}
}

func waitPlan() *model.PlanOutput {
	return &model.PlanOutput{
		Intent:     "Wait a moment",
		Action:     model.PlannedAction{Type: model.ActionWait, MS: 5},
		Rationale:  "let the page settle",
		Confidence: 0.8,
	}
}

// Планировщик бьет по несуществующему селектору: каждый шаг дает баг,
// серия ошибок завершает запуск досрочно.
func TestRunConsecutiveErrorsOnMissingSelector(t *testing.T) {
	session := &loopSession{}
	ag := newTestAgent(t, session, stubPlanner{fn: func(int) (*model.PlanOutput, error) {
		return clickPlan("#ghost"), nil
	}})

	output, err := ag.Run(context.Background(), model.RunConfig{
		RunID:                "run1",
		URL:                  "https://example.com",
		StepBudget:           3,
		MaxConsecutiveErrors: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, model.FinishConsecutiveErrors, output.FinishReason)
	require.Len(t, output.Interactions, 2)
	for _, it := range output.Interactions {
		assert.Equal(t, model.ActionClick, it.ActionType)
		assert.True(t, it.BugDetected)
		assert.Equal(t, "selector_not_found", it.Result)
	}
	assert.Equal(t, 2, output.BugsEncountered)
	assert.True(t, session.closed)
}

// Гладкий запуск: чередование успешных кликов и прокруток съедает весь
// бюджет шагов без багов.
func TestRunStepBudgetReached(t *testing.T) {
	session := &loopSession{visible: map[string]bool{"#item": true}}
	ag := newTestAgent(t, session, stubPlanner{fn: func(step int) (*model.PlanOutput, error) {
		if step%2 == 1 {
			return clickPlan("#item"), nil
		}
		return scrollPlan(), nil
	}})

	output, err := ag.Run(context.Background(), model.RunConfig{
		RunID:      "run1",
		URL:        "https://example.com",
		StepBudget: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, model.FinishStepBudgetReached, output.FinishReason)
	require.Len(t, output.Interactions, 5)
	assert.Equal(t, 0, output.BugsEncountered)
	assert.Contains(t,
		[]model.SentimentLevel{model.SentimentNeutral, model.SentimentPositive, model.SentimentVeryPositive},
		output.OverallSentiment)

	// шаги идут подряд без пропусков
	for i, it := range output.Interactions {
		assert.Equal(t, i+1, it.Step)
		assert.NotEmpty(t, it.Screenshot)
		assert.NotEmpty(t, it.Thought)
	}
}

// Провал первичной навигации: цикл не стартует, журнал пуст.
func TestRunNavFailure(t *testing.T) {
	session := &loopSession{navErr: fmt.Errorf("net::ERR_NAME_NOT_RESOLVED")}
	ag := newTestAgent(t, session, stubPlanner{fn: func(int) (*model.PlanOutput, error) {
		t.Fatal("планировщик не должен вызываться")
		return nil, nil
	}})

	output, err := ag.Run(context.Background(), model.RunConfig{
		RunID: "run1",
		URL:   "https://bad.invalid",
	})

	require.NoError(t, err)
	assert.Equal(t, model.FinishNavFailure, output.FinishReason)
	assert.Empty(t, output.Interactions)
	assert.Equal(t, model.SentimentNeutral, output.OverallSentiment)
	assert.True(t, session.closed)
}

// Долгое топтание на месте без осмысленного прогресса: пользователь
// сдается после десятого шага.
func TestRunUserDropoffAfterStagnation(t *testing.T) {
	session := &loopSession{}
	ag := newTestAgent(t, session, stubPlanner{fn: func(step int) (*model.PlanOutput, error) {
		if step%2 == 1 {
			return scrollPlan(), nil
		}
		return waitPlan(), nil
	}})

	output, err := ag.Run(context.Background(), model.RunConfig{
		RunID:   "run1",
		URL:     "https://example.com",
		Persona: model.Persona{Name: "Explorer", Bio: "let me explore further"},
		// бюджет больше порога стагнации
		StepBudget:           15,
		MaxConsecutiveErrors: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, model.FinishUserDropoff, output.FinishReason)
	assert.Equal(t, sentiment.DropoffNoProgress, output.DropoffReason)
	assert.Len(t, output.Interactions, 11)
}

// Сбой планировщика уходит в путь принудительной ошибки: шаг записывается
// как баг с сентиментом FRUSTRATED.
func TestRunPlannerFailureForcesFrustratedStep(t *testing.T) {
	session := &loopSession{}
	ag := newTestAgent(t, session, stubPlanner{fn: func(int) (*model.PlanOutput, error) {
		return nil, fmt.Errorf("api unavailable")
	}})

	output, err := ag.Run(context.Background(), model.RunConfig{
		RunID:                "run1",
		URL:                  "https://example.com",
		StepBudget:           5,
		MaxConsecutiveErrors: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, model.FinishConsecutiveErrors, output.FinishReason)
	require.Len(t, output.Interactions, 2)
	for _, it := range output.Interactions {
		assert.Equal(t, model.SentimentFrustrated, it.Sentiment)
		assert.True(t, it.BugDetected)
		assert.Equal(t, model.BugUnknown, it.BugType)
		assert.Equal(t, model.ActionWait, it.ActionType)
		assert.Contains(t, it.Result, "error:")
	}
	assert.Equal(t, 2, output.BugsEncountered)
}

// Паника внутри шага не роняет запуск.
func TestRunRecoversFromPanic(t *testing.T) {
	session := &loopSession{}
	ag := newTestAgent(t, session, stubPlanner{fn: func(int) (*model.PlanOutput, error) {
		panic("boom")
	}})

	output, err := ag.Run(context.Background(), model.RunConfig{
		RunID:                "run1",
		URL:                  "https://example.com",
		StepBudget:           3,
		MaxConsecutiveErrors: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, model.FinishConsecutiveErrors, output.FinishReason)
	require.Len(t, output.Interactions, 1)
	assert.Equal(t, model.SentimentFrustrated, output.Interactions[0].Sentiment)
}

// Ответ планировщика в виде fallback-действия wait обрабатывается как
// обычный шаг и не считается ошибкой.
func TestRunPlannerFallbackIsHarmless(t *testing.T) {
	session := &loopSession{}
	ag := newTestAgent(t, session, stubPlanner{fn: func(int) (*model.PlanOutput, error) {
		plan := planner.Fallback()
		plan.Action.MS = 5
		return plan, nil
	}})

	output, err := ag.Run(context.Background(), model.RunConfig{
		RunID:                "run1",
		URL:                  "https://example.com",
		StepBudget:           2,
		MaxConsecutiveErrors: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, model.FinishStepBudgetReached, output.FinishReason)
	require.Len(t, output.Interactions, 2)
	for _, it := range output.Interactions {
		assert.Equal(t, model.ActionWait, it.ActionType)
		assert.False(t, it.BugDetected)
		assert.Equal(t, "waited_5ms", it.Result)
	}
}

// Подключаемый детектор успеха завершает запуск досрочно.
func TestRunSuccessChecker(t *testing.T) {
	session := &loopSession{visible: map[string]bool{"#item": true}}

	orig := digestFunc
	digestFunc = func(ctx context.Context, s browser.Session) (*model.PageDigest, error) {
		return &model.PageDigest{}, nil
	}
	t.Cleanup(func() { digestFunc = orig })

	log := logger.NewNop()
	ag := New(
		stubPlanner{fn: func(int) (*model.PlanOutput, error) { return clickPlan("#item"), nil }},
		executor.NewScreenshotStore(t.TempDir(), log),
		log,
		Config{
			Launch: func(ctx context.Context, cfg browser.Config) (browser.Session, error) {
				return session, nil
			},
			Success: func(interactions []model.Interaction, uxQuestion string) bool {
				return len(interactions) >= 2
			},
		},
	)

	output, err := ag.Run(context.Background(), model.RunConfig{
		RunID:      "run1",
		URL:        "https://example.com",
		StepBudget: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, model.FinishSuccess, output.FinishReason)
	assert.Len(t, output.Interactions, 2)
}

func TestAgentIDFormat(t *testing.T) {
	ag := newTestAgent(t, &loopSession{}, stubPlanner{fn: func(int) (*model.PlanOutput, error) {
		return scrollPlan(), nil
	}})

	assert.Regexp(t, `^agent_[0-9a-f]{6}$`, ag.AgentID())
}
