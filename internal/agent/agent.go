// Package agent реализует цикл управления симулируемым пользователем:
// дайджест страницы, планирование, выполнение действия, анализ настроения
// и решение о завершении запуска.
package agent

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"uxagent/internal/browser"
	"uxagent/internal/executor"
	"uxagent/internal/extractor"
	"uxagent/internal/logger"
	"uxagent/internal/model"
	"uxagent/internal/planner"
	"uxagent/internal/sentiment"
)

// SuccessChecker решает, достигнута ли цель запуска досрочно. Текущая
// политика не детектирует успех: агент тратит весь бюджет шагов, если не
// отвалился раньше. Подменяемая стратегия на будущее.
type SuccessChecker func(interactions []model.Interaction, uxQuestion string) bool

func alwaysContinue([]model.Interaction, string) bool { return false }

// точка подмены извлечения дайджеста в тестах
var digestFunc = extractor.Extract

// LaunchFunc открывает браузерную сессию. В тестах подменяется фейком.
type LaunchFunc func(ctx context.Context, cfg browser.Config) (browser.Session, error)

// StatusFunc уведомляет внешнего наблюдателя о ходе запуска.
type StatusFunc func(step int, status string)

type Config struct {
	Browser browser.Config
	Launch  LaunchFunc
	Success SuccessChecker
	Status  StatusFunc
}

// Agent — один симулируемый пользователь. Экземпляр обслуживает один
// запуск за раз; браузерная сессия живет только внутри Run.
type Agent struct {
	planner     planner.Planner
	screenshots *executor.ScreenshotStore
	log         *logger.Zap
	cfg         Config

	agentID string
}

func New(p planner.Planner, screenshots *executor.ScreenshotStore, log *logger.Zap, cfg Config) *Agent {
	if cfg.Launch == nil {
		cfg.Launch = func(ctx context.Context, bc browser.Config) (browser.Session, error) {
			return browser.Launch(ctx, bc)
		}
	}
	if cfg.Success == nil {
		cfg.Success = alwaysContinue
	}
	if cfg.Status == nil {
		cfg.Status = func(int, string) {}
	}

	id := uuid.New()
	return &Agent{
		planner:     p,
		screenshots: screenshots,
		log:         log,
		cfg:         cfg,
		agentID:     "agent_" + hex.EncodeToString(id[:])[:6],
	}
}

func (a *Agent) AgentID() string { return a.agentID }

// Run прогоняет агента по странице и возвращает полный транскрипт.
// Ошибка возвращается только при невозможности поднять браузер; провал
// первичной навигации дает транскрипт с finish_reason=nav_failure и
// пустым журналом.
func (a *Agent) Run(ctx context.Context, run model.RunConfig) (*model.AgentOutput, error) {
	run.Normalize()

	bcfg := a.cfg.Browser
	bcfg.Viewport = run.Viewport

	session, err := a.cfg.Launch(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка запуска браузера: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			a.log.Warn("ошибка закрытия браузерной сессии", zap.Error(err))
		}
	}()

	a.log.Info("запуск агента",
		zap.String("agent_id", a.agentID),
		zap.String("run_id", run.RunID),
		zap.String("url", run.URL),
		zap.Int("step_budget", run.StepBudget))

	var (
		interactions      []model.Interaction
		consecutiveErrors int
		bugsEncountered   int
		finishReason      model.FinishReason
	)

	if err := session.Navigate(ctx, run.URL); err != nil {
		a.log.Error("первичная навигация не удалась", zap.String("url", run.URL), zap.Error(err))
		return a.buildOutput(run, nil, model.FinishNavFailure, 0), nil
	}

	a.screenshots.Capture(ctx, session, run.RunID, a.agentID, 0, false)
	exec := executor.New(session, a.log)

	for step := 1; step <= run.StepBudget; step++ {
		a.cfg.Status(step, "running")

		it, execErr, stepErr := a.runStep(ctx, session, exec, run, step, interactions)
		if stepErr != nil {
			// Шаг упал целиком: принудительный баг, сентимент FRUSTRATED,
			// полностраничный скриншот страницы в момент сбоя.
			bugsEncountered++
			interactions = append(interactions, a.failedStepInteraction(ctx, session, run, step, interactions, stepErr))

			consecutiveErrors++
			if consecutiveErrors >= run.MaxConsecutiveErrors {
				finishReason = model.FinishConsecutiveErrors
				break
			}
			continue
		}

		if it.BugDetected {
			bugsEncountered++
		}
		interactions = append(interactions, *it)

		if dropped, _ := sentiment.CheckDropoff(interactions, run.Persona.Bio); dropped {
			finishReason = model.FinishUserDropoff
			break
		}

		if execErr != nil || it.BugDetected {
			consecutiveErrors++
			if consecutiveErrors >= run.MaxConsecutiveErrors {
				finishReason = model.FinishConsecutiveErrors
				break
			}
		} else {
			consecutiveErrors = 0
		}

		if a.cfg.Success(interactions, run.UXQuestion) {
			finishReason = model.FinishSuccess
			break
		}
	}

	if finishReason == "" {
		finishReason = model.FinishStepBudgetReached
	}

	a.log.Info("агент завершил запуск",
		zap.String("agent_id", a.agentID),
		zap.String("finish_reason", string(finishReason)),
		zap.Int("steps", len(interactions)),
		zap.Int("bugs", bugsEncountered))

	return a.buildOutput(run, interactions, finishReason, bugsEncountered), nil
}

// runStep выполняет один шаг цикла. Третье возвращаемое значение не nil
// только при инфраструктурном сбое шага (дайджест, планировщик, паника) —
// такой шаг уходит в путь принудительной ошибки.
func (a *Agent) runStep(
	ctx context.Context,
	session browser.Session,
	exec *executor.Executor,
	run model.RunConfig,
	step int,
	interactions []model.Interaction,
) (it *model.Interaction, execErr error, stepErr error) {
	defer func() {
		if r := recover(); r != nil {
			it = nil
			execErr = nil
			stepErr = fmt.Errorf("паника на шаге %d: %v", step, r)
		}
	}()

	digest, err := a.extractDigest(ctx, session)
	if err != nil {
		return nil, nil, err
	}

	level, feeling := sentiment.Analyze(interactions, step, run.Persona.Bio)

	plan, err := a.planner.PlanNextAction(ctx, planner.Input{
		PersonaBio: run.Persona.Bio,
		UXQuestion: run.UXQuestion,
		Digest:     digest,
		Recent:     interactions,
		State:      planner.UserState{Sentiment: level, Feeling: feeling},
		Step:       step,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("сбой планировщика: %w", err)
	}

	result, execErr := exec.Execute(ctx, &plan.Action)
	screenshot := a.screenshots.Capture(ctx, session, run.RunID, a.agentID, step, false)

	bugDetected, bugType, bugDescription := sentiment.DetectBug(result)
	thought := sentiment.Thought(level, bugDetected, plan.Action.Type)

	a.log.Debug("шаг выполнен",
		zap.Int("step", step),
		zap.String("action", string(plan.Action.Type)),
		zap.String("result", result),
		zap.Bool("bug", bugDetected))

	return &model.Interaction{
		Step:           step,
		Intent:         plan.Intent,
		ActionType:     plan.Action.Type,
		Selector:       plan.Action.SelectorHint(),
		Value:          plan.Action.Value,
		Result:         result,
		Thought:        thought,
		Timestamp:      time.Now().UTC(),
		Screenshot:     screenshot,
		BugDetected:    bugDetected,
		BugType:        bugType,
		BugDescription: bugDescription,
		Sentiment:      level,
		UserFeeling:    feeling,
	}, execErr, nil
}

// extractDigest обособлен, чтобы паника внутри извлечения тоже уходила
// в путь принудительной ошибки шага.
func (a *Agent) extractDigest(ctx context.Context, session browser.Session) (*model.PageDigest, error) {
	digest, err := digestFunc(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("сбой извлечения дайджеста: %w", err)
	}
	return digest, nil
}

func (a *Agent) failedStepInteraction(
	ctx context.Context,
	session browser.Session,
	run model.RunConfig,
	step int,
	interactions []model.Interaction,
	stepErr error,
) model.Interaction {
	class := classify(stepErr)
	a.log.Error("шаг завершился сбоем",
		zap.Int("step", step),
		zap.String("class", class.String()),
		zap.Error(stepErr))

	screenshot := a.screenshots.Capture(ctx, session, run.RunID, a.agentID, step, true)

	level, _ := sentiment.Analyze(interactions, step, run.Persona.Bio)

	return model.Interaction{
		Step:           step,
		Intent:         "Handling unexpected technical error",
		ActionType:     model.ActionWait,
		Result:         "error: " + stepErr.Error(),
		Thought:        sentiment.ErrorThought(level),
		Timestamp:      time.Now().UTC(),
		Screenshot:     screenshot,
		BugDetected:    true,
		BugType:        model.BugUnknown,
		BugDescription: stepErr.Error(),
		Sentiment:      model.SentimentFrustrated,
		UserFeeling:    "Frustrated by unexpected technical error",
	}
}

func (a *Agent) buildOutput(run model.RunConfig, interactions []model.Interaction, reason model.FinishReason, bugs int) *model.AgentOutput {
	device := model.DeviceDesktop
	if run.Viewport == model.ViewportMobile {
		device = model.DeviceMobile
	}

	dropoffReason := ""
	if reason == model.FinishUserDropoff {
		_, dropoffReason = sentiment.CheckDropoff(interactions, run.Persona.Bio)
	}

	if interactions == nil {
		interactions = []model.Interaction{}
	}

	return &model.AgentOutput{
		AgentID: a.agentID,
		RunID:   run.RunID,
		Persona: run.Persona,
		Session: model.Session{
			URL:     run.URL,
			Device:  device,
			Browser: "chromium",
		},
		Interactions:     interactions,
		FinishReason:     reason,
		OverallSentiment: model.OverallSentiment(interactions),
		BugsEncountered:  bugs,
		DropoffReason:    dropoffReason,
	}
}
