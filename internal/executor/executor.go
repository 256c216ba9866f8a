// Package executor применяет одно запланированное действие к браузерной
// сессии и возвращает текстовый код исхода для трассы.
package executor

import (
	"context"
	"fmt"
	"time"

	"uxagent/internal/browser"
	"uxagent/internal/logger"
	"uxagent/internal/model"
	"uxagent/internal/selector"
)

const (
	defaultWaitMS = 1000
	scrollStepPx  = 300
)

type Executor struct {
	session  browser.Session
	resolver *selector.Resolver
	log      *logger.Zap
}

func New(session browser.Session, log *logger.Zap) *Executor {
	return &Executor{
		session:  session,
		resolver: selector.NewResolver(session, log),
		log:      log,
	}
}

// Execute выполняет действие и возвращает код результата. Ошибка заполнена
// только когда шаг считается ошибочным; провал поиска селектора без
// исключения остаётся просто кодом.
func (e *Executor) Execute(ctx context.Context, action *model.PlannedAction) (string, error) {
	switch action.Type {
	case model.ActionClick:
		code, err := e.resolver.Act(ctx, action.Target, selector.IntentClick, "")
		if code == selector.ResultSelectorNotFound && err != nil {
			return "click_failed", err
		}
		return code, nil

	case model.ActionScroll:
		if action.Target != nil && action.Target.Selector != "" {
			if err := e.session.ScrollIntoView(ctx, action.Target.Selector); err != nil {
				return "error", err
			}
			return "scrolled_to_element", nil
		}
		if err := e.session.ScrollBy(ctx, scrollStepPx); err != nil {
			return "error", err
		}
		return "scrolled", nil

	case model.ActionFill:
		if action.Target == nil || action.Target.IsEmpty() || action.Value == "" {
			return "selector_not_found_or_no_value", nil
		}
		code, err := e.resolver.Act(ctx, action.Target, selector.IntentFill, action.Value)
		if code == selector.ResultSelectorNotFound && err != nil {
			return "fill_failed", err
		}
		return code, nil

	case model.ActionWait:
		ms := action.MS
		if ms <= 0 {
			ms = defaultWaitMS
		}
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
		case <-ctx.Done():
			return "error", ctx.Err()
		}
		return fmt.Sprintf("waited_%dms", ms), nil

	case model.ActionNav:
		if action.Value == "" {
			return "no_url_provided", nil
		}
		if err := e.session.Navigate(ctx, action.Value); err != nil {
			return "error", err
		}
		return "navigated", nil
	}

	return "unknown_action", nil
}
