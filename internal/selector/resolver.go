package selector

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"uxagent/internal/browser"
	"uxagent/internal/logger"
	"uxagent/internal/model"
)

// Intent — что именно нужно сделать с найденным элементом.
type Intent string

const (
	IntentClick  Intent = "click"
	IntentFill   Intent = "fill"
	IntentScroll Intent = "scroll"
)

const (
	ResultNoTarget         = "no_target_provided"
	ResultSelectorNotFound = "selector_not_found"

	// до скольких совпадений по тексту проверяет широкий проход
	broadPassLimit = 5
)

// Resolver перебирает стратегии поиска по очереди и выполняет действие
// на первой подошедшей. Страницы непредсказуемы, одной стратегии не хватает.
type Resolver struct {
	session browser.Session
	log     *logger.Zap
}

func NewResolver(session browser.Session, log *logger.Zap) *Resolver {
	return &Resolver{session: session, log: log}
}

// Act выполняет intent над целью. Возвращает код результата и последнюю
// ошибку попытки; при успехе ошибка nil. Код различает успех по основному
// селектору ("clicked"), успех по запасной стратегии ("clicked_with_<запрос>")
// и провал всего списка.
func (r *Resolver) Act(ctx context.Context, target *model.ActionTarget, intent Intent, value string) (string, error) {
	if target == nil || target.IsEmpty() {
		return ResultNoTarget, nil
	}

	strategies := BuildStrategies(target)

	var lastErr error
	for i, strat := range strategies {
		ok, err := r.attempt(ctx, strat.Query, intent, value)
		if err != nil {
			lastErr = err
			continue
		}
		if !ok {
			continue
		}

		r.log.Debug("стратегия сработала",
			zap.String("intent", string(intent)),
			zap.String("kind", strat.Kind.String()),
			zap.String("query", strat.Query))

		if i == 0 {
			return primaryResult(intent), nil
		}
		return fallbackResult(intent, strat.Query), nil
	}

	// Широкий проход: до пяти элементов, содержащих текст цели, первый
	// видимый получает действие.
	if text := strings.TrimSpace(target.Text); text != "" {
		for i := 1; i <= broadPassLimit; i++ {
			query := fmt.Sprintf(":nth-match(:text(%q), %d)", text, i)
			ok, err := r.attempt(ctx, query, intent, value)
			if err != nil {
				lastErr = err
				continue
			}
			if ok {
				return fallbackResult(intent, query), nil
			}
		}
	}

	return ResultSelectorNotFound, lastErr
}

// attempt — одна ограниченная по времени попытка: элемент должен
// существовать и быть видимым до и после подскролла.
func (r *Resolver) attempt(ctx context.Context, query string, intent Intent, value string) (bool, error) {
	count, err := r.session.Count(query)
	if err != nil || count == 0 {
		return false, err
	}

	visible, err := r.session.IsVisible(query)
	if err != nil || !visible {
		return false, err
	}

	switch intent {
	case IntentClick:
		if err := r.session.ScrollIntoView(ctx, query); err != nil {
			return false, err
		}
		if visible, err = r.session.IsVisible(query); err != nil || !visible {
			return false, err
		}
		if err := r.session.Click(ctx, query); err != nil {
			return false, err
		}
	case IntentFill:
		if err := r.session.Fill(ctx, query, value); err != nil {
			return false, err
		}
	case IntentScroll:
		if err := r.session.ScrollIntoView(ctx, query); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("неизвестное намерение: %s", intent)
	}

	return true, nil
}

func primaryResult(intent Intent) string {
	switch intent {
	case IntentClick:
		return "clicked"
	case IntentFill:
		return "filled"
	default:
		return "scrolled_to_element"
	}
}

func fallbackResult(intent Intent, query string) string {
	switch intent {
	case IntentClick:
		return "clicked_with_" + query
	case IntentFill:
		return "filled_with_" + query
	default:
		return "scrolled_to_element"
	}
}
