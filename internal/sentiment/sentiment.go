// Package sentiment реализует чистые функции анализа эмоционального состояния
// симулируемого пользователя: классификацию сентимента по окну последних
// взаимодействий, детекцию багов по кодам результата, проверку ухода
// пользователя и генерацию текстов "мыслей" для транскрипта.
//
// Все функции детерминированы относительно входа и не имеют скрытого
// состояния — пакет тестируется в изоляции от браузера и LLM.
package sentiment

import (
	"strings"
	"time"

	"uxagent/internal/model"
)

// окно анализа: последние 5 взаимодействий
const recentWindow = 5

// маркеры неудачной навигации/поиска элементов в кодах результата
var navigationFailureMarkers = []string{
	"selector_not_found",
	"no_target_provided",
	"click_failed",
}

// маркеры успешного результата действия
var successMarkers = []string{
	"clicked",
	"filled",
	"navigated",
	"scrolled",
	"clicked_with_fallback",
	"filled_with_",
	"scrolled_to_element",
}

// Analyze классифицирует текущий сентимент пользователя по последним
// взаимодействиям и возвращает уровень вместе с текстовым описанием ощущения.
// Правила применяются по приоритету, выигрывает первое сработавшее; поверх
// накладывается проверка соответствия контента интересам персоны.
func Analyze(interactions []model.Interaction, currentStep int, personaBio string) (model.SentimentLevel, string) {
	if len(interactions) == 0 {
		return model.SentimentNeutral, ""
	}

	recent := lastN(interactions, recentWindow)

	errorCount := 0
	for _, it := range recent {
		if it.BugDetected {
			errorCount++
		}
	}

	navigationFailures := 0
	for _, it := range recent {
		for _, marker := range navigationFailureMarkers {
			if strings.Contains(it.Result, marker) {
				navigationFailures++
				break
			}
		}
	}

	repeatedActions := countRepeatedActions(recent)
	timeSpent := timeSpan(recent)

	successfulActions := 0
	for _, it := range recent {
		if isMeaningfulProgress(it) {
			successfulActions++
		}
	}

	onlyScrolling := false
	if len(recent) >= 3 {
		onlyScrolling = true
		for _, it := range lastN(recent, 3) {
			if it.ActionType != model.ActionScroll {
				onlyScrolling = false
				break
			}
		}
	}

	result := model.SentimentNeutral
	feeling := ""

	switch {
	case errorCount >= 3 || navigationFailures >= 3:
		result = model.SentimentFrustrated
		feeling = "The user seems frustrated due to multiple errors or inability to interact with the site"
	case errorCount >= 2 || navigationFailures >= 2:
		result = model.SentimentNegative
		feeling = "The user is experiencing some difficulties navigating or interacting"
	case repeatedActions > 2:
		result = model.SentimentNegative
		feeling = "The user appears confused, repeating similar actions"
	case onlyScrolling && successfulActions == 0:
		result = model.SentimentNegative
		feeling = "The user seems lost, just scrolling without finding anything useful"
	case timeSpent > 30*time.Second && successfulActions == 0:
		result = model.SentimentNegative
		feeling = "The user is spending too much time on a simple task"
	case (errorCount >= 1 || navigationFailures >= 1) && successfulActions == 0:
		result = model.SentimentNegative
		feeling = "The user is having trouble interacting with the site"
	case successfulActions >= 2 && errorCount == 0 && navigationFailures == 0:
		result = model.SentimentPositive
		feeling = "The user is progressing smoothly"
	case successfulActions >= 1 && errorCount+navigationFailures <= 1:
		result = model.SentimentPositive
		feeling = "The user is making progress despite minor issues"
	}

	// Наложение интереса персоны: подтвержденный интерес усиливает позитив,
	// отсутствие интереса переводит нейтральное состояние в негативное.
	if matchesPersonaInterest(interactions, personaBio) {
		if result == model.SentimentPositive {
			result = model.SentimentVeryPositive
			feeling = "The user is highly engaged with relevant content"
		}
	} else if result == model.SentimentNeutral {
		result = model.SentimentNegative
		feeling = "The content doesn't seem to match the user's interests"
	}

	return result, feeling
}

// countRepeatedActions считает соседние пары с одинаковыми (тип действия, селектор).
func countRepeatedActions(interactions []model.Interaction) int {
	if len(interactions) < 2 {
		return 0
	}

	repeated := 0
	for i := 1; i < len(interactions); i++ {
		if interactions[i].ActionType == interactions[i-1].ActionType &&
			interactions[i].Selector == interactions[i-1].Selector {
			repeated++
		}
	}
	return repeated
}

func timeSpan(interactions []model.Interaction) time.Duration {
	if len(interactions) < 2 {
		return 0
	}
	return interactions[len(interactions)-1].Timestamp.Sub(interactions[0].Timestamp)
}

// matchesPersonaInterest проверяет, что минимум два слова из биографии персоны
// встречаются в текстах мыслей — признак того, что контент совпал с интересами.
func matchesPersonaInterest(interactions []model.Interaction, personaBio string) bool {
	personaKeywords := strings.Fields(strings.ToLower(personaBio))

	contentWords := make(map[string]bool)
	for _, it := range interactions {
		if it.Thought == "" {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(it.Thought)) {
			contentWords[w] = true
		}
	}

	matching := 0
	for _, keyword := range personaKeywords {
		if contentWords[keyword] {
			matching++
		}
	}
	return matching >= 2
}

// isMeaningfulProgress сообщает, представляет ли взаимодействие осмысленный
// прогресс: значимое действие без бага и с маркером успеха в результате.
func isMeaningfulProgress(it model.Interaction) bool {
	meaningful := it.ActionType == model.ActionClick ||
		it.ActionType == model.ActionFill ||
		it.ActionType == model.ActionNav
	if !meaningful || it.BugDetected {
		return false
	}

	result := strings.ToLower(it.Result)
	for _, marker := range successMarkers {
		if strings.Contains(result, marker) {
			return true
		}
	}
	return false
}

func lastN(interactions []model.Interaction, n int) []model.Interaction {
	if len(interactions) <= n {
		return interactions
	}
	return interactions[len(interactions)-n:]
}
