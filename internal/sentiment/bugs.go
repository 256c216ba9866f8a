package sentiment

import (
	"fmt"
	"strings"

	"uxagent/internal/model"
)

// bugPattern — одно правило классификации: подстрока кода результата → тип бага.
type bugPattern struct {
	Substring string
	Type      model.BugType
}

// errorPatterns — упорядоченная таблица правил детекции багов.
// Проверяется сверху вниз, выигрывает первое совпадение, поэтому порядок
// значим: общие маркеры ("error", "failed") стоят раньше специфичных кодов
// исполнителя.
var errorPatterns = []bugPattern{
	{"404", model.BugNavigationError},
	{"error", model.BugUnknown},
	{"failed", model.BugInteractionFailure},
	{"timeout", model.BugLoadingError},
	{"not found", model.BugUIError},
	{"invalid", model.BugValidationError},
	{"cannot", model.BugInteractionFailure},
	{"unable", model.BugInteractionFailure},
	{"selector_not_found", model.BugInteractionFailure},
	{"no_target_provided", model.BugInteractionFailure},
	{"selector_failed", model.BugInteractionFailure},
	{"fill_failed", model.BugInteractionFailure},
	{"click_failed", model.BugInteractionFailure},
	{"unexpected_error", model.BugUnknown},
}

// DetectBug сопоставляет код результата действия с таблицей правил и возвращает
// (обнаружен ли баг, тип, описание). Описание — шаблонная строка по типу бага
// с включенным исходным результатом.
func DetectBug(actionResult string) (bool, model.BugType, string) {
	if actionResult == "" {
		return false, "", ""
	}

	resultLower := strings.ToLower(actionResult)

	for _, p := range errorPatterns {
		if strings.Contains(resultLower, p.Substring) {
			return true, p.Type, bugDescription(p.Type, actionResult)
		}
	}

	if strings.Contains(resultLower, "error") {
		return true, model.BugUnknown, actionResult
	}

	return false, "", ""
}

func bugDescription(bugType model.BugType, result string) string {
	switch bugType {
	case model.BugUIError:
		return fmt.Sprintf("UI element issue: %s", result)
	case model.BugLoadingError:
		return fmt.Sprintf("Page loading problem: %s", result)
	case model.BugInteractionFailure:
		return fmt.Sprintf("Could not interact with element: %s", result)
	case model.BugValidationError:
		return fmt.Sprintf("Validation failed: %s", result)
	case model.BugNavigationError:
		return fmt.Sprintf("Navigation error: %s", result)
	default:
		return fmt.Sprintf("Unknown error: %s", result)
	}
}
