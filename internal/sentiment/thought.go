package sentiment

import (
	"fmt"

	"uxagent/internal/model"
)

// Thought строит шаблонную "мысль" пользователя для записи в транскрипт.
// Это чисто косметическая нарративная строка, не влияющая на планирование.
// Шаблоны при обнаруженном баге имеют приоритет над сентиментными.
func Thought(s model.SentimentLevel, bugDetected bool, actionType model.ActionType) string {
	if bugDetected {
		if s == model.SentimentFrustrated {
			return "This is really frustrating. The site keeps having issues."
		}
		return "Hmm, encountered an issue. Let me try a different approach."
	}

	switch s {
	case model.SentimentVeryPositive:
		return "Great! This is exactly what I was looking for."
	case model.SentimentPositive:
		return fmt.Sprintf("This looks good. Let me %s here.", actionType)
	case model.SentimentNegative:
		return "This isn't quite what I expected. Let me see if I can find what I need."
	case model.SentimentFrustrated:
		return "This is taking too long. The site seems confusing."
	default:
		return fmt.Sprintf("Let me %s to explore further.", actionType)
	}
}

// ErrorThought — мысль для шага, завершившегося необработанной ошибкой.
// Вызывается циклом агента на исключительном пути.
func ErrorThought(s model.SentimentLevel) string {
	switch s {
	case model.SentimentFrustrated:
		return "This is really frustrating. The site keeps having technical issues."
	case model.SentimentNegative:
		return "Another error. This site is not working well."
	default:
		return "Encountered a technical issue. This is getting frustrating."
	}
}
