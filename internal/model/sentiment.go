package model

import (
	"encoding/json"
	"fmt"
)

// SentimentLevel — уровень эмоционального состояния пользователя.
// Порядок объявления задает полный порядок frustrated < negative < neutral <
// positive < very_positive и используется только для разрешения ничьих при
// мажоритарном голосовании.
type SentimentLevel int

const (
	SentimentFrustrated SentimentLevel = iota
	SentimentNegative
	SentimentNeutral
	SentimentPositive
	SentimentVeryPositive

	sentimentLevels = SentimentLevel(iota)
)

var sentimentNames = [sentimentLevels]string{
	"frustrated",
	"negative",
	"neutral",
	"positive",
	"very_positive",
}

func (s SentimentLevel) String() string {
	if s < 0 || s >= sentimentLevels {
		return "neutral"
	}
	return sentimentNames[s]
}

// IsNegative сообщает, относится ли уровень к негативной зоне
// (учитывается при проверке ухода пользователя).
func (s SentimentLevel) IsNegative() bool {
	return s == SentimentFrustrated || s == SentimentNegative
}

func (s SentimentLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SentimentLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range sentimentNames {
		if n == name {
			*s = SentimentLevel(i)
			return nil
		}
	}
	return fmt.Errorf("неизвестный уровень сентимента: %q", name)
}

// BugType — классификация обнаруженного UX-бага.
type BugType string

const (
	BugUIError            BugType = "ui_error"
	BugLoadingError       BugType = "loading_error"
	BugInteractionFailure BugType = "interaction_failure"
	BugValidationError    BugType = "validation_error"
	BugNavigationError    BugType = "navigation_error"
	BugUnknown            BugType = "unknown"
)
