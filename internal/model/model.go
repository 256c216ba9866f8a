// Package model содержит общие структуры данных UX-агента: конфигурацию запуска,
// персону, действия планировщика, записи взаимодействий и итоговый транскрипт.
// Все enum-типы сериализуются в JSON строковыми значениями.
package model

import "time"

// Viewport определяет размер окна браузера для запуска.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

// DeviceType тип устройства в итоговой сессии.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
)

// Persona представляет симулируемого пользователя. Неизменяема в течение запуска.
type Persona struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// RunConfig содержит входные параметры одного запуска агента.
// Передается внешним коллаборатором до старта цикла и не меняется.
type RunConfig struct {
	RunID                string   `json:"run_id"`
	URL                  string   `json:"url"`
	Persona              Persona  `json:"persona"`
	UXQuestion           string   `json:"ux_question"`
	Viewport             Viewport `json:"viewport"`
	StepBudget           int      `json:"step_budget"`
	MaxConsecutiveErrors int      `json:"max_consecutive_errors"`
	Seed                 int      `json:"seed"`
}

// Normalize устанавливает дефолтные значения для незаполненных полей.
func (c *RunConfig) Normalize() {
	if c.Viewport == "" {
		c.Viewport = ViewportMobile
	}
	if c.StepBudget == 0 {
		c.StepBudget = 5
	}
	if c.MaxConsecutiveErrors == 0 {
		c.MaxConsecutiveErrors = 2
	}
	if c.Seed == 0 {
		c.Seed = 7
	}
}

// Session описывает браузерную сессию запуска в итоговом транскрипте.
type Session struct {
	URL     string     `json:"url"`
	Device  DeviceType `json:"device"`
	Browser string     `json:"browser"`
}

// FinishReason — терминальное состояние цикла агента.
type FinishReason string

const (
	FinishSuccess           FinishReason = "success"
	FinishStepBudgetReached FinishReason = "step_budget_reached"
	FinishConsecutiveErrors FinishReason = "consecutive_errors"
	FinishUserDropoff       FinishReason = "user_dropoff"
	FinishNavFailure        FinishReason = "nav_failure"
)

// Interaction — одна запись журнала взаимодействий, по одной на шаг.
// После создания не изменяется; порядок записей — это таймлайн запуска.
type Interaction struct {
	Step           int            `json:"step"`
	Intent         string         `json:"intent"`
	ActionType     ActionType     `json:"action_type"`
	Selector       string         `json:"selector,omitempty"`
	Value          string         `json:"value,omitempty"`
	Result         string         `json:"result"`
	Thought        string         `json:"thought"`
	Timestamp      time.Time      `json:"ts"`
	Screenshot     string         `json:"screenshot"`
	BugDetected    bool           `json:"bug_detected"`
	BugType        BugType        `json:"bug_type,omitempty"`
	BugDescription string         `json:"bug_description,omitempty"`
	Sentiment      SentimentLevel `json:"sentiment"`
	UserFeeling    string         `json:"user_feeling,omitempty"`
}

// AgentOutput — итоговый транскрипт запуска. Строится один раз при завершении
// цикла и передается коллаборатору хранилища.
type AgentOutput struct {
	AgentID           string         `json:"agent_id"`
	RunID             string         `json:"run_id"`
	Persona           Persona        `json:"persona"`
	Session           Session        `json:"session"`
	Interactions      []Interaction  `json:"interactions"`
	FinishReason      FinishReason   `json:"finish_reason"`
	OverallSentiment  SentimentLevel `json:"overall_sentiment"`
	BugsEncountered   int            `json:"bugs_encountered"`
	DropoffReason     string         `json:"dropoff_reason,omitempty"`
}

// OverallSentiment вычисляет итоговый сентимент мажоритарным голосованием по
// записям журнала. При равенстве голосов выигрывает первый по порядку
// объявления уровень (frustrated, negative, neutral, positive, very_positive).
// Пустая история дает neutral.
func OverallSentiment(interactions []Interaction) SentimentLevel {
	if len(interactions) == 0 {
		return SentimentNeutral
	}

	var counts [sentimentLevels]int
	for _, it := range interactions {
		if it.Sentiment >= 0 && it.Sentiment < sentimentLevels {
			counts[it.Sentiment]++
		}
	}

	best := SentimentFrustrated
	for lvl := SentimentFrustrated; lvl < sentimentLevels; lvl++ {
		if counts[lvl] > counts[best] {
			best = lvl
		}
	}
	return best
}
