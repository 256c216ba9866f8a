// Package planner выбирает следующее действие симулируемого пользователя.
// Единственная реализация ходит в OpenAI; контракт описан интерфейсом,
// тесты подставляют заглушку.
package planner

import (
	"context"

	"uxagent/internal/model"
)

// UserState — текущее эмоциональное состояние пользователя,
// вычисленное анализатором перед шагом.
type UserState struct {
	Sentiment model.SentimentLevel `json:"sentiment"`
	Feeling   string               `json:"feeling,omitempty"`
}

// Input собирает всё, что планировщик знает о запуске на момент шага.
type Input struct {
	PersonaBio string
	UXQuestion string
	Digest     *model.PageDigest
	Recent     []model.Interaction
	State      UserState
	Step       int
}

type Planner interface {
	PlanNextAction(ctx context.Context, in Input) (*model.PlanOutput, error)
}

// Fallback возвращает безопасное действие на случай, когда ответ модели
// не удалось разобрать: подождать секунду и посмотреть на страницу.
func Fallback() *model.PlanOutput {
	return &model.PlanOutput{
		Intent: "Wait and observe page state",
		Action: model.PlannedAction{
			Type: model.ActionWait,
			MS:   1000,
		},
		Rationale:  "Failed to parse LLM response, waiting",
		Confidence: 0.1,
	}
}
