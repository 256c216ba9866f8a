// Package database предоставляет модели данных и репозиторий для работы с PostgreSQL.
// Использует GORM ORM с prepared statements для защиты от SQL injection.
package database

import "time"

// AgentRun — итог одного запуска агента.
// FinishReason: success, step_budget_reached, consecutive_errors, user_dropoff, nav_failure.
type AgentRun struct {
	ID               uint      `gorm:"primaryKey"`
	RunID            string    `gorm:"type:varchar(64);index;not null"` // Идентификатор запуска теста
	AgentID          string    `gorm:"type:varchar(32);index;not null"` // Идентификатор агента
	PersonaName      string    `gorm:"type:varchar(128)"`
	PersonaBio       string    `gorm:"type:text"`
	URL              string    `gorm:"type:text;not null"`   // Целевая страница
	UXQuestion       string    `gorm:"type:text"`            // Вопрос UX-исследования
	FinishReason     string    `gorm:"type:varchar(32)"`     // Причина завершения цикла
	OverallSentiment string    `gorm:"type:varchar(16)"`     // Итоговый сентимент запуска
	BugsEncountered  int       `gorm:"not null;default:0"`   // Количество обнаруженных багов
	DropoffReason    string    `gorm:"type:text"`            // Причина ухода пользователя (если был)
	TranscriptPath   string    `gorm:"type:text"`            // Путь к JSON-транскрипту на диске
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

// AgentInteraction — один шаг журнала взаимодействий запуска.
type AgentInteraction struct {
	ID             uint      `gorm:"primaryKey"`
	AgentRunID     uint      `gorm:"index;not null"`            // ID запуска
	Step           int       `gorm:"not null"`                  // Номер шага
	Intent         string    `gorm:"type:text"`                 // Намерение пользователя
	ActionType     string    `gorm:"type:varchar(16);not null"` // Тип действия (click, scroll, fill, wait, nav)
	Selector       string    `gorm:"type:text"`                 // Селектор цели
	Value          string    `gorm:"type:text"`                 // Значение для fill/nav
	Result         string    `gorm:"type:text"`                 // Код результата выполнения
	Thought        string    `gorm:"type:text"`                 // Мысль симулируемого пользователя
	Screenshot     string    `gorm:"type:text"`                 // Ссылка на скриншот шага
	BugDetected    bool      `gorm:"not null;default:false"`
	BugType        string    `gorm:"type:varchar(32)"`
	BugDescription string    `gorm:"type:text"`
	Sentiment      string    `gorm:"type:varchar(16)"` // Сентимент на момент шага
	UserFeeling    string    `gorm:"type:text"`
	Timestamp      time.Time // Момент шага
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}
