// Package logger предоставляет обертку над zap для структурированного логирования.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap — обертка над *zap.Logger с конфигурацией по окружению.
type Zap struct {
	*zap.Logger
}

// New создает логгер для заданного окружения и уровня.
// Для env "dev" используется человекочитаемый development-вывод,
// для остальных — production JSON.
func New(env, level string) (*Zap, error) {
	var cfg zap.Config
	if env == "dev" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("ошибка создания логгера: %w", err)
	}

	return &Zap{Logger: log}, nil
}

// NewNop возвращает логгер-заглушку для тестов.
func NewNop() *Zap {
	return &Zap{Logger: zap.NewNop()}
}

// Sync сбрасывает буферы. Ошибки sync для stderr игнорируются.
func (z *Zap) Sync() {
	_ = z.Logger.Sync()
}
