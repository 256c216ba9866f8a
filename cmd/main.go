package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"uxagent/internal/agent"
	"uxagent/internal/browser"
	"uxagent/internal/config"
	"uxagent/internal/database"
	"uxagent/internal/executor"
	"uxagent/internal/logger"
	"uxagent/internal/migrations"
	"uxagent/internal/model"
	"uxagent/internal/planner"
	"uxagent/internal/registry"
	"uxagent/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	run, err := readRunConfig(cfg)
	if err != nil {
		log.Fatal("Некорректная конфигурация запуска", zap.Error(err))
	}

	if cfg.OpenAI.KeyAI == "" {
		log.Fatal("Не задан OPENAI_API_KEY")
	}

	// База опциональна: без DB_HOST транскрипт остается только на диске.
	var repo *database.RunRepository
	if cfg.Database.Host != "" {
		if err := migrations.Run(cfg, log); err != nil {
			log.Fatal("Ошибка миграций", zap.Error(err))
		}

		db, err := database.New(cfg, log)
		if err != nil {
			log.Fatal("Ошибка подключения к БД", zap.Error(err))
		}
		defer db.Close(log)

		repo = database.NewRunRepository(db.DB)
	}

	reg, err := registry.Open(cfg.Agent.DataDir, log)
	if err != nil {
		log.Fatal("Ошибка открытия реестра агентов", zap.Error(err))
	}

	transcripts, err := storage.NewTranscriptStore(cfg.Agent.DataDir)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища транскриптов", zap.Error(err))
	}

	limiter := planner.NewRateLimiter(60, 90000)
	plan := planner.NewLLMPlanner(cfg.OpenAI.KeyAI, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, limiter, log)
	screenshots := executor.NewScreenshotStore(cfg.Agent.DataDir, log)

	ag := agent.New(plan, screenshots, log, agent.Config{
		Browser: browser.Config{
			Headless:        cfg.Browser.Headless,
			BrowsersPath:    cfg.Browser.BrowsersPath,
			ActionTimeout:   cfg.Browser.ActionTimeout,
			NavigateTimeout: cfg.Browser.NavigateTimeout,
		},
	})

	if _, err := reg.Create(ag.AgentID(), *run); err != nil {
		log.Fatal("Ошибка регистрации агента", zap.Error(err))
	}
	if err := reg.UpdateStatus(ag.AgentID(), registry.StatusRunning); err != nil {
		log.Warn("не удалось обновить статус агента", zap.Error(err))
	}

	output, err := ag.Run(context.Background(), *run)
	if err != nil {
		_ = reg.UpdateStatus(ag.AgentID(), registry.StatusFailed)
		log.Fatal("Запуск агента не удался", zap.Error(err))
	}

	path, err := transcripts.Save(output)
	if err != nil {
		log.Fatal("Ошибка сохранения транскрипта", zap.Error(err))
	}

	if err := reg.AttachTranscript(ag.AgentID(), path, output); err != nil {
		log.Warn("не удалось записать инсайты в реестр", zap.Error(err))
	}
	if err := reg.UpdateStatus(ag.AgentID(), registry.StatusFinished); err != nil {
		log.Warn("не удалось обновить статус агента", zap.Error(err))
	}

	if repo != nil {
		if err := repo.SaveRun(output, path); err != nil {
			log.Error("Ошибка записи запуска в БД", zap.Error(err))
		}
	}

	log.Info("запуск завершен",
		zap.String("agent_id", output.AgentID),
		zap.String("finish_reason", string(output.FinishReason)),
		zap.String("overall_sentiment", output.OverallSentiment.String()),
		zap.String("transcript", path))

	fmt.Println(path)
}

// readRunConfig читает конфигурацию запуска из JSON-файла (первый аргумент)
// и дополняет незаполненные лимиты значениями из окружения.
func readRunConfig(cfg *config.Cfg) (*model.RunConfig, error) {
	if len(os.Args) < 2 {
		return nil, fmt.Errorf("использование: %s <run-config.json>", filepath.Base(os.Args[0]))
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации запуска: %w", err)
	}

	var run model.RunConfig
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации запуска: %w", err)
	}
	if run.RunID == "" || run.URL == "" {
		return nil, fmt.Errorf("в конфигурации запуска обязательны run_id и url")
	}

	if run.StepBudget == 0 {
		run.StepBudget = cfg.Agent.StepBudget
	}
	if run.MaxConsecutiveErrors == 0 {
		run.MaxConsecutiveErrors = cfg.Agent.MaxConsecutiveErrors
	}
	run.Normalize()

	return &run, nil
}
