// Package registry ведет реестр агентов: кто создан, в каком статусе,
// какие инсайты извлечены из его транскрипта. Реестр живет в памяти и
// зеркалируется в JSON-файл, переживая перезапуск процесса.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"uxagent/internal/logger"
	"uxagent/internal/model"
)

const registryFilename = "agent_registry.json"

const (
	StatusCreated  = "created"
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// AgentInfo — запись реестра об одном агенте.
type AgentInfo struct {
	AgentID     string    `json:"agent_id"`
	RunID       string    `json:"run_id"`
	PersonaName string    `json:"persona_name"`
	PersonaBio  string    `json:"persona_bio"`
	URL         string    `json:"url"`
	UXQuestion  string    `json:"ux_question"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	TranscriptPath string    `json:"transcript_path,omitempty"`
	Insights       *Insights `json:"insights,omitempty"`
}

type Registry struct {
	mu     sync.RWMutex
	agents map[string]*AgentInfo
	path   string
	log    *logger.Zap
}

// Open загружает реестр из каталога данных либо начинает пустой.
func Open(dataDir string, log *logger.Zap) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога данных: %w", err)
	}

	r := &Registry{
		agents: make(map[string]*AgentInfo),
		path:   filepath.Join(dataDir, registryFilename),
		log:    log,
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("ошибка чтения реестра: %w", err)
	}
	if err := json.Unmarshal(data, &r.agents); err != nil {
		return nil, fmt.Errorf("ошибка разбора реестра: %w", err)
	}

	log.Info("реестр агентов загружен", zap.Int("agents", len(r.agents)))
	return r, nil
}

// Create регистрирует агента в статусе created.
func (r *Registry) Create(agentID string, run model.RunConfig) (*AgentInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[agentID]; ok {
		return nil, fmt.Errorf("агент %s уже зарегистрирован", agentID)
	}

	now := time.Now().UTC()
	info := &AgentInfo{
		AgentID:     agentID,
		RunID:       run.RunID,
		PersonaName: run.Persona.Name,
		PersonaBio:  run.Persona.Bio,
		URL:         run.URL,
		UXQuestion:  run.UXQuestion,
		Status:      StatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.agents[agentID] = info

	if err := r.save(); err != nil {
		return nil, err
	}
	return info, nil
}

// UpdateStatus переводит агента в новый статус.
func (r *Registry) UpdateStatus(agentID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.agents[agentID]
	if !ok {
		return fmt.Errorf("агент %s не найден в реестре", agentID)
	}
	info.Status = status
	info.UpdatedAt = time.Now().UTC()
	return r.save()
}

// AttachTranscript записывает путь транскрипта и извлеченные из него инсайты.
func (r *Registry) AttachTranscript(agentID, transcriptPath string, output *model.AgentOutput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.agents[agentID]
	if !ok {
		return fmt.Errorf("агент %s не найден в реестре", agentID)
	}
	info.TranscriptPath = transcriptPath
	info.Insights = ExtractInsights(output)
	info.UpdatedAt = time.Now().UTC()
	return r.save()
}

func (r *Registry) Get(agentID string) (*AgentInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.agents[agentID]
	if !ok {
		return nil, false
	}
	clone := *info
	return &clone, true
}

func (r *Registry) ListByRun(runID string) []*AgentInfo {
	return r.list(func(info *AgentInfo) bool { return info.RunID == runID })
}

func (r *Registry) ListByStatus(status string) []*AgentInfo {
	return r.list(func(info *AgentInfo) bool { return info.Status == status })
}

func (r *Registry) list(match func(*AgentInfo) bool) []*AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*AgentInfo
	for _, info := range r.agents {
		if match(info) {
			clone := *info
			out = append(out, &clone)
		}
	}
	return out
}

// save пишет реестр атомарно: во временный файл, затем rename.
// Вызывается под записывающей блокировкой.
func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.agents, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации реестра: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("ошибка записи реестра: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("ошибка обновления реестра: %w", err)
	}
	return nil
}
