// Package storage сохраняет транскрипты запусков на диск в JSON.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"uxagent/internal/model"
)

const transcriptSuffix = "_transcript.json"

// TranscriptStore пишет транскрипты в {dataDir}/{run_id}/{agent_id}_transcript.json.
type TranscriptStore struct {
	dataDir string
}

func NewTranscriptStore(dataDir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога транскриптов: %w", err)
	}
	return &TranscriptStore{dataDir: dataDir}, nil
}

// Save сохраняет транскрипт и возвращает путь к файлу.
func (s *TranscriptStore) Save(output *model.AgentOutput) (string, error) {
	runDir := filepath.Join(s.dataDir, output.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога запуска: %w", err)
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации транскрипта: %w", err)
	}

	path := filepath.Join(runDir, output.AgentID+transcriptSuffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("ошибка записи транскрипта: %w", err)
	}
	return path, nil
}

// Load читает транскрипт одного агента.
func (s *TranscriptStore) Load(runID, agentID string) (*model.AgentOutput, error) {
	path := filepath.Join(s.dataDir, runID, agentID+transcriptSuffix)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("транскрипт не найден: %w", err)
	}

	var output model.AgentOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("ошибка разбора транскрипта %s: %w", path, err)
	}
	return &output, nil
}

// List возвращает все транскрипты запуска. Отсутствующий каталог дает
// пустой список, не ошибку.
func (s *TranscriptStore) List(runID string) ([]*model.AgentOutput, error) {
	pattern := filepath.Join(s.dataDir, runID, "*"+transcriptSuffix)
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var outputs []*model.AgentOutput
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения транскрипта %s: %w", path, err)
		}
		var output model.AgentOutput
		if err := json.Unmarshal(data, &output); err != nil {
			return nil, fmt.Errorf("ошибка разбора транскрипта %s: %w", path, err)
		}
		outputs = append(outputs, &output)
	}
	return outputs, nil
}
