package database

import (
	"gorm.io/gorm"

	"uxagent/internal/model"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun записывает транскрипт запуска: итоговую строку и все шаги
// журнала одной транзакцией.
func (r *RunRepository) SaveRun(output *model.AgentOutput, transcriptPath string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		run := &AgentRun{
			RunID:            output.RunID,
			AgentID:          output.AgentID,
			PersonaName:      output.Persona.Name,
			PersonaBio:       output.Persona.Bio,
			URL:              output.Session.URL,
			FinishReason:     string(output.FinishReason),
			OverallSentiment: output.OverallSentiment.String(),
			BugsEncountered:  output.BugsEncountered,
			DropoffReason:    output.DropoffReason,
			TranscriptPath:   transcriptPath,
		}
		if err := tx.Create(run).Error; err != nil {
			return err
		}

		for _, it := range output.Interactions {
			row := &AgentInteraction{
				AgentRunID:     run.ID,
				Step:           it.Step,
				Intent:         it.Intent,
				ActionType:     string(it.ActionType),
				Selector:       it.Selector,
				Value:          it.Value,
				Result:         it.Result,
				Thought:        it.Thought,
				Screenshot:     it.Screenshot,
				BugDetected:    it.BugDetected,
				BugType:        string(it.BugType),
				BugDescription: it.BugDescription,
				Sentiment:      it.Sentiment.String(),
				UserFeeling:    it.UserFeeling,
				Timestamp:      it.Timestamp,
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RunRepository) GetRunByAgentID(agentID string) (*AgentRun, error) {
	var run AgentRun
	if err := r.db.Where("agent_id = ?", agentID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *RunRepository) ListRunsByRunID(runID string) ([]AgentRun, error) {
	var runs []AgentRun
	if err := r.db.Where("run_id = ?", runID).Order("id").Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *RunRepository) ListInteractions(agentRunID uint) ([]AgentInteraction, error) {
	var rows []AgentInteraction
	if err := r.db.Where("agent_run_id = ?", agentRunID).Order("step").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RunsWithBugs возвращает запуски, в которых встретился хотя бы один баг.
func (r *RunRepository) RunsWithBugs(limit int) ([]AgentRun, error) {
	var runs []AgentRun
	if err := r.db.Where("bugs_encountered > 0").
		Order("id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
