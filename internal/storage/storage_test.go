package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uxagent/internal/model"
)

func sampleOutput(agentID string) *model.AgentOutput {
	return &model.AgentOutput{
		AgentID: agentID,
		RunID:   "run1",
		Persona: model.Persona{Name: "Anna", Bio: "busy product manager"},
		Session: model.Session{URL: "https://example.com", Device: model.DeviceMobile, Browser: "chromium"},
		Interactions: []model.Interaction{
			{
				Step:       1,
				Intent:     "Click the main button",
				ActionType: model.ActionClick,
				Selector:   "#main",
				Result:     "clicked",
				Thought:    "This looks good. Let me click here.",
				Timestamp:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
				Sentiment:  model.SentimentNeutral,
			},
		},
		FinishReason:     model.FinishStepBudgetReached,
		OverallSentiment: model.SentimentNeutral,
	}
}

func TestTranscriptSaveAndLoad(t *testing.T) {
	store, err := NewTranscriptStore(t.TempDir())
	require.NoError(t, err)

	output := sampleOutput("agent_abc123")
	path, err := store.Save(output)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("run1", "agent_abc123_transcript.json"), relPath(t, store.dataDir, path))

	_, err = os.Stat(path)
	require.NoError(t, err)

	loaded, err := store.Load("run1", "agent_abc123")
	require.NoError(t, err)
	assert.Equal(t, output.AgentID, loaded.AgentID)
	assert.Equal(t, output.FinishReason, loaded.FinishReason)
	require.Len(t, loaded.Interactions, 1)
	assert.Equal(t, "clicked", loaded.Interactions[0].Result)
	assert.True(t, output.Interactions[0].Timestamp.Equal(loaded.Interactions[0].Timestamp))
}

func TestTranscriptLoadMissing(t *testing.T) {
	store, err := NewTranscriptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("run1", "agent_missing")
	assert.Error(t, err)
}

func TestTranscriptList(t *testing.T) {
	store, err := NewTranscriptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(sampleOutput("agent_a"))
	require.NoError(t, err)
	_, err = store.Save(sampleOutput("agent_b"))
	require.NoError(t, err)

	other := sampleOutput("agent_c")
	other.RunID = "run2"
	_, err = store.Save(other)
	require.NoError(t, err)

	outputs, err := store.List("run1")
	require.NoError(t, err)
	assert.Len(t, outputs, 2)

	// каталог несуществующего запуска дает пустой список
	outputs, err = store.List("run_nope")
	require.NoError(t, err)
	assert.Empty(t, outputs)
}

// Повторное сохранение того же агента перезаписывает файл, не плодя копии.
func TestTranscriptSaveOverwrites(t *testing.T) {
	store, err := NewTranscriptStore(t.TempDir())
	require.NoError(t, err)

	output := sampleOutput("agent_abc123")
	_, err = store.Save(output)
	require.NoError(t, err)

	output.BugsEncountered = 3
	_, err = store.Save(output)
	require.NoError(t, err)

	outputs, err := store.List("run1")
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, 3, outputs[0].BugsEncountered)
}

func relPath(t *testing.T, base, path string) string {
	t.Helper()
	rel, err := filepath.Rel(base, path)
	require.NoError(t, err)
	return rel
}
