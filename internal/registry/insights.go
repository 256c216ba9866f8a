package registry

import (
	"strings"

	"uxagent/internal/model"
)

// Insights — сводка по транскрипту для быстрых выборок без повторного
// чтения файла с диска.
type Insights struct {
	FinishReason     model.FinishReason   `json:"finish_reason"`
	OverallSentiment model.SentimentLevel `json:"overall_sentiment"`
	BugsEncountered  int                  `json:"bugs_encountered"`
	DropoffReason    string               `json:"dropoff_reason,omitempty"`

	TotalSteps           int             `json:"total_steps"`
	SentimentProgression string          `json:"sentiment_progression,omitempty"`
	FinalSentiment       string          `json:"final_sentiment,omitempty"`
	ActionBreakdown      map[string]int  `json:"action_breakdown,omitempty"`
	BugSteps             []int           `json:"bug_steps,omitempty"`
	BugTypes             []model.BugType `json:"bug_types,omitempty"`
	SuccessRate          float64         `json:"success_rate"`
	ErrorRate            float64         `json:"error_rate"`

	UserDroppedOff  bool    `json:"user_dropped_off"`
	TaskSuccessful  bool    `json:"task_successful"`
	DurationSeconds float64 `json:"session_duration_seconds,omitempty"`
	AvgTimePerStep  float64 `json:"avg_time_per_step,omitempty"`
}

var successWords = []string{"clicked", "filled", "navigated", "scrolled", "success"}

// ExtractInsights собирает сводку по готовому транскрипту.
func ExtractInsights(output *model.AgentOutput) *Insights {
	if output == nil {
		return nil
	}

	ins := &Insights{
		FinishReason:     output.FinishReason,
		OverallSentiment: output.OverallSentiment,
		BugsEncountered:  output.BugsEncountered,
		DropoffReason:    output.DropoffReason,
		TotalSteps:       len(output.Interactions),
		UserDroppedOff:   output.FinishReason == model.FinishUserDropoff,
		TaskSuccessful:   output.FinishReason == model.FinishSuccess,
	}

	interactions := output.Interactions
	if len(interactions) == 0 {
		return ins
	}

	sentiments := make([]string, 0, len(interactions))
	breakdown := make(map[string]int)
	seenBugTypes := make(map[model.BugType]struct{})
	successful, failed := 0, 0

	for _, it := range interactions {
		sentiments = append(sentiments, it.Sentiment.String())
		if it.ActionType != "" {
			breakdown[string(it.ActionType)]++
		}
		if it.BugDetected {
			ins.BugSteps = append(ins.BugSteps, it.Step)
			if it.BugType != "" {
				if _, ok := seenBugTypes[it.BugType]; !ok {
					seenBugTypes[it.BugType] = struct{}{}
					ins.BugTypes = append(ins.BugTypes, it.BugType)
				}
			}
			failed++
		}
		if containsAny(strings.ToLower(it.Result), successWords) {
			successful++
		}
	}

	ins.SentimentProgression = strings.Join(sentiments, " -> ")
	ins.FinalSentiment = sentiments[len(sentiments)-1]
	ins.ActionBreakdown = breakdown
	ins.SuccessRate = float64(successful) / float64(len(interactions))
	ins.ErrorRate = float64(failed) / float64(len(interactions))

	if len(interactions) > 1 {
		first := interactions[0].Timestamp
		last := interactions[len(interactions)-1].Timestamp
		if !first.IsZero() && !last.IsZero() {
			ins.DurationSeconds = last.Sub(first).Seconds()
			ins.AvgTimePerStep = ins.DurationSeconds / float64(len(interactions))
		}
	}

	return ins
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
