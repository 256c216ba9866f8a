package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"uxagent/internal/logger"
	"uxagent/internal/model"
)

const (
	recentStepsLimit = 5
	textPreviewLimit = 50
)

const systemMessage = `You are a UX test agent simulating a real user. Emit one next action at a time in valid JSON only.

CRITICAL: Review recent_steps to see what you've already done. DO NOT repeat the same action on the same element.

Explore systematically:
1. Check recent_steps - if you clicked something, don't click it again
2. If scrolling failed, try a different scroll method or move to other actions
3. Look for new elements after each action
4. Try search/filter features if looking for specific content
5. Navigate to subpages if main page doesn't have what you need

For scrolling:
- Use general scroll: {"type":"scroll"} to scroll down 300px
- Or scroll to element: {"type":"scroll","target":{"selector":"h2"}}

Keep rationale under 25 words.
Return exactly:
{"intent":"...","action":{"type":"click|scroll|fill|wait|nav","target":{"selector|text|role+name"},"value?":"","ms?":0},"rationale":"...","confidence":0.0}`

// LLMPlanner реализует Planner поверх chat-completions API в JSON-режиме.
type LLMPlanner struct {
	client    *openai.Client
	model     string
	maxTokens int
	limiter   *RateLimiter
	log       *logger.Zap
}

var _ Planner = (*LLMPlanner)(nil)

func NewLLMPlanner(apiKey, model string, maxTokens int, limiter *RateLimiter, log *logger.Zap) *LLMPlanner {
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &LLMPlanner{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
		limiter:   limiter,
		log:       log,
	}
}

// PlanNextAction запрашивает следующее действие. Ошибка возвращается только
// при сбое самого запроса; неразборчивый ответ превращается в Fallback,
// цикл агента от этого не падает.
func (p *LLMPlanner) PlanNextAction(ctx context.Context, in Input) (*model.PlanOutput, error) {
	prompt, err := json.MarshalIndent(buildPlanInput(in), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса планировщику: %w", err)
	}

	if p.limiter != nil {
		if err := p.limiter.AllowRequest(ctx); err != nil {
			return nil, err
		}
		// Грубая оценка: ~4 символа на токен
		if err := p.limiter.AllowTokens(ctx, len(prompt)/4+p.maxTokens); err != nil {
			return nil, err
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: string(prompt)},
		},
		MaxTokens:   p.maxTokens,
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("пустой ответ от OpenAI")
	}

	// Корректировка бюджета по фактическому расходу, если оценка занизила
	if p.limiter != nil {
		if extra := resp.Usage.TotalTokens - (len(prompt)/4 + p.maxTokens); extra > 0 {
			p.limiter.ConsumeTokens(extra)
		}
	}

	plan, parseErr := parsePlan(resp.Choices[0].Message.Content)
	if parseErr != nil {
		p.log.Warn("не удалось разобрать ответ планировщика",
			zap.Int("step", in.Step), zap.Error(parseErr))
		return Fallback(), nil
	}
	return plan, nil
}

type planInput struct {
	PersonaBio  string           `json:"persona_bio"`
	UXQuestion  string           `json:"ux_question"`
	UserState   UserState        `json:"current_user_state"`
	PageDigest  digestView       `json:"page_digest"`
	RecentSteps []recentStep     `json:"recent_steps"`
	ActionSpace []actionSpaceDef `json:"action_space"`
	Constraints constraints      `json:"constraints"`
}

type digestView struct {
	Title        string        `json:"title"`
	URL          string        `json:"url"`
	Headings     []string      `json:"headings"`
	Interactives []elementView `json:"interactives"`
}

type elementView struct {
	Role         string `json:"role"`
	Name         string `json:"name,omitempty"`
	Text         string `json:"text,omitempty"`
	SelectorHint string `json:"selector_hint,omitempty"`
}

type recentStep struct {
	Step       int    `json:"step"`
	Intent     string `json:"intent"`
	ActionType string `json:"action_type"`
	Selector   string `json:"selector,omitempty"`
	Result     string `json:"result"`
	Thought    string `json:"thought"`
}

type actionSpaceDef struct {
	Type   string   `json:"type"`
	Fields []string `json:"fields"`
}

type constraints struct {
	ReturnFormat      string   `json:"return_format"`
	MaxWordsRationale int      `json:"max_words_rationale"`
	Forbidden         []string `json:"forbidden"`
	Preferences       []string `json:"preferences"`
}

func buildPlanInput(in Input) planInput {
	recent := in.Recent
	if len(recent) > recentStepsLimit {
		recent = recent[len(recent)-recentStepsLimit:]
	}
	steps := make([]recentStep, 0, len(recent))
	for _, it := range recent {
		steps = append(steps, recentStep{
			Step:       it.Step,
			Intent:     it.Intent,
			ActionType: string(it.ActionType),
			Selector:   it.Selector,
			Result:     it.Result,
			Thought:    it.Thought,
		})
	}

	view := digestView{}
	if in.Digest != nil {
		view.Title = in.Digest.Title
		view.URL = in.Digest.URL
		view.Headings = in.Digest.Headings
		if len(view.Headings) > 5 {
			view.Headings = view.Headings[:5]
		}
		for _, el := range in.Digest.Interactives {
			text := el.Text
			if len(text) > textPreviewLimit {
				text = text[:textPreviewLimit]
			}
			view.Interactives = append(view.Interactives, elementView{
				Role:         el.Role,
				Name:         el.Name,
				Text:         text,
				SelectorHint: el.SelectorHint,
			})
		}
	}

	return planInput{
		PersonaBio:  in.PersonaBio,
		UXQuestion:  in.UXQuestion,
		UserState:   in.State,
		PageDigest:  view,
		RecentSteps: steps,
		ActionSpace: []actionSpaceDef{
			{Type: "click", Fields: []string{"selector|text|role+name"}},
			{Type: "scroll", Fields: []string{"amount?", "to_selector?"}},
			{Type: "fill", Fields: []string{"selector", "value"}},
			{Type: "wait", Fields: []string{"ms"}},
			{Type: "nav", Fields: []string{"url"}},
		},
		Constraints: constraints{
			ReturnFormat:      "single_action_json",
			MaxWordsRationale: 25,
			Forbidden:         []string{"multi-step plans", "code"},
			Preferences: []string{
				"prefer role/text/label over CSS",
				"avoid repeating same action+selector 3x",
				"choose action that most advances the UX goal",
			},
		},
	}
}

type planResponse struct {
	Intent string `json:"intent"`
	Action struct {
		Type   string `json:"type"`
		Target *struct {
			Selector string `json:"selector"`
			Text     string `json:"text"`
			Role     string `json:"role"`
			Name     string `json:"name"`
		} `json:"target"`
		Value string `json:"value"`
		MS    int    `json:"ms"`
	} `json:"action"`
	Rationale  string   `json:"rationale"`
	Confidence *float64 `json:"confidence"`
}

func parsePlan(content string) (*model.PlanOutput, error) {
	var raw planResponse
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("некорректный JSON: %w", err)
	}

	action := model.PlannedAction{
		Type:  model.ActionType(raw.Action.Type),
		Value: raw.Action.Value,
		MS:    raw.Action.MS,
	}
	if t := raw.Action.Target; t != nil {
		action.Target = &model.ActionTarget{
			Selector: t.Selector,
			Text:     t.Text,
			Role:     t.Role,
			Name:     t.Name,
		}
	}
	if err := action.Validate(); err != nil {
		return nil, err
	}

	confidence := 0.7
	if raw.Confidence != nil {
		confidence = *raw.Confidence
	}

	return &model.PlanOutput{
		Intent:     raw.Intent,
		Action:     action,
		Rationale:  raw.Rationale,
		Confidence: confidence,
	}, nil
}
