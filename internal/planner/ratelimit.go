package planner

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter ограничивает частоту запросов и расход токенов по схеме
// token bucket: вёдра пополняются пропорционально прошедшему времени.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	requests          float64
	requestsAt        time.Time

	tokensPerHour int
	tokens        float64
	tokensAt      time.Time
}

func NewRateLimiter(requestsPerMinute, tokensPerHour int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if tokensPerHour <= 0 {
		tokensPerHour = 90000 // GPT-4 tier 1
	}

	now := time.Now()
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requests:          float64(requestsPerMinute),
		requestsAt:        now,
		tokensPerHour:     tokensPerHour,
		tokens:            float64(tokensPerHour),
		tokensAt:          now,
	}
}

func (rl *RateLimiter) refill(now time.Time) {
	rl.requests += now.Sub(rl.requestsAt).Minutes() * float64(rl.requestsPerMinute)
	if rl.requests > float64(rl.requestsPerMinute) {
		rl.requests = float64(rl.requestsPerMinute)
	}
	rl.requestsAt = now

	rl.tokens += now.Sub(rl.tokensAt).Hours() * float64(rl.tokensPerHour)
	if rl.tokens > float64(rl.tokensPerHour) {
		rl.tokens = float64(rl.tokensPerHour)
	}
	rl.tokensAt = now
}

// AllowRequest списывает один запрос из ведра.
func (rl *RateLimiter) AllowRequest(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(time.Now())
	if rl.requests < 1 {
		wait := time.Minute / time.Duration(rl.requestsPerMinute)
		return fmt.Errorf("превышен лимит запросов (%d RPM), повторите через %v", rl.requestsPerMinute, wait)
	}
	rl.requests--
	return nil
}

// AllowTokens проверяет и резервирует бюджет токенов под запрос.
func (rl *RateLimiter) AllowTokens(ctx context.Context, tokens int) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(time.Now())
	if rl.tokens < float64(tokens) {
		return fmt.Errorf("превышен лимит токенов (%d TPH): требуется %d, доступно %d",
			rl.tokensPerHour, tokens, int(rl.tokens))
	}
	rl.tokens -= float64(tokens)
	return nil
}

// ConsumeTokens дописывает фактический расход после ответа, когда он
// оказался выше оценки.
func (rl *RateLimiter) ConsumeTokens(tokens int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokens -= float64(tokens)
	if rl.tokens < 0 {
		rl.tokens = 0
	}
}
