// Package browser предоставляет браузерную сессию на базе Playwright.
// Одна сессия — одна вкладка, эксклюзивно принадлежащая одному запуску агента;
// доступ к ней идет только из последовательного цикла управления.
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"uxagent/internal/model"
)

// Session — интерфейс браузерной сессии для исполнителя действий и
// извлечения дайджеста. Любая библиотека автоматизации с этими примитивами
// взаимозаменяема; тесты используют фейковую реализацию.
type Session interface {
	Navigate(ctx context.Context, url string) error
	URL() string
	Title() (string, error)
	Evaluate(ctx context.Context, script string) (any, error)
	Count(selector string) (int, error)
	IsVisible(selector string) (bool, error)
	ScrollIntoView(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	ScrollBy(ctx context.Context, y int) error
	WaitForLoad(ctx context.Context, state string) error
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
	Close() error
}

// Config содержит настройки запуска браузерной сессии.
type Config struct {
	Headless        bool
	BrowsersPath    string
	Viewport        model.Viewport
	ActionTimeout   time.Duration
	NavigateTimeout time.Duration
}

// PlaywrightSession реализует Session поверх Playwright/Chromium.
type PlaywrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	cfg     Config
	mu      sync.RWMutex
}

var _ Session = (*PlaywrightSession)(nil)
