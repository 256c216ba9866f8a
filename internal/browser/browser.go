package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/playwright-community/playwright-go"

	"uxagent/internal/model"
)

const (
	// Viewport iPhone 14 Pro для мобильного режима
	mobileWidth  = 393
	mobileHeight = 852
	mobileUA     = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15"

	desktopWidth  = 1920
	desktopHeight = 1080

	// пауза после навигации для прогрузки динамического контента
	settleDelay = 500 * time.Millisecond
)

// Launch запускает Chromium и открывает одну вкладку с viewport'ом
// по конфигурации запуска.
func Launch(ctx context.Context, cfg Config) (*PlaywrightSession, error) {
	// Установка дефолтных таймаутов
	if cfg.ActionTimeout == 0 {
		cfg.ActionTimeout = 5 * time.Second
	}
	if cfg.NavigateTimeout == 0 {
		cfg.NavigateTimeout = 30 * time.Second
	}

	if cfg.BrowsersPath != "" {
		_ = os.Setenv("PLAYWRIGHT_BROWSERS_PATH", cfg.BrowsersPath)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("ошибка запуска playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     []string{"--no-sandbox", "--disable-setuid-sandbox"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("ошибка запуска браузера: %w", err)
	}

	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: desktopWidth, Height: desktopHeight},
	}
	if cfg.Viewport == model.ViewportMobile {
		opts.Viewport = &playwright.Size{Width: mobileWidth, Height: mobileHeight}
		opts.UserAgent = playwright.String(mobileUA)
	}

	bctx, err := b.NewContext(opts)
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("ошибка создания контекста браузера: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("ошибка открытия вкладки: %w", err)
	}
	page.SetDefaultTimeout(float64(cfg.ActionTimeout.Milliseconds()))

	return &PlaywrightSession{
		pw:      pw,
		browser: b,
		context: bctx,
		page:    page,
		cfg:     cfg,
	}, nil
}

func (s *PlaywrightSession) getPage() playwright.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

func (s *PlaywrightSession) Navigate(ctx context.Context, url string) error {
	page := s.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	_, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.cfg.NavigateTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("навигация на %s: %w", url, err)
	}

	// Короткая пауза поглощает подгрузку динамического контента
	time.Sleep(settleDelay)
	return nil
}

func (s *PlaywrightSession) URL() string {
	page := s.getPage()
	if page == nil {
		return ""
	}
	return page.URL()
}

func (s *PlaywrightSession) Title() (string, error) {
	page := s.getPage()
	if page == nil {
		return "", fmt.Errorf("браузер не запущен")
	}
	return page.Title()
}

func (s *PlaywrightSession) Evaluate(ctx context.Context, script string) (any, error) {
	page := s.getPage()
	if page == nil {
		return nil, fmt.Errorf("браузер не запущен")
	}
	return page.Evaluate(script)
}

func (s *PlaywrightSession) Count(selector string) (int, error) {
	page := s.getPage()
	if page == nil {
		return 0, fmt.Errorf("браузер не запущен")
	}
	return page.Locator(selector).Count()
}

func (s *PlaywrightSession) IsVisible(selector string) (bool, error) {
	page := s.getPage()
	if page == nil {
		return false, fmt.Errorf("браузер не запущен")
	}
	return page.Locator(selector).First().IsVisible()
}

func (s *PlaywrightSession) ScrollIntoView(ctx context.Context, selector string) error {
	page := s.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}
	return page.Locator(selector).First().ScrollIntoViewIfNeeded(
		playwright.LocatorScrollIntoViewIfNeededOptions{
			Timeout: playwright.Float(float64(s.cfg.ActionTimeout.Milliseconds())),
		})
}

func (s *PlaywrightSession) Click(ctx context.Context, selector string) error {
	page := s.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}
	return page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(s.cfg.ActionTimeout.Milliseconds())),
	})
}

func (s *PlaywrightSession) Fill(ctx context.Context, selector, value string) error {
	page := s.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}
	return page.Locator(selector).First().Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(float64(s.cfg.ActionTimeout.Milliseconds())),
	})
}

func (s *PlaywrightSession) ScrollBy(ctx context.Context, y int) error {
	page := s.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}
	_, err := page.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", y))
	return err
}

func (s *PlaywrightSession) WaitForLoad(ctx context.Context, state string) error {
	page := s.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	var loadState *playwright.LoadState
	switch state {
	case "load":
		loadState = playwright.LoadStateLoad
	case "networkidle":
		loadState = playwright.LoadStateNetworkidle
	default:
		loadState = playwright.LoadStateDomcontentloaded
	}

	return page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   loadState,
		Timeout: playwright.Float(float64(s.cfg.ActionTimeout.Milliseconds())),
	})
}

func (s *PlaywrightSession) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	page := s.getPage()
	if page == nil {
		return nil, fmt.Errorf("браузер не запущен")
	}
	return page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
	})
}

// Close освобождает вкладку, браузер и процесс playwright.
// Вызывается на любом пути завершения запуска, включая ошибки.
func (s *PlaywrightSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			return err
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			return err
		}
	}
	if s.pw != nil {
		return s.pw.Stop()
	}
	return nil
}
