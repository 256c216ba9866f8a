package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"uxagent/internal/browser"
	"uxagent/internal/logger"
)

// Скриншоты шире этого значения ужимаются перед сохранением.
const maxScreenshotWidth = 1280

// ScreenshotStore сохраняет скриншоты шагов на диск и выдаёт
// ссылку вида /static/{run_id}/{agent_id}_step{N}.png.
type ScreenshotStore struct {
	dir string
	log *logger.Zap
}

func NewScreenshotStore(dataDir string, log *logger.Zap) *ScreenshotStore {
	return &ScreenshotStore{dir: dataDir, log: log}
}

// Capture снимает страницу и пишет файл. Ссылка детерминирована и
// возвращается даже при неудачном снимке: запись в трассе всегда
// указывает, где скриншот должен лежать.
func (s *ScreenshotStore) Capture(ctx context.Context, session browser.Session, runID, agentID string, step int, fullPage bool) string {
	filename := fmt.Sprintf("%s_step%d.png", agentID, step)
	ref := fmt.Sprintf("/static/%s/%s", runID, filename)

	data, err := session.Screenshot(ctx, fullPage)
	if err != nil {
		s.log.Warn("не удалось снять скриншот", zap.Int("step", step), zap.Error(err))
		return ref
	}

	if err := s.save(data, filepath.Join(s.dir, runID, filename)); err != nil {
		s.log.Warn("не удалось сохранить скриншот", zap.Int("step", step), zap.Error(err))
	}
	return ref
}

func (s *ScreenshotStore) save(data []byte, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога скриншотов: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		// нераспознанный формат пишем как есть
		return os.WriteFile(path, data, 0o644)
	}

	if img.Bounds().Dx() > maxScreenshotWidth {
		img = imaging.Resize(img, maxScreenshotWidth, 0, imaging.Lanczos)
	}

	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("ошибка записи скриншота: %w", err)
	}
	return nil
}
