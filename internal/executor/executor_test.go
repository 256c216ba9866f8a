package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uxagent/internal/logger"
	"uxagent/internal/model"
)

type stubSession struct {
	visible  map[string]bool
	clickErr error

	scrolledBy []int
	navigated  []string

	shot    []byte
	shotErr error
}

func (s *stubSession) Navigate(ctx context.Context, url string) error {
	s.navigated = append(s.navigated, url)
	return nil
}
func (s *stubSession) URL() string            { return "https://example.com" }
func (s *stubSession) Title() (string, error) { return "Example", nil }
func (s *stubSession) Evaluate(ctx context.Context, script string) (any, error) {
	return nil, nil
}

func (s *stubSession) Count(selector string) (int, error) {
	if _, ok := s.visible[selector]; ok {
		return 1, nil
	}
	return 0, nil
}

func (s *stubSession) IsVisible(selector string) (bool, error) { return s.visible[selector], nil }

func (s *stubSession) ScrollIntoView(ctx context.Context, selector string) error { return nil }

func (s *stubSession) Click(ctx context.Context, selector string) error { return s.clickErr }

func (s *stubSession) Fill(ctx context.Context, selector, value string) error { return nil }

func (s *stubSession) ScrollBy(ctx context.Context, y int) error {
	s.scrolledBy = append(s.scrolledBy, y)
	return nil
}

func (s *stubSession) WaitForLoad(ctx context.Context, state string) error { return nil }

func (s *stubSession) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return s.shot, s.shotErr
}

func (s *stubSession) Close() error { return nil }

func TestExecuteClickWithoutTarget(t *testing.T) {
	e := New(&stubSession{}, logger.NewNop())

	code, err := e.Execute(context.Background(), &model.PlannedAction{Type: model.ActionClick})

	require.NoError(t, err)
	assert.Equal(t, "no_target_provided", code)
}

func TestExecuteClickSuccess(t *testing.T) {
	session := &stubSession{visible: map[string]bool{"#buy": true}}
	e := New(session, logger.NewNop())

	action := &model.PlannedAction{Type: model.ActionClick, Target: &model.ActionTarget{Selector: "#buy"}}
	code, err := e.Execute(context.Background(), action)

	require.NoError(t, err)
	assert.Equal(t, "clicked", code)
}

func TestExecuteClickFailedWhenAllCandidatesError(t *testing.T) {
	session := &stubSession{
		visible:  map[string]bool{"#buy": true},
		clickErr: fmt.Errorf("element detached"),
	}
	e := New(session, logger.NewNop())

	action := &model.PlannedAction{Type: model.ActionClick, Target: &model.ActionTarget{Selector: "#buy"}}
	code, err := e.Execute(context.Background(), action)

	assert.Error(t, err)
	assert.Equal(t, "click_failed", code)
}

func TestExecuteGeneralScroll(t *testing.T) {
	session := &stubSession{}
	e := New(session, logger.NewNop())

	code, err := e.Execute(context.Background(), &model.PlannedAction{Type: model.ActionScroll})

	require.NoError(t, err)
	assert.Equal(t, "scrolled", code)
	assert.Equal(t, []int{300}, session.scrolledBy)
}

func TestExecuteScrollToElement(t *testing.T) {
	session := &stubSession{visible: map[string]bool{"h2": true}}
	e := New(session, logger.NewNop())

	action := &model.PlannedAction{Type: model.ActionScroll, Target: &model.ActionTarget{Selector: "h2"}}
	code, err := e.Execute(context.Background(), action)

	require.NoError(t, err)
	assert.Equal(t, "scrolled_to_element", code)
}

func TestExecuteFillWithoutValue(t *testing.T) {
	e := New(&stubSession{}, logger.NewNop())

	action := &model.PlannedAction{Type: model.ActionFill, Target: &model.ActionTarget{Selector: "#q"}}
	code, err := e.Execute(context.Background(), action)

	require.NoError(t, err)
	assert.Equal(t, "selector_not_found_or_no_value", code)
}

func TestExecuteWait(t *testing.T) {
	e := New(&stubSession{}, logger.NewNop())

	code, err := e.Execute(context.Background(), &model.PlannedAction{Type: model.ActionWait, MS: 10})

	require.NoError(t, err)
	assert.Equal(t, "waited_10ms", code)
}

func TestExecuteNav(t *testing.T) {
	session := &stubSession{}
	e := New(session, logger.NewNop())

	code, err := e.Execute(context.Background(), &model.PlannedAction{Type: model.ActionNav, Value: "https://example.com/cart"})

	require.NoError(t, err)
	assert.Equal(t, "navigated", code)
	assert.Equal(t, []string{"https://example.com/cart"}, session.navigated)

	code, err = e.Execute(context.Background(), &model.PlannedAction{Type: model.ActionNav})
	require.NoError(t, err)
	assert.Equal(t, "no_url_provided", code)
}

func TestExecuteUnknownAction(t *testing.T) {
	e := New(&stubSession{}, logger.NewNop())

	code, err := e.Execute(context.Background(), &model.PlannedAction{Type: "hover"})

	require.NoError(t, err)
	assert.Equal(t, "unknown_action", code)
}

func TestScreenshotStoreRefAndFile(t *testing.T) {
	dir := t.TempDir()
	store := NewScreenshotStore(dir, logger.NewNop())
	session := &stubSession{shot: []byte("not a real png")}

	ref := store.Capture(context.Background(), session, "run1", "agent_abc123", 2, false)

	assert.Equal(t, "/static/run1/agent_abc123_step2.png", ref)

	// нераспознанный формат сохраняется как есть
	data, err := os.ReadFile(filepath.Join(dir, "run1", "agent_abc123_step2.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("not a real png"), data)
}

func TestScreenshotStoreRefSurvivesCaptureFailure(t *testing.T) {
	dir := t.TempDir()
	store := NewScreenshotStore(dir, logger.NewNop())
	session := &stubSession{shotErr: fmt.Errorf("page crashed")}

	ref := store.Capture(context.Background(), session, "run1", "agent_abc123", 0, true)

	assert.Equal(t, "/static/run1/agent_abc123_step0.png", ref)
	_, err := os.Stat(filepath.Join(dir, "run1", "agent_abc123_step0.png"))
	assert.True(t, os.IsNotExist(err))
}
