package model

// PageElement описывает один интерактивный элемент страницы.
// Создается заново на каждом шаге извлечения дайджеста и не хранится отдельно —
// попадает только во вход планировщика.
type PageElement struct {
	Role          string  `json:"role,omitempty"`
	Name          string  `json:"name,omitempty"`
	Text          string  `json:"text,omitempty"`
	Label         string  `json:"label,omitempty"`
	Placeholder   string  `json:"placeholder,omitempty"`
	TestID        string  `json:"data_testid,omitempty"`
	AriaLabel     string  `json:"aria_label,omitempty"`
	SelectorHint  string  `json:"selector_hint,omitempty"`
	ParentContext string  `json:"parent_context,omitempty"` // form, navigation, modal и т.п.
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"w"`
	Height        float64 `json:"h"`
	Visible       bool    `json:"visible"`
	Clickable     bool    `json:"clickable"`
	Focusable     bool    `json:"focusable"`
	FormField     bool    `json:"form_field"`
}

// PageDigest — ограниченный снимок интерактивных возможностей страницы,
// вход планировщика. Пересобирается на каждом шаге, никогда не мутируется.
type PageDigest struct {
	Title        string        `json:"title"`
	URL          string        `json:"url"`
	Headings     []string      `json:"headings"`
	Interactives []PageElement `json:"interactives"`
}
