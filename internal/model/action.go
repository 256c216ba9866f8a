package model

import "fmt"

// ActionType — тип действия, которое агент выполняет в браузере.
type ActionType string

const (
	ActionClick  ActionType = "click"
	ActionScroll ActionType = "scroll"
	ActionFill   ActionType = "fill"
	ActionWait   ActionType = "wait"
	ActionNav    ActionType = "nav"
)

// ValidActionType проверяет, что строка является известным типом действия.
func ValidActionType(t ActionType) bool {
	switch t {
	case ActionClick, ActionScroll, ActionFill, ActionWait, ActionNav:
		return true
	}
	return false
}

// ActionTarget — абстрактное описание целевого элемента от планировщика.
// Это запрос на поиск элемента, а не сам элемент: заполнено хотя бы одно поле.
type ActionTarget struct {
	Selector string `json:"selector,omitempty"`
	Text     string `json:"text,omitempty"`
	Role     string `json:"role,omitempty"`
	Name     string `json:"name,omitempty"`
}

// IsEmpty сообщает, что цель не содержит ни одного поля для поиска.
func (t *ActionTarget) IsEmpty() bool {
	return t == nil || (t.Selector == "" && t.Text == "" && t.Role == "" && t.Name == "")
}

// PlannedAction — одно действие, запланированное LLM.
type PlannedAction struct {
	Type   ActionType    `json:"type"`
	Target *ActionTarget `json:"target,omitempty"`
	Value  string        `json:"value,omitempty"`
	MS     int           `json:"ms,omitempty"`
}

// Validate проверяет типоспецифичные обязательные поля действия.
// Используется планировщиком при строгом разборе ответа LLM: любая ошибка
// приводит к fallback-действию wait, а не к частично заполненному плану.
func (a *PlannedAction) Validate() error {
	if !ValidActionType(a.Type) {
		return fmt.Errorf("неизвестный тип действия: %q", a.Type)
	}

	switch a.Type {
	case ActionClick:
		if a.Target.IsEmpty() {
			return fmt.Errorf("действие click требует target")
		}
	case ActionFill:
		if a.Target.IsEmpty() {
			return fmt.Errorf("действие fill требует target")
		}
		if a.Value == "" {
			return fmt.Errorf("действие fill требует value")
		}
	case ActionNav:
		if a.Value == "" {
			return fmt.Errorf("действие nav требует value с URL")
		}
	}
	// scroll без target — общая прокрутка вниз; wait без ms — дефолт 1000
	return nil
}

// SelectorHint возвращает строковое представление цели для журнала
// взаимодействий (поле selector в Interaction).
func (a *PlannedAction) SelectorHint() string {
	if a.Target == nil {
		return ""
	}
	switch {
	case a.Target.Selector != "":
		return a.Target.Selector
	case a.Target.Text != "":
		return fmt.Sprintf("text=%s", a.Target.Text)
	case a.Target.Role != "" && a.Target.Name != "":
		return fmt.Sprintf("%s[name='%s']", a.Target.Role, a.Target.Name)
	case a.Target.Role != "":
		return a.Target.Role
	case a.Target.Name != "":
		return fmt.Sprintf("[name='%s']", a.Target.Name)
	}
	return ""
}

// PlanOutput — полный ответ планировщика на один шаг.
type PlanOutput struct {
	Intent     string        `json:"intent"`
	Action     PlannedAction `json:"action"`
	Rationale  string        `json:"rationale"`
	Confidence float64       `json:"confidence"`
}
