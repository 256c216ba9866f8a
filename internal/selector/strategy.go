// Package selector строит упорядоченный список конкретных стратегий поиска
// элемента из абстрактной цели планировщика и применяет их по очереди.
package selector

import (
	"fmt"
	"strings"

	"uxagent/internal/model"
)

// Kind помечает происхождение стратегии. Код результата действия включает
// запрос сработавшей стратегии, поэтому по трассе видно, какой путь сработал.
type Kind int

const (
	BySelector Kind = iota
	ByText
	ByRoleName
	ByRole
	ByName
	ByFallback
)

var kindNames = [...]string{"selector", "text", "role_name", "role", "name", "fallback"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Strategy — один конкретный способ найти элемент на странице.
type Strategy struct {
	Kind  Kind
	Query string
}

// Таблица разворачивания роли в теги и атрибуты. Роли вне таблицы
// пробуются как сырой селектор.
var roleAliases = map[string][]string{
	"button":   {"button", `[role="button"]`, `[type="button"]`, `[type="submit"]`, ".btn", ".button"},
	"link":     {"a", `[role="link"]`, "a[href]"},
	"a":        {"a", `[role="link"]`, "a[href]"},
	"input":    {"input", `[role="textbox"]`},
	"select":   {"select", `[role="combobox"]`, `[role="listbox"]`},
	"textarea": {"textarea", `[role="textbox"]`},
}

// BuildStrategies возвращает кандидатов в порядке убывания доверия:
// явный селектор, текст, роль+имя, роль, имя, затем общий запасной вариант.
// Дубликаты убираются с сохранением первой позиции.
func BuildStrategies(target *model.ActionTarget) []Strategy {
	if target == nil || target.IsEmpty() {
		return nil
	}

	var out []Strategy
	add := func(kind Kind, query string) {
		out = append(out, Strategy{Kind: kind, Query: query})
	}

	if target.Selector != "" {
		add(BySelector, target.Selector)
	}

	if text := strings.TrimSpace(target.Text); text != "" {
		add(ByText, fmt.Sprintf("text=%q", text))
		add(ByText, "text="+text)
		add(ByText, fmt.Sprintf("button:has-text(%q)", text))
		add(ByText, fmt.Sprintf("a:has-text(%q)", text))
		add(ByText, fmt.Sprintf("[aria-label*=%q]", text))
		add(ByText, fmt.Sprintf("[title*=%q]", text))
		add(ByText, fmt.Sprintf("[alt*=%q]", text))
	}

	if target.Role != "" && target.Name != "" {
		add(ByRoleName, fmt.Sprintf("%s[name=%q]", target.Role, target.Name))
		add(ByRoleName, fmt.Sprintf("[role=%q][name=%q]", target.Role, target.Name))
	}

	if target.Role != "" {
		if aliases, ok := roleAliases[target.Role]; ok {
			for _, alias := range aliases {
				add(ByRole, alias)
			}
		} else {
			add(ByRole, target.Role)
		}
	}

	if target.Name != "" {
		add(ByName, fmt.Sprintf("[name=%q]", target.Name))
		add(ByName, "#"+target.Name)
		add(ByName, fmt.Sprintf("[data-testid=%q]", target.Name))
		add(ByName, fmt.Sprintf("[data-test=%q]", target.Name))
		add(ByName, fmt.Sprintf("[data-cy=%q]", target.Name))
	}

	add(ByFallback, "a, button")

	return dedup(out)
}

func dedup(strategies []Strategy) []Strategy {
	seen := make(map[string]struct{}, len(strategies))
	result := strategies[:0]
	for _, s := range strategies {
		if _, ok := seen[s.Query]; ok {
			continue
		}
		seen[s.Query] = struct{}{}
		result = append(result, s)
	}
	return result
}
