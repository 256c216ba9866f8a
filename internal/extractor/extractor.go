// Package extractor снимает дайджест страницы: заголовки и ограниченный
// ранжированный список интерактивных элементов для планировщика.
package extractor

import (
	"context"
	"fmt"
	"sort"

	"uxagent/internal/browser"
	"uxagent/internal/model"
)

const (
	maxHeadings     = 5
	maxInteractives = 30
)

// Extract строит свежий снимок страницы. Ожидание прогрузки ограничено и
// не фатально: медленная страница даёт неполный дайджест, а не ошибку.
func Extract(ctx context.Context, session browser.Session) (*model.PageDigest, error) {
	_ = session.WaitForLoad(ctx, "domcontentloaded")

	title, err := session.Title()
	if err != nil {
		title = ""
	}

	headings, err := extractHeadings(ctx, session)
	if err != nil {
		headings = nil
	}

	interactives, err := extractInteractives(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("ошибка извлечения элементов: %w", err)
	}

	// Видимые элементы вперёд, внутри группы сверху вниз и слева направо.
	sort.SliceStable(interactives, func(i, j int) bool {
		a, b := interactives[i], interactives[j]
		if a.Visible != b.Visible {
			return a.Visible
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	if len(interactives) > maxInteractives {
		interactives = interactives[:maxInteractives]
	}

	return &model.PageDigest{
		Title:        title,
		URL:          session.URL(),
		Headings:     headings,
		Interactives: interactives,
	}, nil
}

func extractHeadings(ctx context.Context, session browser.Session) ([]string, error) {
	result, err := session.Evaluate(ctx, `
		() => {
			const headings = [];
			document.querySelectorAll('h1, h2').forEach(h => {
				const text = h.textContent.trim();
				if (text) headings.push(text);
			});
			return headings;
		}
	`)
	if err != nil {
		return nil, err
	}

	items, ok := result.([]interface{})
	if !ok {
		return nil, nil
	}

	headings := make([]string, 0, maxHeadings)
	for _, item := range items {
		if s, ok := item.(string); ok {
			headings = append(headings, s)
		}
		if len(headings) == maxHeadings {
			break
		}
	}
	return headings, nil
}

func extractInteractives(ctx context.Context, session browser.Session) ([]model.PageElement, error) {
	result, err := session.Evaluate(ctx, interactivesJS)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения JavaScript: %w", err)
	}

	elementsData, ok := result.([]interface{})
	if !ok {
		return []model.PageElement{}, nil
	}

	elements := make([]model.PageElement, 0, len(elementsData))
	for _, elemData := range elementsData {
		elemMap, ok := elemData.(map[string]interface{})
		if !ok {
			continue
		}
		elements = append(elements, parseElement(elemMap))
	}
	return elements, nil
}

const interactivesJS = `
	() => {
		const elements = [];
		const selectors = [
			'button',
			'a[href]',
			'input:not([type="hidden"])',
			'select',
			'textarea',
			'[role="button"]',
			'[role="link"]',
			'[role="tab"]',
			'[role="menuitem"]',
			'[role="checkbox"]',
			'[role="textbox"]',
			'[onclick]',
			'[data-testid]'
		];

		const seen = new Set();
		document.querySelectorAll(selectors.join(',')).forEach(el => {
			if (seen.has(el)) return;
			seen.add(el);

			const rect = el.getBoundingClientRect();
			const style = window.getComputedStyle(el);
			const visible = rect.width > 0 && rect.height > 0 &&
				style.display !== 'none' &&
				style.visibility !== 'hidden' &&
				style.opacity !== '0';

			const cursor = style.cursor === 'pointer';
			const tag = el.tagName.toLowerCase();
			const formField = ['input', 'select', 'textarea'].includes(tag);

			let ownLabel = '';
			if (el.labels && el.labels.length > 0) {
				ownLabel = el.labels[0].textContent.trim();
			}

			const text = (el.getAttribute('aria-label') ||
				el.getAttribute('title') ||
				el.getAttribute('alt') ||
				el.getAttribute('placeholder') ||
				el.value ||
				(el.textContent ? el.textContent.trim() : '') ||
				ownLabel || '').substring(0, 50);

			let parentContext = '';
			let p = el.parentElement;
			while (p) {
				const pt = p.tagName.toLowerCase();
				const pr = (p.getAttribute('role') || '').toLowerCase();
				if (pt === 'form' || pr === 'form') { parentContext = 'form'; break; }
				if (pt === 'nav' || pr === 'navigation') { parentContext = 'navigation'; break; }
				if (pr === 'dialog' || pr === 'alertdialog') { parentContext = 'modal'; break; }
				if (pt === 'header') { parentContext = 'header'; break; }
				if (pt === 'footer') { parentContext = 'footer'; break; }
				p = p.parentElement;
			}

			const element = {
				role: el.getAttribute('role') || tag,
				name: el.getAttribute('aria-label') || el.getAttribute('name') || '',
				text: text,
				label: el.getAttribute('aria-label') || el.getAttribute('title') || '',
				placeholder: el.getAttribute('placeholder') || '',
				test_id: el.getAttribute('data-testid') || '',
				aria_label: el.getAttribute('aria-label') || '',
				parent_context: parentContext,
				x: rect.x,
				y: rect.y,
				width: rect.width,
				height: rect.height,
				visible: visible,
				clickable: cursor || tag === 'button' || tag === 'a' ||
					el.hasAttribute('onclick') ||
					(el.getAttribute('role') || '') === 'button',
				focusable: formField || el.tabIndex >= 0,
				form_field: formField
			};

			let hint = '';
			if (element.text && element.text.length > 2) {
				hint = 'text=' + element.text;
			} else if (element.role && element.name) {
				hint = element.role + '[name="' + element.name + '"]';
			} else if (element.test_id) {
				hint = '[data-testid="' + element.test_id + '"]';
			} else if (el.id) {
				hint = '#' + el.id;
			} else if (el.className && typeof el.className === 'string') {
				const cls = el.className.split(' ').filter(c => c)[0];
				if (cls) hint = '.' + cls;
			}
			element.selector_hint = hint;

			elements.push(element);
		});

		return elements;
	}
`

func parseElement(data map[string]interface{}) model.PageElement {
	elem := model.PageElement{}

	str := func(key string) string {
		if v, ok := data[key].(string); ok {
			return v
		}
		return ""
	}
	num := func(key string) float64 {
		if v, ok := data[key].(float64); ok {
			return v
		}
		return 0
	}
	flag := func(key string) bool {
		if v, ok := data[key].(bool); ok {
			return v
		}
		return false
	}

	elem.Role = str("role")
	elem.Name = str("name")
	elem.Text = str("text")
	elem.Label = str("label")
	elem.Placeholder = str("placeholder")
	elem.TestID = str("test_id")
	elem.AriaLabel = str("aria_label")
	elem.SelectorHint = str("selector_hint")
	elem.ParentContext = str("parent_context")
	elem.X = num("x")
	elem.Y = num("y")
	elem.Width = num("width")
	elem.Height = num("height")
	elem.Visible = flag("visible")
	elem.Clickable = flag("clickable")
	elem.Focusable = flag("focusable")
	elem.FormField = flag("form_field")

	return elem
}
