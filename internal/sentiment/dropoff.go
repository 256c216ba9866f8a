package sentiment

import "uxagent/internal/model"

// Тексты причин ухода пользователя попадают в итоговый транскрипт.
const (
	DropoffLostInterest    = "User lost interest due to irrelevant content"
	DropoffFrustrated      = "User frustrated by poor UX despite interest in content"
	DropoffNoProgress      = "User gave up after lack of meaningful progress"
	dropoffHistoryMin      = 3
	dropoffStagnationAfter = 10
)

// CheckDropoff решает, бросил бы пользователь задачу на текущем шаге.
// Уход срабатывает при устойчивом негативе (2 из 3 последних сентиментов)
// либо при долгом отсутствии осмысленного прогресса.
func CheckDropoff(interactions []model.Interaction, personaBio string) (bool, string) {
	if len(interactions) < dropoffHistoryMin {
		return false, ""
	}

	negative := 0
	for _, it := range lastN(interactions, 3) {
		if it.Sentiment.IsNegative() {
			negative++
		}
	}

	if negative >= 2 {
		if !matchesPersonaInterest(interactions, personaBio) {
			return true, DropoffLostInterest
		}
		return true, DropoffFrustrated
	}

	if len(interactions) > dropoffStagnationAfter {
		for _, it := range lastN(interactions, recentWindow) {
			if isMeaningfulProgress(it) {
				return false, ""
			}
		}
		return true, DropoffNoProgress
	}

	return false, ""
}
