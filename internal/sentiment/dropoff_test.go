package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"uxagent/internal/model"
)

func withSentiment(it model.Interaction, s model.SentimentLevel) model.Interaction {
	it.Sentiment = s
	return it
}

func TestCheckDropoffNeedsHistory(t *testing.T) {
	interactions := []model.Interaction{
		withSentiment(interaction(1, model.ActionClick, "#a", "click_failed", true), model.SentimentNegative),
		withSentiment(interaction(2, model.ActionClick, "#b", "click_failed", true), model.SentimentNegative),
	}

	dropped, reason := CheckDropoff(interactions, "")

	assert.False(t, dropped)
	assert.Empty(t, reason)
}

func TestCheckDropoffLostInterest(t *testing.T) {
	interactions := []model.Interaction{
		withSentiment(interaction(1, model.ActionClick, "#a", "clicked", false), model.SentimentNeutral),
		withSentiment(interaction(2, model.ActionClick, "#b", "click_failed", true), model.SentimentNegative),
		withSentiment(interaction(3, model.ActionClick, "#c", "click_failed", true), model.SentimentFrustrated),
	}

	dropped, reason := CheckDropoff(interactions, "casual shopper")

	assert.True(t, dropped)
	assert.Equal(t, DropoffLostInterest, reason)
}

func TestCheckDropoffFrustratedDespiteInterest(t *testing.T) {
	first := withSentiment(interaction(1, model.ActionClick, "#a", "clicked", false), model.SentimentNeutral)
	first.Thought = "Finally some vintage cars to look at"
	interactions := []model.Interaction{
		first,
		withSentiment(interaction(2, model.ActionClick, "#b", "click_failed", true), model.SentimentNegative),
		withSentiment(interaction(3, model.ActionClick, "#c", "click_failed", true), model.SentimentNegative),
	}

	dropped, reason := CheckDropoff(interactions, "collects vintage cars")

	assert.True(t, dropped)
	assert.Equal(t, DropoffFrustrated, reason)
}

func TestCheckDropoffStagnation(t *testing.T) {
	var interactions []model.Interaction
	for i := 1; i <= 11; i++ {
		interactions = append(interactions,
			withSentiment(interaction(i, model.ActionWait, "", "waited_1000ms", false), model.SentimentNeutral))
	}

	dropped, reason := CheckDropoff(interactions, "")

	assert.True(t, dropped)
	assert.Equal(t, DropoffNoProgress, reason)
}

func TestCheckDropoffRecentProgressKeepsUserAround(t *testing.T) {
	var interactions []model.Interaction
	for i := 1; i <= 10; i++ {
		interactions = append(interactions,
			withSentiment(interaction(i, model.ActionWait, "", "waited_1000ms", false), model.SentimentNeutral))
	}
	interactions = append(interactions,
		withSentiment(interaction(11, model.ActionClick, "#buy", "clicked", false), model.SentimentPositive))

	dropped, _ := CheckDropoff(interactions, "")

	assert.False(t, dropped)
}
