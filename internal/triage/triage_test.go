package triage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/dispute-service/internal/domain"
)

func TestClassifyAgeThresholds(t *testing.T) {
	cases := []struct {
		daysOpen int
		want     domain.Priority
	}{
		{0, domain.PriorityL3},
		{3, domain.PriorityL3},
		{4, domain.PriorityL2},
		{11, domain.PriorityL2},
		{12, domain.PriorityL1},
		{25, domain.PriorityL1},
		{26, domain.PriorityL0},
		{90, domain.PriorityL0},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("days=%d", tc.daysOpen), func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.daysOpen, 1000))
		})
	}
}

func TestClassifyAmountBoost(t *testing.T) {
	cases := []struct {
		name     string
		daysOpen int
		amount   float64
		want     domain.Priority
	}{
		{"boost L3 to L2", 2, 120000, domain.PriorityL2},
		{"boost L2 to L1", 7, 50001, domain.PriorityL1},
		{"boost L1 to L0", 15, 75000, domain.PriorityL0},
		{"L0 boost is a no-op", 30, 75000, domain.PriorityL0},
		{"threshold itself does not boost", 7, 50000, domain.PriorityL2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.daysOpen, tc.amount))
		})
	}
}

func TestRecommendUrgentOverridesEveryStage(t *testing.T) {
	stages := []string{
		domain.StageNew,
		"Stage 3 - Customer Info Needed",
		"Stage 4 - Reversal Pending",
		"Stage 5 - Reconciliation",
		"something unrecognized",
		"",
	}
	for _, stage := range stages {
		assert.Equal(t, ActionUrgent, Recommend(stage, domain.PriorityL0), "stage %q", stage)
	}
}

func TestRecommendStageRules(t *testing.T) {
	cases := []struct {
		stage    string
		priority domain.Priority
		want     string
	}{
		{"Stage 5 - Anything", domain.PriorityL1, ActionReconciliation},
		{"Stage 3 - Customer Info Needed", domain.PriorityL2, ActionCustomerInfo},
		{"Stage 4 - Reversal Pending", domain.PriorityL2, ActionMonitorRevert},
		{domain.StageNew, domain.PriorityL3, ActionStandardReview},
		{"Stage 2 - Investigating", domain.PriorityL1, ActionStandardReview},
		{"garbage label", domain.PriorityL3, ActionStandardReview},
		{"Closed - Stage 5", domain.PriorityResolved, ActionReconciliation},
	}
	for _, tc := range cases {
		t.Run(tc.stage, func(t *testing.T) {
			assert.Equal(t, tc.want, Recommend(tc.stage, tc.priority))
		})
	}
}

func TestScenarioAgedHighValueDispute(t *testing.T) {
	// 30 days open at 75k: L0 from age alone, boost inapplicable.
	p := Classify(30, 75000)
	assert.Equal(t, domain.PriorityL0, p)
	assert.Equal(t, ActionUrgent, Recommend(domain.StageNew, p))

	// 2 days open at 120k: L3 base boosted once to L2, still standard review.
	p = Classify(2, 120000)
	assert.Equal(t, domain.PriorityL2, p)
	assert.Equal(t, ActionStandardReview, Recommend(domain.StageNew, p))
}
