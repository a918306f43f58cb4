package triage

import (
	"strings"

	"github.com/spec-kit/dispute-service/internal/domain"
)

// AmountBoostThreshold is the monetary magnitude above which a dispute is
// promoted one tier beyond what its age alone warrants.
const AmountBoostThreshold = 50000

// Recommended action strings surfaced on the staff dashboard.
const (
	ActionUrgent         = "URGENT: Manual Intervention Required (SLA Breach Risk)"
	ActionReconciliation = "Reconciliation Check: Verify with Beneficiary Bank"
	ActionCustomerInfo   = "Customer Action: Send SMS/Email Reminder for Info"
	ActionMonitorRevert  = "Monitor: Verify Reversal Status"
	ActionStandardReview = "Standard Review"
)

// Classify maps dispute age and amount to an urgency tier.
//
// Age thresholds: 0-3 days L3, 4-11 days L2, 12-25 days L1, >25 days L0.
// Amounts above AmountBoostThreshold promote the result one tier unless
// it is already L0. Callers clamp negative inputs to zero before calling.
func Classify(daysOpen int, amount float64) domain.Priority {
	level := 3
	switch {
	case daysOpen > 25:
		level = 0
	case daysOpen >= 12:
		level = 1
	case daysOpen >= 4:
		level = 2
	}

	if amount > AmountBoostThreshold && level > 0 {
		level--
	}

	return [...]domain.Priority{
		domain.PriorityL0,
		domain.PriorityL1,
		domain.PriorityL2,
		domain.PriorityL3,
	}[level]
}

// Recommend derives the next-best action from workflow stage and tier.
// The L0 override is checked before any stage rule; stage matching is
// substring-based so label variants still resolve.
func Recommend(stage string, priority domain.Priority) string {
	switch {
	case priority == domain.PriorityL0:
		return ActionUrgent
	case strings.Contains(stage, "Stage 5"):
		return ActionReconciliation
	case strings.Contains(stage, "Stage 3"):
		return ActionCustomerInfo
	case strings.Contains(stage, "Stage 4"):
		return ActionMonitorRevert
	default:
		return ActionStandardReview
	}
}
