package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/dispute-service/internal/domain"
	"github.com/spec-kit/dispute-service/internal/triage"
)

// Normalize turns one untrusted row into a dispute ready for storage.
// Missing or malformed fields degrade to defaults instead of failing;
// the second return is false only when the row carries no usable keys
// at all (spreadsheet padding) and should be dropped.
func Normalize(row Row, index int) (*domain.Dispute, bool) {
	if empty(row) {
		return nil, false
	}

	amount := coerceFloat(firstValue(row, aliasAmount))
	if amount < 0 {
		amount = 0
	}
	daysOpen := coerceInt(firstValue(row, aliasDaysOpen))
	if daysOpen < 0 {
		daysOpen = 0
	}
	daysInPresent := coerceInt(firstValue(row, aliasDaysPresent))
	if daysInPresent < 0 {
		daysInPresent = 0
	}

	// An explicit upstream classification wins when it names a known
	// tier; anything else is classified fresh.
	priority := domain.Priority(stringOr(row, aliasPriority, ""))
	if !knownPriority(priority) {
		priority = triage.Classify(daysOpen, amount)
	}

	stage := stringOr(row, aliasStage, domain.StageNew)

	ticketID, ok := resolveString(row, aliasTicketID)
	if !ok {
		ticketID = synthesizeTicketID(index)
	}

	return &domain.Dispute{
		TicketID:           ticketID,
		UserID:             "UNKNOWN",
		Amount:             amount,
		IssueCategory:      stringOr(row, aliasCategory, "Unspecified"),
		Channel:            stringOr(row, aliasChannel, "Web"),
		Status:             domain.DisputeStatus(stringOr(row, aliasStatus, string(domain.DisputeStatusOpen))),
		Priority:           priority,
		Stage:              stage,
		PresentStage:       stringOr(row, aliasPresent, ""),
		DaysOpen:           daysOpen,
		DaysInPresentStage: daysInPresent,
		// Always derived, never taken from input.
		RecommendedAction: triage.Recommend(stage, priority),
	}, true
}

// NormalizeBatch applies Normalize to every row, dropping rows that are
// empty or duplicate an earlier ticket id in the same batch.
func NormalizeBatch(rows []Row) []domain.Dispute {
	seen := make(map[string]struct{}, len(rows))
	disputes := make([]domain.Dispute, 0, len(rows))
	for i, row := range rows {
		dispute, ok := Normalize(row, i)
		if !ok {
			continue
		}
		if _, dup := seen[dispute.TicketID]; dup {
			continue
		}
		seen[dispute.TicketID] = struct{}{}
		disputes = append(disputes, *dispute)
	}
	return disputes
}

func knownPriority(p domain.Priority) bool {
	switch p {
	case domain.PriorityL0, domain.PriorityL1, domain.PriorityL2, domain.PriorityL3, domain.PriorityResolved:
		return true
	default:
		return false
	}
}

func empty(row Row) bool {
	for key, val := range row {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if strings.TrimSpace(toString(val)) == "" {
			continue
		}
		return false
	}
	return true
}

func firstValue(row Row, aliases []string) any {
	val, _ := resolve(row, aliases)
	return val
}

func stringOr(row Row, aliases []string, fallback string) string {
	if s, ok := resolveString(row, aliases); ok {
		return s
	}
	return fallback
}

// synthesizeTicketID builds an id unique within a batch even when two
// rows land on the same millisecond: the row index and a uuid fragment
// disambiguate.
func synthesizeTicketID(index int) string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("WEB-%d-%s-%d", time.Now().UnixMilli(), fragment, index)
}

func toString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// coerceFloat parses a numeric magnitude from whatever the row carried.
// Spreadsheet exports format amounts like "15,000" or "INR 15000", so
// grouping separators and currency markers are stripped before parsing.
// Unparseable values coerce to 0.
func coerceFloat(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}

	s := strings.TrimSpace(toString(val))
	if s == "" {
		return 0
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func coerceInt(val any) int {
	return int(coerceFloat(val))
}
