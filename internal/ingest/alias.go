package ingest

import "strings"

// Row is a loosely typed record produced by a bulk source. Keys are raw
// header strings, values are whatever the decoder yielded.
type Row map[string]any

// Header aliases in resolution order. Bulk uploads come from spreadsheet
// exports with drifting header spellings, so each field lists every
// spelling seen in the wild, most specific first.
var (
	aliasTicketID    = []string{"Ticket ID", "ticketId", "TicketId"}
	aliasAmount      = []string{"Amount (in INR)", "Amount", "amount"}
	aliasDaysOpen    = []string{"Days Open", "daysOpen", "DaysOpen"}
	aliasPriority    = []string{"SLA Priority", "Priority", "priority"}
	aliasStage       = []string{"Stage", "stage"}
	aliasPresent     = []string{"Present Stage", "presentStage"}
	aliasDaysPresent = []string{"Days in Present Stage", "daysInPresentStage", "DaysInPresentStage"}
	aliasStatus      = []string{"Status", "status"}
	aliasCategory    = []string{"Issue Category", "issueCategory", "IssueCategory"}
	aliasChannel     = []string{"Channel", "channel", "Chanel"}
)

// resolve walks the alias list and returns the first value present in the
// row. Each alias is tried three ways: exact key, whitespace-trimmed key,
// then case-insensitive trimmed key.
func resolve(row Row, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if val, ok := row[alias]; ok && val != nil {
			return val, true
		}
		for key, val := range row {
			if val == nil {
				continue
			}
			if strings.TrimSpace(key) == alias {
				return val, true
			}
		}
		lower := strings.ToLower(alias)
		for key, val := range row {
			if val == nil {
				continue
			}
			if strings.ToLower(strings.TrimSpace(key)) == lower {
				return val, true
			}
		}
	}
	return nil, false
}

func resolveString(row Row, aliases []string) (string, bool) {
	val, ok := resolve(row, aliases)
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(toString(val))
	if s == "" {
		return "", false
	}
	return s, true
}
