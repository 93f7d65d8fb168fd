package outreach

import (
	"encoding/json"
	"net/url"
	"strings"
)

const (
	// DefaultBatchSize is how many recipients one compose link carries
	// unless the request says otherwise.
	DefaultBatchSize = 25

	// maxLinkLength keeps compose URLs inside what Gmail accepts; a
	// batch that would push its link past this is split early.
	maxLinkLength = 1800

	composeBase = "https://mail.google.com/mail/?view=cm&fs=1"
)

// ParseUserIDs extracts user IDs from operator-pasted text. Dashboards
// hand these over in several shapes: a JSON array, quoted values, or
// plain comma/newline separated IDs. Order is preserved, duplicates
// and empties dropped.
func ParseUserIDs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var fromJSON []string
	if err := json.Unmarshal([]byte(raw), &fromJSON); err == nil {
		return dedupe(fromJSON)
	}

	raw = strings.Trim(raw, "[]")
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		id := strings.Trim(strings.TrimSpace(f), `"'`)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return dedupe(ids)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Batch is one ready-to-send compose link and its recipients.
type Batch struct {
	Number     int
	Recipients []string
	Link       string
}

// ComposeLink builds a Gmail compose URL with the recipients on BCC.
func ComposeLink(emails []string, subject, body string) string {
	var b strings.Builder
	b.WriteString(composeBase)
	b.WriteString("&bcc=")
	b.WriteString(url.QueryEscape(strings.Join(emails, ",")))
	b.WriteString("&su=")
	b.WriteString(url.QueryEscape(subject))
	b.WriteString("&body=")
	b.WriteString(url.QueryEscape(body))
	return b.String()
}

// BuildBatches chunks the emails into compose links, closing a batch
// at batchSize recipients or when the next address would push the
// link past the length cap, whichever comes first.
func BuildBatches(emails []string, subject, body string, batchSize int) []Batch {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	var batches []Batch
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, Batch{
			Number:     len(batches) + 1,
			Recipients: current,
			Link:       ComposeLink(current, subject, body),
		})
		current = nil
	}

	for _, email := range emails {
		candidate := append(append([]string{}, current...), email)
		if len(current) > 0 &&
			(len(candidate) > batchSize || len(ComposeLink(candidate, subject, body)) > maxLinkLength) {
			flush()
			candidate = []string{email}
		}
		current = candidate
	}
	flush()

	return batches
}
