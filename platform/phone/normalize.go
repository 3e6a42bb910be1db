// Package phone normalizes client phone numbers so lookups and upserts
// keyed by phone agree on one canonical form.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Numbers without a country prefix are assumed Brazilian.
const defaultRegion = "BR"

// NormalizeE164 returns the E.164 form of the input. Unparseable or
// invalid numbers come back trimmed but otherwise untouched so the raw
// value is still stored rather than lost.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return trimmed
	}

	return phonenumbers.Format(parsed, phonenumbers.E164)
}
