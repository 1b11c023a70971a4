package etl

import (
	"fmt"
	"strings"
)

// MaskSuffix is the fixed literal appended to the local part of every
// masked email. The original domain is discarded; the redaction is not
// reversible.
const MaskSuffix = "@***.com"

// MaskPolicy fixes the behavior for emails without an "@" delimiter.
// The choice is made once, by configuration, never per row.
type MaskPolicy string

const (
	// MaskPolicyReject fails the whole run on the first email without
	// an "@". Default.
	MaskPolicyReject MaskPolicy = "reject"

	// MaskPolicyDegrade emits an empty local part ("@***.com") for
	// emails without an "@".
	MaskPolicyDegrade MaskPolicy = "degrade"
)

// ParseMaskPolicy validates a policy name from configuration.
func ParseMaskPolicy(s string) (MaskPolicy, error) {
	switch p := MaskPolicy(s); p {
	case MaskPolicyReject, MaskPolicyDegrade:
		return p, nil
	default:
		return "", fmt.Errorf("unknown mask policy %q (want %q or %q)", s, MaskPolicyReject, MaskPolicyDegrade)
	}
}

// MaskUsers redacts the email of every user record: everything strictly
// before the first "@" is kept as the local part and MaskSuffix replaces
// the rest. Output is 1:1 with input — no row is filtered. Pure and
// deterministic for a given policy.
func MaskUsers(users []UserRecord, policy MaskPolicy) ([]MaskedUser, error) {
	masked := make([]MaskedUser, 0, len(users))
	for _, u := range users {
		at := strings.IndexByte(u.Email, '@')
		local := ""
		switch {
		case at >= 0:
			local = u.Email[:at]
		case policy == MaskPolicyReject:
			return nil, fmt.Errorf("user %d: %w: email has no @ delimiter", u.ID, ErrMalformedEmail)
		}
		masked = append(masked, MaskedUser{
			UserID:      u.ID,
			MaskedEmail: local + MaskSuffix,
		})
	}
	return masked, nil
}
