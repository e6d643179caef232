package router

import "strings"

// Decision grammar for supervisor quote replies. Approval is checked before
// rejection. Substring matches accept extra words around the keyword; the
// short slang negations stay exact matches because "ga" occurs inside too
// many ordinary words.

// IsApproval reports whether a reply body approves a pending request
func IsApproval(body string) bool {
	t := strings.ToLower(strings.TrimSpace(body))
	if t == "1" || t == "ya" || t == "y" {
		return true
	}
	return strings.Contains(t, "setuju") || strings.Contains(t, "approve")
}

// IsRejection reports whether a reply body rejects a pending request
func IsRejection(body string) bool {
	t := strings.ToLower(strings.TrimSpace(body))
	if t == "2" || t == "ga" || t == "gak" {
		return true
	}
	return strings.Contains(t, "tidak") || strings.Contains(t, "tolak") || strings.Contains(t, "reject")
}
