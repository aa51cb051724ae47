package memory

import "regexp"

// recallPattern detects messages that refer back to past conversations.
// This is a stated heuristic over a fixed keyword set, isolated here so it
// can be swapped for a classifier without touching the orchestrator.
var recallPattern = regexp.MustCompile(`(?i)\b(remember\w*|recall\w*|previous\w*|earlier|before|last time|we (discussed|talked about)|you (said|mentioned|told me))\b`)

// IsRecallQuery reports whether the message asks about prior conversations,
// which widens retrieval scope to all conversations.
func IsRecallQuery(message string) bool {
	return recallPattern.MatchString(message)
}
