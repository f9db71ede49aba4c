package models

// ConversationKey derives the canonical identifier for the unordered
// participant pair {a, b}: the two identifiers sorted lexicographically
// and joined with "_". Every read and write against the conversation
// table must go through this so that (a,b) and (b,a) address the same
// sequence.
func ConversationKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}
