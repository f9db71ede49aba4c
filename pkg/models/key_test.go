package models

import "testing"

func TestConversationKeySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"alice@campus.edu", "bob@campus.edu"},
		{"bob@campus.edu", "alice@campus.edu"},
		{"z@x.com", "a@x.com"},
		{"same@x.com", "same@x.com"},
	}
	for _, p := range pairs {
		if ConversationKey(p[0], p[1]) != ConversationKey(p[1], p[0]) {
			t.Fatalf("key not symmetric for %q/%q", p[0], p[1])
		}
	}
	if got := ConversationKey("b@x.com", "a@x.com"); got != "a@x.com_b@x.com" {
		t.Fatalf("unexpected canonical key: %q", got)
	}
}

func TestStoryActiveBoundary(t *testing.T) {
	// expiry is exclusive: a story is inactive at exactly createdAt+24h
	st := Story{CreatedTS: 0, ExpiresTS: int64(StoryTTL)}
	almost := st.ExpiresTS - 1
	if !st.Active(timeFromNanos(almost)) {
		t.Fatalf("story should be active just before expiry")
	}
	if st.Active(timeFromNanos(st.ExpiresTS)) {
		t.Fatalf("story should be inactive at exactly expiry")
	}
	if st.Active(timeFromNanos(st.ExpiresTS + 1)) {
		t.Fatalf("story should be inactive after expiry")
	}
}
