// Package identity is the boundary to the external identity
// collaborator. Identities are opaque strings; the core trusts whatever
// the collaborator supplies and attaches no security meaning to them.
package identity

import (
	"net/http"
	"sync"
)

// Header carries the current-user identity on API requests.
const Header = "X-User-ID"

// Current extracts the caller identity from the request. Empty when the
// collaborator did not supply one.
func Current(r *http.Request) string {
	return r.Header.Get(Header)
}

// Roster is the set of known participant identifiers. The assistant is
// pinned first so UI surfaces can show it at the top of the list.
type Roster struct {
	mu          sync.RWMutex
	assistantID string
	ids         []string
}

func NewRoster(assistantID string, ids ...string) *Roster {
	r := &Roster{assistantID: assistantID}
	r.ids = append(r.ids, ids...)
	return r
}

// Add registers a participant identifier. Duplicates are ignored.
func (r *Roster) Add(id string) {
	if id == "" || id == r.assistantID {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, known := range r.ids {
		if known == id {
			return
		}
	}
	r.ids = append(r.ids, id)
}

// Participants returns the roster visible to `current`: the assistant
// first, then every other known identity except the caller.
func (r *Roster) Participants(current string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ids)+1)
	if r.assistantID != "" {
		out = append(out, r.assistantID)
	}
	for _, id := range r.ids {
		if id != current {
			out = append(out, id)
		}
	}
	return out
}
