package utils

import "github.com/google/uuid"

// GenID returns a fresh opaque identifier for messages and stories.
func GenID() string {
	return uuid.NewString()
}
