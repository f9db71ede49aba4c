package store

import "campusconnect/pkg/models"

// Conversations adapts the package-level handle to the persister
// interface consumed by the conversation store.
type Conversations struct{}

func (Conversations) SaveMessage(convKey string, m models.Message) error {
	return SaveMessage(convKey, m)
}

func (Conversations) DeleteMessage(convKey, id string) error {
	return DeleteMessage(convKey, id)
}

func (Conversations) DeleteConversation(convKey string) error {
	return DeleteConversation(convKey)
}

func (Conversations) LoadConversations() (map[string][]models.Message, error) {
	return LoadConversations()
}

// Stories adapts the package-level handle to the persister interface
// consumed by the ephemeral content store.
type Stories struct{}

func (Stories) SaveStory(st models.Story) error {
	return SaveStory(st)
}

func (Stories) DeleteStory(id string) error {
	return DeleteStory(id)
}

func (Stories) LoadStories() ([]models.Story, error) {
	return LoadStories()
}
