package convo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "campusconnect/pkg/errors"
	"campusconnect/pkg/models"
	"campusconnect/pkg/undo"
)

const (
	alice     = "alice@campus.edu"
	bob       = "bob@campus.edu"
	assistant = "ai@campusconnect.com"
)

type stubReplier struct {
	reply string
	err   error
	gate  chan struct{} // when non-nil, Reply blocks until closed
}

func (s *stubReplier) Reply(ctx context.Context, prompt string) (string, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.AssistantID == "" {
		opts.AssistantID = assistant
	}
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func TestSendValidation(t *testing.T) {
	s := newTestStore(t, Options{})

	_, err := s.Send(context.Background(), "", bob, "hi")
	assert.ErrorIs(t, err, apperr.ErrNoCurrentUser)

	_, err = s.Send(context.Background(), alice, bob, "   ")
	assert.ErrorIs(t, err, apperr.ErrEmptyText)
}

func TestSendAndGetSymmetry(t *testing.T) {
	s := newTestStore(t, Options{})

	_, err := s.Send(context.Background(), alice, bob, "hi")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), bob, alice, "yo")
	require.NoError(t, err)

	msgs := s.Messages(alice, bob)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Text)
	assert.Equal(t, "yo", msgs[1].Text)
	assert.Less(t, msgs[0].Seq, msgs[1].Seq)

	// the reversed call shape observes the same sequence
	assert.Equal(t, msgs, s.Messages(bob, alice))
}

func TestSendOrderPreservedAcrossDelete(t *testing.T) {
	s := newTestStore(t, Options{})

	texts := []string{"one", "two", "three", "four", "five"}
	ids := make([]string, 0, len(texts))
	for _, txt := range texts {
		m, err := s.Send(context.Background(), alice, bob, txt)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}
	require.Len(t, s.Messages(alice, bob), len(texts))

	// delete the third message; the rest keep their order
	require.NoError(t, s.DeleteMessage(alice, bob, ids[2]))
	got := s.Messages(alice, bob)
	require.Len(t, got, len(texts)-1)
	want := []string{"one", "two", "four", "five"}
	for i, m := range got {
		assert.Equal(t, want[i], m.Text)
	}

	// deleting the same id again is a silent no-op
	require.NoError(t, s.DeleteMessage(alice, bob, ids[2]))
	assert.Len(t, s.Messages(alice, bob), len(texts)-1)
}

func TestMessagesUnknownKeyEmpty(t *testing.T) {
	s := newTestStore(t, Options{})
	assert.Empty(t, s.Messages(alice, "nobody@campus.edu"))
}

func TestDeleteConversation(t *testing.T) {
	s := newTestStore(t, Options{})
	_, err := s.Send(context.Background(), alice, bob, "hi")
	require.NoError(t, err)

	require.NoError(t, s.DeleteConversation(bob, alice))
	assert.Empty(t, s.Messages(alice, bob))

	// absent key is a no-op
	require.NoError(t, s.DeleteConversation(alice, bob))
}

func TestAssistantReply(t *testing.T) {
	s := newTestStore(t, Options{Replier: &stubReplier{reply: "hi there"}})

	_, err := s.Send(context.Background(), alice, assistant, "hello")
	require.NoError(t, err)
	s.WaitReplies()

	msgs := s.Messages(alice, assistant)
	require.Len(t, msgs, 2)
	assert.Equal(t, alice, msgs[0].Sender)
	assert.Equal(t, assistant, msgs[1].Sender)
	assert.Equal(t, "hi there", msgs[1].Text)
}

func TestAssistantFailureKeepsUserMessage(t *testing.T) {
	s := newTestStore(t, Options{Replier: &stubReplier{err: errors.New("boom")}})

	_, err := s.Send(context.Background(), alice, assistant, "hello")
	require.NoError(t, err)
	s.WaitReplies()

	msgs := s.Messages(alice, assistant)
	require.Len(t, msgs, 1)
	assert.Equal(t, alice, msgs[0].Sender)
}

func TestComposingFlag(t *testing.T) {
	gate := make(chan struct{})
	s := newTestStore(t, Options{Replier: &stubReplier{reply: "ok", gate: gate}})

	assert.False(t, s.Composing())
	_, err := s.Send(context.Background(), alice, assistant, "hello")
	require.NoError(t, err)
	require.Eventually(t, s.Composing, time.Second, 5*time.Millisecond)

	close(gate)
	s.WaitReplies()
	assert.False(t, s.Composing())
}

func TestNoReplyForRegularRecipient(t *testing.T) {
	s := newTestStore(t, Options{Replier: &stubReplier{reply: "nope"}})

	_, err := s.Send(context.Background(), alice, bob, "hello")
	require.NoError(t, err)
	s.WaitReplies()
	assert.Len(t, s.Messages(alice, bob), 1)
}

type failingPersister struct {
	saveErr error
}

func (p *failingPersister) SaveMessage(string, models.Message) error { return p.saveErr }
func (p *failingPersister) DeleteMessage(string, string) error       { return p.saveErr }
func (p *failingPersister) DeleteConversation(string) error          { return p.saveErr }
func (p *failingPersister) LoadConversations() (map[string][]models.Message, error) {
	return nil, nil
}

func TestPersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	s := newTestStore(t, Options{Persister: &failingPersister{saveErr: errors.New("disk full")}})

	m, err := s.Send(context.Background(), alice, bob, "hi")
	require.Error(t, err)
	assert.Equal(t, apperr.CodePersistence, apperr.CodeOf(err))

	// the logical operation succeeded; the caller may retry persistence
	msgs := s.Messages(alice, bob)
	require.Len(t, msgs, 1)
	assert.Equal(t, m.ID, msgs[0].ID)
}

type fixedSuppressor struct {
	kind undo.Kind
	id   string
}

func (f fixedSuppressor) Suppressed(kind undo.Kind, id string) bool {
	return kind == f.kind && id == f.id
}

func TestSuppressedMessageHiddenButRestorable(t *testing.T) {
	s := newTestStore(t, Options{})
	m, err := s.Send(context.Background(), alice, bob, "secret")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), alice, bob, "after")
	require.NoError(t, err)

	s.suppress = fixedSuppressor{kind: undo.KindMessage, id: m.ID}
	got := s.Messages(alice, bob)
	require.Len(t, got, 1)
	assert.Equal(t, "after", got[0].Text)

	// lifting the suppression restores the item in its original position
	s.suppress = nil
	got = s.Messages(alice, bob)
	require.Len(t, got, 2)
	assert.Equal(t, "secret", got[0].Text)
}

func TestLastMessageAndUnread(t *testing.T) {
	s := newTestStore(t, Options{})
	_, err := s.Send(context.Background(), alice, bob, "hi")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), bob, alice, "yo")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), bob, alice, "you there?")
	require.NoError(t, err)

	last, ok := s.LastMessage(alice, bob)
	require.True(t, ok)
	assert.Equal(t, "you there?", last.Text)
	assert.Equal(t, 2, s.UnreadCount(alice, bob))
	assert.Equal(t, 1, s.UnreadCount(bob, alice))
}
