// Package convo owns direct messages between exactly two participants.
// Conversations are addressed by the canonical unordered-pair key; the
// in-memory table is the source of truth for the session and is mirrored
// through an optional persister.
package convo

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperr "campusconnect/pkg/errors"
	"campusconnect/pkg/logger"
	"campusconnect/pkg/models"
	"campusconnect/pkg/telemetry"
	"campusconnect/pkg/undo"
	"campusconnect/pkg/utils"
)

// Replier is the external reply-generation collaborator. It is untrusted:
// its errors must never roll back an already-stored user message.
type Replier interface {
	Reply(ctx context.Context, prompt string) (string, error)
}

// Persister mirrors the table into durable storage. All methods may fail
// without invalidating the in-memory state.
type Persister interface {
	SaveMessage(convKey string, m models.Message) error
	DeleteMessage(convKey, id string) error
	DeleteConversation(convKey string) error
	LoadConversations() (map[string][]models.Message, error)
}

// Suppressor hides items whose deletion is pending from listings.
type Suppressor interface {
	Suppressed(kind undo.Kind, id string) bool
}

// Options configures a Store. Zero-value fields fall back to defaults;
// Persister, Replier and Suppressor are all optional.
type Options struct {
	Persister   Persister
	Replier     Replier
	Suppressor  Suppressor
	AssistantID string
	// ReplyRPS/ReplyBurst throttle outbound collaborator calls.
	ReplyRPS     float64
	ReplyBurst   int
	ReplyTimeout time.Duration
	Now          func() time.Time
}

// Store is constructed once per process and injected into consumers.
type Store struct {
	mu    sync.RWMutex
	table map[string][]models.Message

	persister   Persister
	replier     Replier
	suppress    Suppressor
	assistantID string
	limiter     *rate.Limiter
	timeout     time.Duration
	now         func() time.Time

	// seq orders appends across the whole table; assigned under mu so
	// the mirror key order can never diverge from memory append order.
	seq uint64

	composing int32 // store-scoped, not per-conversation
	replyWG   sync.WaitGroup
}

func New(opts Options) (*Store, error) {
	s := &Store{
		table:       make(map[string][]models.Message),
		persister:   opts.Persister,
		replier:     opts.Replier,
		suppress:    opts.Suppressor,
		assistantID: opts.AssistantID,
		timeout:     opts.ReplyTimeout,
		now:         opts.Now,
	}
	if s.assistantID == "" {
		s.assistantID = "ai@campusconnect.com"
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	rps := opts.ReplyRPS
	if rps <= 0 {
		rps = 1
	}
	burst := opts.ReplyBurst
	if burst <= 0 {
		burst = 3
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), burst)

	if s.persister != nil {
		loaded, err := s.persister.LoadConversations()
		if err != nil {
			// keep working memory-only; durable copy may recover later
			logger.Error("conversation_load_failed", "error", err)
			telemetry.PersistFailures.Inc()
		} else {
			s.table = loaded
			if s.table == nil {
				s.table = make(map[string][]models.Message)
			}
			for _, msgs := range s.table {
				for _, m := range msgs {
					if m.Seq > s.seq {
						s.seq = m.Seq
					}
				}
			}
		}
	}
	return s, nil
}

// AssistantID returns the reserved participant identity of the scripted
// responder.
func (s *Store) AssistantID() string { return s.assistantID }

// Send appends a message from `from` to `to`. On a persistence failure
// the message is still stored in memory and returned together with a
// PERSISTENCE error so the caller may retry persistence without
// re-issuing the logical operation.
func (s *Store) Send(ctx context.Context, from, to, text string) (models.Message, error) {
	if from == "" {
		return models.Message{}, apperr.ErrNoCurrentUser
	}
	if strings.TrimSpace(text) == "" {
		return models.Message{}, apperr.ErrEmptyText
	}

	m := models.Message{
		ID:        utils.GenID(),
		Sender:    from,
		Recipient: to,
		Text:      text,
	}
	key := models.ConversationKey(from, to)

	// timestamp and sequence are taken under the lock so concurrent
	// sends mirror in the same order they append
	s.mu.Lock()
	s.seq++
	m.Seq = s.seq
	m.TS = s.now().UTC().UnixNano()
	s.table[key] = append(s.table[key], m)
	s.mu.Unlock()
	telemetry.MessagesSent.Inc()

	// persist before requesting the reply so the mirror keeps append order
	var perr error
	if s.persister != nil {
		if err := s.persister.SaveMessage(key, m); err != nil {
			telemetry.PersistFailures.Inc()
			logger.Error("message_persist_failed", "conv", key, "id", m.ID, "error", err)
			perr = apperr.ErrPersistFailed(err)
		}
	}

	if to == s.assistantID && s.replier != nil {
		s.beginReply()
		go s.requestReply(key, from, text)
	}
	return m, perr
}

func (s *Store) beginReply() {
	s.mu.Lock()
	s.composing++
	s.mu.Unlock()
	telemetry.Composing.Set(1)
	s.replyWG.Add(1)
}

func (s *Store) endReply() {
	s.mu.Lock()
	s.composing--
	idle := s.composing == 0
	s.mu.Unlock()
	if idle {
		telemetry.Composing.Set(0)
	}
	s.replyWG.Done()
}

// requestReply runs off the send path. Collaborator failures are logged,
// never surfaced to the sender, and never touch the stored user message.
func (s *Store) requestReply(key, user, prompt string) {
	defer s.endReply()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		telemetry.AssistantFailures.Inc()
		logger.Warn("assistant_reply_throttled", "conv", key, "error", err)
		return
	}
	text, err := s.replier.Reply(ctx, prompt)
	if err != nil {
		telemetry.AssistantFailures.Inc()
		logger.Error("assistant_reply_failed", "conv", key, "error", apperr.ErrReplyFailed(err))
		return
	}

	reply := models.Message{
		ID:        utils.GenID(),
		Sender:    s.assistantID,
		Recipient: user,
		Text:      text,
	}
	s.mu.Lock()
	s.seq++
	reply.Seq = s.seq
	reply.TS = s.now().UTC().UnixNano()
	s.table[key] = append(s.table[key], reply)
	s.mu.Unlock()
	telemetry.AssistantReplies.Inc()

	if s.persister != nil {
		if err := s.persister.SaveMessage(key, reply); err != nil {
			telemetry.PersistFailures.Inc()
			logger.Error("reply_persist_failed", "conv", key, "id", reply.ID, "error", err)
		}
	}
}

// Composing reports whether any assistant reply is outstanding. The flag
// is scoped to the whole store; callers must tolerate this coarse
// granularity.
func (s *Store) Composing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.composing > 0
}

// WaitReplies blocks until all outstanding reply requests settle.
func (s *Store) WaitReplies() { s.replyWG.Wait() }

// Messages returns the conversation between the two participants in
// append order. Unknown keys yield an empty slice. Items with a pending
// deletion are hidden.
func (s *Store) Messages(from, to string) []models.Message {
	key := models.ConversationKey(from, to)
	if s.suppress != nil && s.suppress.Suppressed(undo.KindConversation, key) {
		return []models.Message{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.table[key]
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if s.suppress != nil && s.suppress.Suppressed(undo.KindMessage, m.ID) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// LastMessage returns the newest visible message of the conversation.
func (s *Store) LastMessage(from, to string) (models.Message, bool) {
	msgs := s.Messages(from, to)
	if len(msgs) == 0 {
		return models.Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// UnreadCount counts visible messages authored by the peer.
func (s *Store) UnreadCount(current, peer string) int {
	n := 0
	for _, m := range s.Messages(current, peer) {
		if m.Sender == peer {
			n++
		}
	}
	return n
}

// DeleteMessage removes exactly one message by id from the addressed
// conversation. Absent ids are a no-op, not an error; the call is
// idempotent.
func (s *Store) DeleteMessage(from, to, id string) error {
	key := models.ConversationKey(from, to)

	s.mu.Lock()
	msgs := s.table[key]
	kept := msgs[:0:0]
	removed := false
	for _, m := range msgs {
		if m.ID == id {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	if removed {
		s.table[key] = kept
	}
	s.mu.Unlock()

	if !removed {
		return nil
	}
	logger.Info("message_deleted", "conv", key, "id", id)
	if s.persister != nil {
		if err := s.persister.DeleteMessage(key, id); err != nil {
			telemetry.PersistFailures.Inc()
			logger.Error("message_delete_persist_failed", "conv", key, "id", id, "error", err)
			return apperr.ErrPersistFailed(err)
		}
	}
	return nil
}

// DeleteConversation removes the entire key. Absent keys are a no-op.
func (s *Store) DeleteConversation(from, to string) error {
	key := models.ConversationKey(from, to)

	s.mu.Lock()
	_, existed := s.table[key]
	delete(s.table, key)
	s.mu.Unlock()

	if !existed {
		return nil
	}
	logger.Info("conversation_deleted", "conv", key)
	if s.persister != nil {
		if err := s.persister.DeleteConversation(key); err != nil {
			telemetry.PersistFailures.Inc()
			logger.Error("conversation_delete_persist_failed", "conv", key, "error", err)
			return apperr.ErrPersistFailed(err)
		}
	}
	return nil
}

// Message looks a single visible message up by id within a conversation.
func (s *Store) Message(from, to, id string) (models.Message, bool) {
	for _, m := range s.Messages(from, to) {
		if m.ID == id {
			return m, true
		}
	}
	return models.Message{}, false
}
