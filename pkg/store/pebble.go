package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"campusconnect/pkg/logger"
	"campusconnect/pkg/models"
)

// Pebble-backed mirror of the in-memory state. The in-memory stores are
// the source of truth for the session; this package only has to keep a
// durable copy that can be reloaded at startup. Write failures are
// reported to callers and must leave memory usable.

var db *pebble.DB

var dbPath string

// seq reduces story key collisions when multiple writes share the same
// nanosecond timestamp. Message keys carry the message's own append
// sequence instead.
var seq uint64

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

const (
	convPrefix  = "conv:"
	msgInfix    = ":msg:"
	storyPrefix = "story:"
)

func msgKey(convKey string, m models.Message) string {
	return fmt.Sprintf("%s%s%s%020d", convPrefix, convKey, msgInfix, m.Seq)
}

// SaveMessage appends a message under its conversation key. The pebble
// key carries the message's append sequence so iteration preserves
// append order even when concurrent writes land out of order.
func SaveMessage(convKey string, m models.Message) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	key := msgKey(convKey, m)
	if err := db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("save_message_failed", "conv", convKey, "key", key, "error", err)
		return err
	}
	logger.Debug("message_saved", "conv", convKey, "id", m.ID)
	return nil
}

// ListMessages returns all persisted messages for a conversation key in
// append order.
func ListMessages(convKey string) ([]models.Message, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(convPrefix + convKey + msgInfix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Message
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Error("list_messages_bad_record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// DeleteMessage removes the persisted record for one message id within a
// conversation. Absent ids are a no-op, not an error.
func DeleteMessage(convKey, id string) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(convPrefix + convKey + msgInfix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			continue
		}
		if m.ID == id {
			key := append([]byte(nil), iter.Key()...)
			return db.Delete(key, pebble.Sync)
		}
	}
	return iter.Error()
}

// DeleteConversation removes every persisted record under a conversation
// key.
func DeleteConversation(convKey string) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	start := []byte(convPrefix + convKey + msgInfix)
	end := append(append([]byte(nil), start...), 0xff)
	return db.DeleteRange(start, end, pebble.Sync)
}

// LoadConversations rebuilds the whole conversation table from disk.
func LoadConversations() (map[string][]models.Message, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	out := map[string][]models.Message{}
	prefix := []byte(convPrefix)
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		k := iter.Key()
		if !bytes.HasPrefix(k, prefix) {
			break
		}
		rest := string(k[len(convPrefix):])
		i := strings.LastIndex(rest, msgInfix)
		if i < 0 {
			continue
		}
		convKey := rest[:i]
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Error("load_conversations_bad_record", "key", string(k), "error", err)
			continue
		}
		out[convKey] = append(out[convKey], m)
	}
	return out, iter.Error()
}

// SaveStory persists one story record.
func SaveStory(st models.Story) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}
	s := atomic.AddUint64(&seq, 1)
	key := fmt.Sprintf("%s%020d-%06d", storyPrefix, st.CreatedTS, s)
	if err := db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("save_story_failed", "key", key, "error", err)
		return err
	}
	logger.Debug("story_saved", "id", st.ID, "author", st.Author)
	return nil
}

// LoadStories returns all persisted stories in creation order.
func LoadStories() ([]models.Story, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(storyPrefix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Story
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var st models.Story
		if err := json.Unmarshal(iter.Value(), &st); err != nil {
			logger.Error("load_stories_bad_record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, st)
	}
	return out, iter.Error()
}

// DeleteStory removes the persisted record for one story id. Absent ids
// are a no-op.
func DeleteStory(id string) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(storyPrefix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var st models.Story
		if err := json.Unmarshal(iter.Value(), &st); err != nil {
			continue
		}
		if st.ID == id {
			key := append([]byte(nil), iter.Key()...)
			return db.Delete(key, pebble.Sync)
		}
	}
	return iter.Error()
}
