// Package chat stores teacher/student message threads, one key per pair.
package chat

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/kv"
	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GuestStudent is the student id used when the sender is not signed in.
const GuestStudent = "guest"

// NoMessagesPreview is the inbox preview of an empty thread.
const NoMessagesPreview = "No messages yet"

// Message is one chat message.
type Message struct {
	ID         string `json:"id" yaml:"id"`
	Me         bool   `json:"me,omitempty" yaml:"me,omitempty"`
	Text       string `json:"text" yaml:"text"`
	At         string `json:"at" yaml:"at"`
	SenderID   string `json:"senderId,omitempty" yaml:"senderId,omitempty"`
	SenderName string `json:"senderName,omitempty" yaml:"senderName,omitempty"`
	TeacherID  string `json:"teacherId,omitempty" yaml:"teacherId,omitempty"`
}

// Summary describes one thread in a teacher's inbox.
type Summary struct {
	Key       string `json:"key" yaml:"key"`
	StudentID string `json:"studentId" yaml:"studentId"`
	Title     string `json:"title" yaml:"title"`
	Preview   string `json:"preview" yaml:"preview"`
	At        string `json:"at,omitempty" yaml:"at,omitempty"`
}

// Chat reads and appends threads.
type Chat struct {
	kv    kv.Store
	log   zerolog.Logger
	clock func() utc.Time
	mu    sync.Mutex
}

// Option configures Chat.
type Option func(*Chat)

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *Chat) {
		if l != nil {
			c.log = *l
		}
	}
}

// WithClock sets the time source for message timestamps.
func WithClock(clock func() utc.Time) Option {
	return func(c *Chat) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New creates a Chat over kvs.
func New(kvs kv.Store, opts ...Option) *Chat {
	c := &Chat{kv: kvs, log: *logging.Default(), clock: utc.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ThreadKey returns the key-value key of a thread.
func ThreadKey(teacherID, studentID string) string {
	if studentID == "" {
		studentID = GuestStudent
	}
	return constants.ChatKeyPrefix + teacherID + "_" + studentID
}

// Thread returns the messages of a thread, oldest first. Unreadable threads are empty.
func (c *Chat) Thread(ctx context.Context, teacherID, studentID string) ([]Message, error) {
	if teacherID == "" {
		return nil, errors.NewValidationError("teacherId", teacherID, "teacher id is required")
	}
	return c.read(ctx, ThreadKey(teacherID, studentID)), nil
}

// Send appends msg to a thread, assigning its id and timestamp.
func (c *Chat) Send(ctx context.Context, teacherID, studentID string, msg Message) (Message, error) {
	if teacherID == "" {
		return Message{}, errors.NewValidationError("teacherId", teacherID, "teacher id is required")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return Message{}, errors.NewValidationError("text", msg.Text, "message text is required")
	}
	msg.ID = uuid.NewString()
	msg.At = catalogs.FormatTimestamp(c.clock())
	msg.TeacherID = teacherID

	key := ThreadKey(teacherID, studentID)
	c.mu.Lock()
	defer c.mu.Unlock()
	messages := append(c.read(ctx, key), msg)
	b, err := json.Marshal(messages)
	if err != nil {
		return Message{}, errors.WrapStorage("write", key, err)
	}
	if err := c.kv.Set(ctx, key, string(b)); err != nil {
		return Message{}, errors.WrapStorage("write", key, err)
	}
	return msg, nil
}

// Inbox summarizes every thread of teacherID, latest activity first.
func (c *Chat) Inbox(ctx context.Context, teacherID string) ([]Summary, error) {
	if teacherID == "" {
		return nil, errors.NewValidationError("teacherId", teacherID, "teacher id is required")
	}
	prefix := constants.ChatKeyPrefix + teacherID + "_"
	keys, err := c.kv.Keys(ctx, prefix)
	if err != nil {
		return nil, errors.WrapStorage("read", prefix+"*", err)
	}

	out := make([]Summary, 0, len(keys))
	for _, key := range keys {
		studentID := strings.TrimPrefix(key, prefix)
		s := Summary{
			Key:       key,
			StudentID: studentID,
			Title:     "Student " + firstRunes(studentID, 4),
			Preview:   NoMessagesPreview,
		}
		if messages := c.read(ctx, key); len(messages) > 0 {
			last := messages[len(messages)-1]
			if last.SenderName != "" {
				s.Title = last.SenderName
			}
			if last.Text != "" {
				s.Preview = last.Text
			}
			s.At = last.At
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return catalogs.ParseTimestamp(out[i].At).After(catalogs.ParseTimestamp(out[j].At))
	})
	return out, nil
}

func (c *Chat) read(ctx context.Context, key string) []Message {
	raw, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(errors.WrapStorage("read", key, err)).Msg("chat thread unreadable")
		return []Message{}
	}
	if !ok || raw == "" {
		return []Message{}
	}
	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		c.log.Warn().Err(errors.WrapStorage("read", key, err)).Msg("chat thread unreadable")
		return []Message{}
	}
	return messages
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
