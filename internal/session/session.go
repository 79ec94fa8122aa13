package session

import (
	"log"
	"sync"
	"time"
)

// State is a step of the form conversation.
type State string

const (
	Idle                 State = "idle"
	AwaitingChatID       State = "awaiting_chat_id"
	AwaitingStudentName  State = "awaiting_student_name"
	AwaitingEmployeeName State = "awaiting_employee_name"
	AwaitingNextLesson   State = "awaiting_next_lesson"
	AwaitingHours        State = "awaiting_hours"
	AwaitingRate         State = "awaiting_rate"
)

// Session is the form progress of one chat.
type Session struct {
	ChatID    int64             `json:"chat_id"`
	State     State             `json:"state"`
	Fields    map[string]string `json:"fields"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Repository persists session snapshots so forms survive a restart.
type Repository interface {
	LoadAll() ([]Session, error)
	Upsert(s Session) error
	Remove(chatID int64) error
}

// Manager owns all sessions. There is at most one session per chat and an
// idle chat has no session at all. Repository writes happen under the
// manager lock so the stored snapshots follow the in-memory order.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	repo     Repository
	now      func() time.Time
}

// NewManager creates a manager and preloads snapshots from repo, if any.
func NewManager(repo Repository) *Manager {
	m := &Manager{sessions: make(map[int64]*Session), repo: repo, now: time.Now}
	if repo != nil {
		stored, err := repo.LoadAll()
		if err != nil {
			log.Printf("⚠️ failed to load sessions: %v", err)
		}
		for i := range stored {
			s := stored[i]
			if s.State == Idle || s.State == "" {
				continue
			}
			if s.Fields == nil {
				s.Fields = make(map[string]string)
			}
			m.sessions[s.ChatID] = &s
		}
	}
	return m
}

func (m *Manager) State(chatID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[chatID]; ok {
		return s.State
	}
	return Idle
}

// SetState moves the chat to st. Moving to Idle discards the session.
func (m *Manager) SetState(chatID int64, st State) {
	if st == Idle {
		m.Clear(chatID)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreate(chatID)
	s.State = st
	s.UpdatedAt = m.now()
	m.persist(s.snapshot())
}

// UpdateFields merges partial into the collected fields and returns a copy
// of the result.
func (m *Manager) UpdateFields(chatID int64, partial map[string]string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreate(chatID)
	for k, v := range partial {
		s.Fields[k] = v
	}
	s.UpdatedAt = m.now()
	snap := s.snapshot()
	m.persist(snap)
	return copyFields(snap.Fields)
}

// Fields returns a copy of the collected fields.
func (m *Manager) Fields(chatID int64) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return map[string]string{}
	}
	return copyFields(s.Fields)
}

func (m *Manager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(chatID)
}

// Reap discards sessions untouched for longer than maxIdle and returns the
// affected chats.
func (m *Manager) Reap(maxIdle time.Duration) []int64 {
	if maxIdle <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxIdle)
	var expired []int64
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			m.remove(id)
			expired = append(expired, id)
		}
	}
	return expired
}

// Active returns the number of chats with a form in progress.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) getOrCreate(chatID int64) *Session {
	s, ok := m.sessions[chatID]
	if !ok {
		s = &Session{ChatID: chatID, State: Idle, Fields: make(map[string]string)}
		m.sessions[chatID] = s
	}
	return s
}

// remove drops the session of chatID. The caller holds m.mu.
func (m *Manager) remove(chatID int64) {
	if _, ok := m.sessions[chatID]; !ok {
		return
	}
	delete(m.sessions, chatID)
	if m.repo == nil {
		return
	}
	if err := m.repo.Remove(chatID); err != nil {
		log.Printf("⚠️ failed to remove session %d: %v", chatID, err)
	}
}

// persist writes a snapshot. The caller holds m.mu.
func (m *Manager) persist(s Session) {
	if m.repo == nil {
		return
	}
	if err := m.repo.Upsert(s); err != nil {
		log.Printf("⚠️ failed to persist session %d: %v", s.ChatID, err)
	}
}

func (s *Session) snapshot() Session {
	out := *s
	out.Fields = copyFields(s.Fields)
	return out
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
