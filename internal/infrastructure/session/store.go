package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

const (
	// DefaultHumanTimeout flips an idle HUMAN session back to AI so a
	// forgotten live chat does not silence the bot forever.
	DefaultHumanTimeout = 5 * time.Minute

	historyCap = 50
)

type record struct {
	Mode            domain.SessionMode `json:"mode"`
	LastInteraction time.Time          `json:"last_interaction"`
	History         []historyEntry     `json:"history"`
}

type historyEntry struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a JSON-file-backed session registry keyed by phone number.
// One process owns the file; the mutex serializes webhook handlers.
type Store struct {
	path         string
	humanTimeout time.Duration
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*record
}

func NewStore(path string, humanTimeout time.Duration) (*Store, error) {
	if humanTimeout <= 0 {
		humanTimeout = DefaultHumanTimeout
	}
	s := &Store{
		path:         path,
		humanTimeout: humanTimeout,
		now:          time.Now,
		sessions:     make(map[string]*record),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &s.sessions); err != nil {
		return fmt.Errorf("parse session file: %w", err)
	}
	return nil
}

// persist writes through a temp file so a crash mid-write cannot corrupt
// the registry.
func (s *Store) persist() error {
	raw, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (s *Store) GetMode(_ context.Context, phone string) (domain.SessionMode, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[phone]
	if !ok {
		return domain.ModeAI, false, nil
	}

	if rec.Mode == domain.ModeHuman && s.now().Sub(rec.LastInteraction) > s.humanTimeout {
		rec.Mode = domain.ModeAI
		if err := s.persist(); err != nil {
			return domain.ModeAI, false, err
		}
		return domain.ModeAI, true, nil
	}
	return rec.Mode, false, nil
}

func (s *Store) SetMode(_ context.Context, phone string, mode domain.SessionMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.session(phone)
	rec.Mode = mode
	rec.LastInteraction = s.now()
	return s.persist()
}

// Touch records one message into the session transcript and refreshes
// the idle clock.
func (s *Store) Touch(_ context.Context, phone, message, sender string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.session(phone)
	rec.LastInteraction = s.now()
	rec.History = append(rec.History, historyEntry{
		Sender:    sender,
		Message:   message,
		Timestamp: rec.LastInteraction,
	})
	if len(rec.History) > historyCap {
		rec.History = rec.History[len(rec.History)-historyCap:]
	}
	return s.persist()
}

func (s *Store) session(phone string) *record {
	rec, ok := s.sessions[phone]
	if !ok {
		rec = &record{Mode: domain.ModeAI}
		s.sessions[phone] = rec
	}
	return rec
}
