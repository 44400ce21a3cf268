package session

import (
	"encoding/json"
	"errors"
	"fairwaydesk/app/config"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

// Service stores the ordered turn log of every conversation, keyed by
// session id. Entries expire on their own after the configured inactivity
// window, every append pushes the window forward.
type Service struct {
	cfg *config.Config
	db  *badger.DB
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	db, err := badger.Open(badger.DefaultOptions(cfg.Session.Dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	return &Service{
		cfg: cfg,
		db:  db,
	}, nil
}

// NewInMemory backs the store with an in-memory badger instance.
func NewInMemory(cfg *config.Config) (*Service, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	return &Service{
		cfg: cfg,
		db:  db,
	}, nil
}

// Get returns the turn log of a session, empty if the session is unknown
// or already expired.
func (s *Service) Get(sessionID string) ([]Turn, error) {
	var turns []Turn

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &turns)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read session %q: %w", sessionID, err)
	}

	return turns, nil
}

// Append adds a turn to the end of the session log and refreshes the
// active TTL.
func (s *Service) Append(sessionID string, turn Turn) error {
	turns, err := s.Get(sessionID)
	if err != nil {
		return err
	}

	return s.Set(sessionID, append(turns, turn), s.cfg.Session.TTL)
}

// Set replaces the whole turn log of a session under the given TTL.
func (s *Service) Set(sessionID string, turns []Turn, ttl time.Duration) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to marshal session %q: %w", sessionID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(sessionID), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to write session %q: %w", sessionID, err)
	}

	return nil
}

// Archive re-stores the session under the long archival TTL, typically
// after the call ended. Unknown sessions are a no-op.
func (s *Service) Archive(sessionID string) error {
	turns, err := s.Get(sessionID)
	if err != nil {
		return err
	}

	if len(turns) == 0 {
		return nil
	}

	return s.Set(sessionID, turns, s.cfg.Session.ArchiveTTL)
}

func (s *Service) Shutdown() error {
	return s.db.Close()
}
