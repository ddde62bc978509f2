// Package session persists the signed-in user between runs and gates access
// to the task screens.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type Session struct {
	UserID   string `yaml:"userId"`
	Username string `yaml:"username"`
}

func (s Session) Valid() bool {
	return s.UserID != ""
}

// Store keeps the session in a small YAML file.
type Store struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// DefaultPath is session.yml under the user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "taskboard", "session.yml")
}

func (s *Store) Path() string {
	return s.path
}

// Load reports false when no user id is stored.
func (s *Store) Load() (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("чтение сессии: %w", err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return Session{}, false, fmt.Errorf("разбор сессии: %w", err)
	}
	return sess, sess.Valid(), nil
}

func (s *Store) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("кодирование сессии: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("создание каталога сессии: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("запись сессии: %w", err)
	}
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("удаление сессии: %w", err)
	}
	return nil
}
