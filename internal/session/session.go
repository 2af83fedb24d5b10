package session

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrNoSession is returned when no account is logged in.
var ErrNoSession = errors.New("no active session, please login first")

// Session identifies the account the command-line client acts on.
type Session struct {
	AccountID     int64
	AccountNumber string
}

// File persists a Session as two lines: the account id and the account number.
type File struct {
	Path string
}

// NewFile returns a session file at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Save overwrites the session file.
func (f *File) Save(s Session) error {
	data := fmt.Sprintf("%d\n%s\n", s.AccountID, s.AccountNumber)
	if err := os.WriteFile(f.Path, []byte(data), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load reads the current session, returning ErrNoSession when none exists.
func (f *File) Load() (Session, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		return Session{}, fmt.Errorf("malformed session file %s", f.Path)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(lines[0]), 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("malformed session file %s: %w", f.Path, err)
	}
	return Session{AccountID: id, AccountNumber: strings.TrimSpace(lines[1])}, nil
}

// Clear removes the session file. Clearing without a session is not an error.
func (f *File) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
