// Package filestore is the append-only backup file that every observation is written to.
package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrNotFound is returned by ReadAll when the backup file has not been created yet.
var ErrNotFound = errors.New("backup file not found")

const filePerm = 0o644

// Store appends lines to a single file and reads them back in file order.
// Writes are not synchronised between processes.
type Store struct {
	path string
}

// New returns a Store backed by the file at path. The file is created on first Append.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Append writes line to the end of the file with a single write call.
func (s *Store) Append(line string) (err error) {
	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer func() {
		if errClose := file.Close(); errClose != nil && err == nil {
			err = fmt.Errorf("failed to close backup file: %w", errClose)
		}
	}()

	if _, err = file.WriteString(line); err != nil {
		return fmt.Errorf("failed to append to backup file: %w", err)
	}

	return nil
}

// ReadAll returns every non-empty line, oldest first.
func (s *Store) ReadAll() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	lines := make([]string, 0, strings.Count(string(data), "\n")+1)
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines, nil
}
