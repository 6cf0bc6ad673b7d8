package checkpoint

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"igfollowers/pkg/logger"
)

// Log is an append-only record of completed unit identifiers. It is read
// once at startup into a set; each completed unit of work appends one
// line. Entries are never pruned, so an interrupted run resumes by
// skipping everything already present.
type Log struct {
	path   string
	file   *os.File
	done   map[string]struct{}
	logger logger.Logger
}

// Open opens (or creates) the checkpoint log at path and loads the set of
// completed identifiers.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint log: %w", err)
	}

	done := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			done[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read checkpoint log: %w", err)
	}

	l := &Log{
		path:   path,
		file:   file,
		done:   done,
		logger: logger.GetLogger(),
	}

	if len(done) > 0 {
		l.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
			"path":      path,
			"completed": len(done),
		})
	}

	return l, nil
}

// Done reports whether the identifier has already been processed.
func (l *Log) Done(id string) bool {
	_, ok := l.done[id]
	return ok
}

// Count returns the number of completed identifiers.
func (l *Log) Count() int {
	return len(l.done)
}

// Record appends an identifier to the log and flushes it to disk. Safe to
// call with an identifier that is already recorded.
func (l *Log) Record(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("empty checkpoint identifier")
	}
	if _, ok := l.done[id]; ok {
		return nil
	}

	if _, err := fmt.Fprintln(l.file, id); err != nil {
		return fmt.Errorf("failed to append checkpoint entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync checkpoint log: %w", err)
	}

	l.done[id] = struct{}{}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	return l.file.Close()
}

// Path returns the on-disk location of the log.
func (l *Log) Path() string {
	return l.path
}

// Remove deletes a checkpoint log, for starting a collection over.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint log: %w", err)
	}
	return nil
}
