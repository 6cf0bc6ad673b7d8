package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store manages the per-target data directory:
//
//	<base>/<target>/
//	    followers_<strategy>.json   raw collected data
//	    following_export.json
//	    profiles.csv                enriched records
//	    enriched.log                enrichment checkpoint
//	    reports/                    fixed-name CSV outputs
type Store struct {
	baseDir string
}

// New creates a store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// TargetDir returns (and creates) the directory for one target account.
func (s *Store) TargetDir(target string) (string, error) {
	dir := filepath.Join(s.baseDir, target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create target directory: %w", err)
	}
	return dir, nil
}

// ReportsDir returns (and creates) the reports subdirectory for a target.
func (s *Store) ReportsDir(target string) (string, error) {
	dir := filepath.Join(s.baseDir, target, "reports")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	return dir, nil
}

// FollowersFile returns the raw follower list path for a strategy.
func (s *Store) FollowersFile(target, strategy string) string {
	return filepath.Join(s.baseDir, target, fmt.Sprintf("followers_%s.json", strategy))
}

// FollowingFile returns the following list path (export strategy only).
func (s *Store) FollowingFile(target string) string {
	return filepath.Join(s.baseDir, target, "following_export.json")
}

// ProfilesCSV returns the enriched profiles path for a target.
func (s *Store) ProfilesCSV(target string) string {
	return filepath.Join(s.baseDir, target, "profiles.csv")
}

// CheckpointLog returns the enrichment checkpoint path for a target.
func (s *Store) CheckpointLog(target string) string {
	return filepath.Join(s.baseDir, target, "enriched.log")
}

// PostsFile returns the scraped posts path (cloud actor strategy).
func (s *Store) PostsFile(target string) string {
	return filepath.Join(s.baseDir, target, "posts_apify.json")
}

// CommentsFile returns the scraped comments path (cloud actor strategy).
func (s *Store) CommentsFile(target string) string {
	return filepath.Join(s.baseDir, target, "comments_apify.json")
}

// RawProfilesFile returns the raw actor profile dump path.
func (s *Store) RawProfilesFile(target string) string {
	return filepath.Join(s.baseDir, target, "profiles_apify_raw.json")
}

// SessionFile returns the persisted session path for the session strategy.
func (s *Store) SessionFile(username string) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("session-%s.json", username))
}

// SaveJSON writes v to path atomically (temp file + rename) so an
// interrupted run never leaves a truncated file behind.
func SaveJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}

// LoadJSON reads path into v. Returns os.ErrNotExist if the file is absent.
func LoadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Exists reports whether a file is present.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
