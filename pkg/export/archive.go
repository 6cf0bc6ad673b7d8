// Package export parses the official Instagram data export archive.
// The export layout and entry format both vary across versions, so file
// discovery searches several known locations and the parser accepts both
// observed shapes.
package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"igfollowers/pkg/logger"
	"igfollowers/pkg/models"
)

// relationshipEntry is one entry of a followers/following JSON file
type relationshipEntry struct {
	Title          string            `json:"title"`
	StringListData []stringListDatum `json:"string_list_data"`
}

type stringListDatum struct {
	Href      string `json:"href"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

// Archive provides access to one export, extracted on demand.
type Archive struct {
	root   string
	logger logger.Logger
}

// Open locates the root of an export. ZIP files are extracted into a
// sibling directory once; already-extracted directories are used as-is.
func Open(path string) (*Archive, error) {
	log := logger.GetLogger()

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		extractDir := strings.TrimSuffix(path, filepath.Ext(path))
		if _, err := os.Stat(extractDir); os.IsNotExist(err) {
			log.InfoWithFields("Extracting export archive", map[string]interface{}{
				"zip": path,
				"dir": extractDir,
			})
			if err := extractZip(path, extractDir); err != nil {
				return nil, fmt.Errorf("failed to extract export: %w", err)
			}
		}
		return &Archive{root: extractDir, logger: log}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("export path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("export path %s is not a directory or ZIP file", path)
	}

	return &Archive{root: path, logger: log}, nil
}

// Followers parses all follower files, deduplicated by handle. Instagram
// splits large follower lists across followers_1.json, followers_2.json
// and so on.
func (a *Archive) Followers() ([]models.Follower, error) {
	files := a.followerFiles()
	if len(files) == 0 {
		return nil, fmt.Errorf(
			"no followers JSON files found under %s (expected connections/followers_and_following/followers_1.json)",
			a.root)
	}

	var followers []models.Follower
	seen := make(map[string]struct{})

	for _, path := range files {
		a.logger.DebugWithFields("parsing follower file", map[string]interface{}{
			"file": filepath.Base(path),
		})

		entries, err := parseRelationshipFile(path)
		if err != nil {
			return nil, err
		}
		for _, f := range entries {
			if _, ok := seen[f.Handle]; ok {
				continue
			}
			seen[f.Handle] = struct{}{}
			followers = append(followers, f)
		}
	}

	return followers, nil
}

// Following parses following.json. Returns nil without error when the
// export does not include it; mutual-follow reports are skipped then.
func (a *Archive) Following() ([]models.Follower, error) {
	path := a.followingFile()
	if path == "" {
		return nil, nil
	}

	return parseRelationshipFile(path)
}

// searchDirs returns candidate directories across export format versions,
// including one level deeper for ZIPs with a wrapper folder.
func (a *Archive) searchDirs() []string {
	dirs := []string{
		filepath.Join(a.root, "connections", "followers_and_following"),
		filepath.Join(a.root, "followers_and_following"),
		a.root,
	}

	children, err := os.ReadDir(a.root)
	if err == nil {
		for _, child := range children {
			if !child.IsDir() {
				continue
			}
			base := filepath.Join(a.root, child.Name())
			dirs = append(dirs,
				filepath.Join(base, "connections", "followers_and_following"),
				filepath.Join(base, "followers_and_following"),
			)
		}
	}

	return dirs
}

func (a *Archive) followerFiles() []string {
	seen := make(map[string]struct{})
	var files []string

	for _, dir := range a.searchDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			if !strings.HasPrefix(name, "followers") || !strings.HasSuffix(name, ".json") {
				continue
			}
			path := filepath.Join(dir, name)
			resolved, err := filepath.Abs(path)
			if err != nil {
				resolved = path
			}
			if _, ok := seen[resolved]; ok {
				continue
			}
			seen[resolved] = struct{}{}
			files = append(files, path)
		}
	}

	return files
}

func (a *Archive) followingFile() string {
	for _, dir := range a.searchDirs() {
		candidate := filepath.Join(dir, "following.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// parseRelationshipFile parses one followers/following JSON file in
// either export format:
//
//	Format A (list):   [{"title": "", "string_list_data": [...]}, ...]
//	Format B (object): {"relationships_followers": [<format A entries>]}
func parseRelationshipFile(path string) ([]models.Follower, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var entries []relationshipEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Object form: unwrap the first list-valued key
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		for _, raw := range wrapper {
			var inner []relationshipEntry
			if err := json.Unmarshal(raw, &inner); err == nil {
				entries = inner
				break
			}
		}
	}

	var followers []models.Follower
	for _, entry := range entries {
		for _, sd := range entry.StringListData {
			handle := strings.TrimSpace(sd.Value)
			if handle == "" {
				handle = handleFromHref(sd.Href)
			}
			if handle == "" {
				continue
			}

			f := models.Follower{
				Handle:    handle,
				Timestamp: sd.Timestamp,
			}
			if sd.Timestamp > 0 {
				f.FollowDate = time.Unix(sd.Timestamp, 0).UTC().Format("2006-01-02")
			}
			followers = append(followers, f)
		}
	}

	return followers, nil
}

// handleFromHref recovers a username from a profile link when the value
// field is empty.
func handleFromHref(href string) string {
	if !strings.Contains(href, "instagram.com/") {
		return ""
	}
	trimmed := strings.TrimRight(href, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	return trimmed[idx+1:]
}

// FilterSince keeps followers whose follow date is on or after since
// (YYYY-MM-DD). Records without a follow date are dropped.
func FilterSince(followers []models.Follower, since string) []models.Follower {
	if since == "" {
		return followers
	}

	var kept []models.Follower
	for _, f := range followers {
		if f.FollowDate != "" && f.FollowDate >= since {
			kept = append(kept, f)
		}
	}
	return kept
}

// extractZip extracts a ZIP archive into dir, rejecting entries that
// would escape it.
func extractZip(zipPath, dir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, entry := range reader.File {
		dest := filepath.Join(dir, entry.Name)
		if !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("zip entry %q escapes extraction directory", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}

		src, err := entry.Open()
		if err != nil {
			return err
		}

		out, err := os.Create(dest)
		if err != nil {
			src.Close()
			return err
		}

		_, err = io.Copy(out, src)
		src.Close()
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
	}

	return nil
}
