package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"igfollowers/pkg/models"
)

// profileFields is the column order of profiles.csv. All four strategies
// write the same schema so the Analyze stage has a single input shape.
var profileFields = []string{
	"handle", "ig_user_id", "full_name",
	"follower_count", "following_count",
	"is_verified", "is_private",
	"is_business", "is_professional",
	"category", "bio",
	"external_url", "post_count",
	"profile_pic_url", "follow_date",
}

// ProfileWriter appends enriched profile rows to profiles.csv one at a
// time, flushing after each row so interruption never loses work.
type ProfileWriter struct {
	file *os.File
	csv  *csv.Writer
}

// NewProfileWriter opens the profiles CSV for appending, writing the
// header first if the file is new or empty.
func NewProfileWriter(path string) (*ProfileWriter, error) {
	info, err := os.Stat(path)
	needHeader := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open profiles file: %w", err)
	}

	w := &ProfileWriter{file: file, csv: csv.NewWriter(file)}

	if needHeader {
		if err := w.csv.Write(profileFields); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write profiles header: %w", err)
		}
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return w, nil
}

// Append writes one profile row and flushes it.
func (w *ProfileWriter) Append(p models.Profile) error {
	row := []string{
		p.Handle, p.UserID, p.FullName,
		strconv.Itoa(p.FollowerCount), strconv.Itoa(p.FollowingCount),
		strconv.FormatBool(p.IsVerified), strconv.FormatBool(p.IsPrivate),
		strconv.FormatBool(p.IsBusiness), strconv.FormatBool(p.IsProfessional),
		p.Category, p.Bio,
		p.ExternalURL, strconv.Itoa(p.PostCount),
		p.PicURL, p.FollowDate,
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write profile row: %w", err)
	}
	w.csv.Flush()
	return w.csv.Error()
}

// Close closes the underlying file.
func (w *ProfileWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// ReadProfiles loads all enriched profiles from a profiles CSV.
func ReadProfiles(path string) ([]models.Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Map header positions so column reordering in old files still reads
	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[name] = i
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var profiles []models.Profile
	for _, row := range records[1:] {
		profiles = append(profiles, models.Profile{
			Handle:         field(row, "handle"),
			UserID:         field(row, "ig_user_id"),
			FullName:       field(row, "full_name"),
			FollowerCount:  atoi(field(row, "follower_count")),
			FollowingCount: atoi(field(row, "following_count")),
			IsVerified:     atob(field(row, "is_verified")),
			IsPrivate:      atob(field(row, "is_private")),
			IsBusiness:     atob(field(row, "is_business")),
			IsProfessional: atob(field(row, "is_professional")),
			Category:       field(row, "category"),
			Bio:            field(row, "bio"),
			ExternalURL:    field(row, "external_url"),
			PostCount:      atoi(field(row, "post_count")),
			PicURL:         field(row, "profile_pic_url"),
			FollowDate:     field(row, "follow_date"),
		})
	}

	return profiles, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atob(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
