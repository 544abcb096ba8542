package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// DefaultLimit is used when a caller asks for a non-positive page size.
const DefaultLimit = 50

// MaxLimit caps page sizes.
const MaxLimit = 500

// EntryCursor is the keyset position of a journal entry in a listing ordered by
// (entry date DESC, created at DESC, entry id DESC).
type EntryCursor struct {
	EntryDate time.Time
	CreatedAt time.Time
	EntryID   string
}

// After reports whether an entry with the given keys sorts strictly after the cursor.
func (c EntryCursor) After(entryDate, createdAt time.Time, entryID string) bool {
	if !entryDate.Equal(c.EntryDate) {
		return entryDate.Before(c.EntryDate)
	}
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	return entryID < c.EntryID
}

// EncodeToken creates a base64 encoded token from an entry cursor.
func EncodeToken(c EntryCursor) string {
	tokenStr := fmt.Sprintf("%s|%s|%s", c.EntryDate.Format(timeFormat), c.CreatedAt.Format(timeFormat), c.EntryID)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded token back into an entry cursor.
func DecodeToken(token string) (EntryCursor, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	if parts[2] == "" {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (missing entry id)")
	}

	return EntryCursor{EntryDate: entryDate, CreatedAt: createdAt, EntryID: parts[2]}, nil
}

// NormalizeLimit clamps a requested page size into [1, MaxLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
