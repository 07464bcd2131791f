package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// Keyset is the position of the last row of a page in a listing ordered by
// date, then creation time, then id, all descending.
type Keyset struct {
	Date      time.Time
	CreatedAt time.Time
	ID        string
}

// After reports whether a row sorts after the keyset position, i.e. belongs
// to a later page.
func (k Keyset) After(date, createdAt time.Time, id string) bool {
	if !date.Equal(k.Date) {
		return date.Before(k.Date)
	}
	if !createdAt.Equal(k.CreatedAt) {
		return createdAt.Before(k.CreatedAt)
	}
	return id < k.ID
}

// EncodeToken creates a base64 encoded token from a keyset position.
func EncodeToken(k Keyset) string {
	tokenStr := fmt.Sprintf("%s|%s|%s", k.Date.Format(timeFormat), k.CreatedAt.Format(timeFormat), k.ID)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded token back into a keyset position.
func DecodeToken(token string) (Keyset, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Keyset{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 || parts[2] == "" {
		return Keyset{}, fmt.Errorf("invalid pagination token format (split)")
	}

	date, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Keyset{}, fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Keyset{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return Keyset{Date: date, CreatedAt: createdAt, ID: parts[2]}, nil
}
