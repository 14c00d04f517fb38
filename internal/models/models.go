package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the textual form of dates used by search and reports.
const TimestampLayout = "2006-01-02T15:04:05"

// FormatTimestamp renders t with TimestampLayout, or "" when t is nil.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimestampLayout)
}

// timestampInputLayouts are the zone-less forms accepted from clients, read as local time.
var timestampInputLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339, or a local date-time without zone such as
// "2025-03-14T09:30:00".
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range timestampInputLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// StringList is a custom type for ordered string columns stored as JSON text
type StringList []string

// Implement the driver.Valuer interface for StringList type
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Implement the sql.Scanner interface for StringList type
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}

	if len(bytes) == 0 {
		*l = nil
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// containsFold reports whether the lower-cased value contains needle.
// needle must already be lower case.
func containsFold(value, needle string) bool {
	if value == "" {
		return false
	}
	return strings.Contains(strings.ToLower(value), needle)
}
