package monitor

import (
	"path/filepath"
	"strings"
	"time"
)

// timestampLayout renders as _YYYY-MM-DD_HH-MM-SS once prefixed.
const timestampLayout = "2006-01-02_15-04-05"

// TimestampedName inserts _<timestamp> before name's extension:
// "a.txt" becomes "a_2024-03-01_09-30-00.txt". Names without an
// extension, and dot-files such as ".env", get the suffix at the end.
func TimestampedName(name string, at time.Time) string {
	suffix := "_" + at.Format(timestampLayout)

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		return name + suffix
	}
	return stem + suffix + ext
}

func destinationName(name string, stamp bool, at time.Time) string {
	if !stamp {
		return name
	}
	return TimestampedName(name, at)
}
