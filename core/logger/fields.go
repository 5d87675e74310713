package logger

import (
	"strings"
	"time"
)

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"op",
	"state",
	"action",
	"field",
	"outcome",
	"duration_ms",
	"mode",
	"listen",
	"driver",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
}

var allowedStatus = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"skip":         {},
	"rate_limited": {},
	"cancelled":    {},
}

func normalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "":
		return "INFO"
	case "warning":
		return "WARN"
	}
	return strings.ToUpper(level)
}

// Status maps an error to the status value used in log lines.
func Status(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}

// Took returns the rounded time elapsed since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to the nearest millisecond.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// SummarizeStrings joins up to limit values and reports whether any were cut.
func SummarizeStrings(values []string, limit int) (string, bool) {
	if limit <= 0 {
		return "", len(values) > 0
	}
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	return strings.Join(values[:limit], ", "), true
}
