// Package datetime converts between epoch-millisecond timestamps and the
// wire representation used by the events API: yyyy-MM-dd'T'HH:mm:ss.SSSZ,
// always rendered in UTC (e.g. "2024-05-01T09:30:15.123+0000").
package datetime

import "time"

// Layout is the wire format for event timestamps.
const Layout = "2006-01-02T15:04:05.000-0700"

// FormatMillis renders an epoch-millisecond timestamp as a UTC wire string.
func FormatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(Layout)
}

// ParseToMillis parses a wire string back to epoch milliseconds.
func ParseToMillis(s string) (int64, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
