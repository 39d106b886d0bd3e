package utils

import (
	"net/url"
	"strconv"
)

// QueryInt parses an integer query parameter, returning def when the
// parameter is absent or malformed.
func QueryInt(q url.Values, key string, def int) int {
	v := q.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// QueryBool parses a boolean query parameter ("true", "1", ...). Returns
// nil when the parameter is absent or malformed, so callers can tell
// "not filtered" from false.
func QueryBool(q url.Values, key string) *bool {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
