package auth

import "time"

// isWithinThreshold reports whether t is less than pattern old at now.
// pattern is a time.ParseDuration string such as "24h".
func isWithinThreshold(now, t time.Time, pattern string) (bool, error) {
	duration, err := time.ParseDuration(pattern)
	if err != nil {
		return false, err
	}

	return t.After(now.Add(-duration)), nil
}
