package retry

import "time"

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt (base * 2^attempt) and never exceeds
// ceiling when ceiling is positive.
func ExponentialBackoff(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := base * (1 << attempt)
	if ceiling > 0 && (d > ceiling || d <= 0) {
		return ceiling
	}
	return d
}
