package coding

import (
	"math"
	"time"
)

// ElapsedDays returns the whole number of days from dateOfService to
// referenceDate, rounded down. It is negative when the service date lies in
// the future.
func ElapsedDays(dateOfService, referenceDate time.Time) int {
	return int(math.Floor(referenceDate.Sub(dateOfService).Hours() / 24))
}

// IsWithinTimelyFiling reports whether a claim for dateOfService can still be
// filed on referenceDate given the payer's filing window in days.
func IsWithinTimelyFiling(dateOfService time.Time, timelyFilingDays int, referenceDate time.Time) bool {
	return ElapsedDays(dateOfService, referenceDate) <= timelyFilingDays
}

// DaysUntilTimelyFilingExpires returns the days left in the filing window,
// never less than zero.
func DaysUntilTimelyFilingExpires(dateOfService time.Time, timelyFilingDays int, referenceDate time.Time) int {
	remaining := timelyFilingDays - ElapsedDays(dateOfService, referenceDate)
	if remaining < 0 {
		return 0
	}
	return remaining
}
