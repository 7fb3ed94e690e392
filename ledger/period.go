package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GlobalSubject is the reserved subject id for the master's combined view
// over all active personnel. Its verification records are independent of
// any individual employee's.
const GlobalSubject = "GLOBAL_LEDGER"

// monthNames is fixed rather than locale-derived so that persisted period
// keys stay byte-identical across environments. The key format is the join
// contract between entries and verification records.
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// PeriodKey formats a date's calendar month as "MonthName Year".
func PeriodKey(date time.Time) string {
	return fmt.Sprintf("%s %d", monthNames[int(date.Month())-1], date.Year())
}

// parsePeriodKey inverts PeriodKey for sorting and validation. The month
// is returned 1-based.
func parsePeriodKey(key string) (year, month int, ok bool) {
	name, yearStr, found := strings.Cut(key, " ")
	if !found {
		return 0, 0, false
	}
	for i, m := range monthNames {
		if m == name {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year <= 0 {
		return 0, 0, false
	}
	return year, month, true
}

// ValidPeriodKey reports whether key is a well-formed "MonthName Year"
// string.
func ValidPeriodKey(key string) bool {
	_, _, ok := parsePeriodKey(key)
	return ok
}
