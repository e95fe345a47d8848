package ingest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// ListCSVFiles returns the CSV files directly under dir in natural sort
// order, so that price_2.csv processes before price_10.csv. A missing or
// unreadable directory yields an empty list and a logged error rather than a
// failure; ingestion then simply has nothing to do.
func ListCSVFiles(dir string, logger zerolog.Logger) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("cannot list data directory")
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Slice(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}

// naturalLess compares two strings as alternating runs of digits and
// non-digits. Digit runs compare numerically, text runs case-insensitively.
func naturalLess(a, b string) bool {
	ra, rb := splitRuns(a), splitRuns(b)
	for i := 0; i < len(ra) && i < len(rb); i++ {
		x, y := ra[i], rb[i]
		switch {
		case x.digits && y.digits:
			if c := compareNumeric(x.text, y.text); c != 0 {
				return c < 0
			}
		case !x.digits && !y.digits:
			lx, ly := strings.ToLower(x.text), strings.ToLower(y.text)
			if lx != ly {
				return lx < ly
			}
		default:
			// Mixed run types only happen when one name starts with digits
			// and the other does not; numbers sort first.
			return x.digits
		}
	}
	return len(ra) < len(rb)
}

type run struct {
	text   string
	digits bool
}

func splitRuns(s string) []run {
	var runs []run
	start := 0
	for i := 0; i < len(s); i++ {
		d := isDigit(s[i])
		if i == 0 {
			continue
		}
		if d != isDigit(s[i-1]) {
			runs = append(runs, run{text: s[start:i], digits: isDigit(s[i-1])})
			start = i
		}
	}
	if start < len(s) {
		runs = append(runs, run{text: s[start:], digits: isDigit(s[len(s)-1])})
	}
	return runs
}

// compareNumeric compares two digit runs by value without parsing them into
// integers, so arbitrarily long runs cannot overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
