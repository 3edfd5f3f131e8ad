package report

import (
	"sort"
	"strings"
)

// naturalLess orders strings by comparing runs of digits numerically and
// everything else byte-wise, so "2000x100" sorts before "10000x5".
func naturalLess(a, b string) bool {
	return naturalCompare(a, b) < 0
}

func naturalCompare(a, b string) int {
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]

		if isDigit(ca) && isDigit(cb) {
			si := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}

			sj := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}

			if c := compareDigits(a[si:i], b[sj:j]); c != 0 {
				return c
			}

			continue
		}

		if ca != cb {
			if ca < cb {
				return -1
			}

			return 1
		}

		i++
		j++
	}

	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// compareDigits compares two digit runs by value, then by length so that
// "007" and "7" still order deterministically.
func compareDigits(x, y string) int {
	tx := strings.TrimLeft(x, "0")
	ty := strings.TrimLeft(y, "0")

	if len(tx) != len(ty) {
		if len(tx) < len(ty) {
			return -1
		}

		return 1
	}

	if c := strings.Compare(tx, ty); c != 0 {
		return c
	}

	switch {
	case len(x) < len(y):
		return -1
	case len(x) > len(y):
		return 1
	}

	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func sortNatural(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		return naturalLess(keys[i], keys[j])
	})
}
