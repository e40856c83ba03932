// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package gpiosafe

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePinList parses a comma separated list of pins and inclusive pin
// ranges, such as "0,18-19,43-46".
//
// An empty string is an empty list.  The result is sorted and free of
// duplicates.
func ParsePinList(s string) ([]int, error) {
	seen := make(map[int]bool)
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		lo, hi := field, field
		if i := strings.Index(field, "-"); i > 0 {
			lo, hi = field[:i], field[i+1:]
		}
		first, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("can't parse pin '%s'", field)
		}
		last, err := strconv.ParseUint(strings.TrimSpace(hi), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("can't parse pin '%s'", field)
		}
		if last < first {
			return nil, fmt.Errorf("reversed pin range '%s'", field)
		}
		for p := first; p <= last; p++ {
			seen[int(p)] = true
		}
	}
	pins := make([]int, 0, len(seen))
	for p := range seen {
		pins = append(pins, p)
	}
	sort.Ints(pins)
	return pins, nil
}

// FormatPinList is the inverse of ParsePinList, collapsing consecutive
// pins into ranges.
func FormatPinList(pins []int) string {
	pp := append([]int(nil), pins...)
	sort.Ints(pp)
	var sb strings.Builder
	for i := 0; i < len(pp); {
		j := i
		for j+1 < len(pp) && pp[j+1] <= pp[j]+1 {
			j++
		}
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		if pp[i] == pp[j] {
			fmt.Fprintf(&sb, "%d", pp[i])
		} else {
			fmt.Fprintf(&sb, "%d-%d", pp[i], pp[j])
		}
		i = j + 1
	}
	return sb.String()
}
