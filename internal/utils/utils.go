// Package utils provides small shared helpers.
package utils

import (
	"fmt"
	"sort"
	"strings"
)

// Indent returns a print function that indents its output by level tabs.
func Indent(f func(s string), level int) func(string) {
	return func(s string) {
		var sb strings.Builder
		for _, line := range strings.Split(s, "\n") {
			sb.WriteString(strings.Repeat("\t", level) + line + "\n")
		}
		f(strings.TrimSuffix(sb.String(), "\n"))
	}
}

// StrSliceContains returns true if item contains any element of slice as a substring (case insensitive).
func StrSliceContains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.Contains(strings.ToLower(item), strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// Difference returns the elements of a not present in b.
func Difference(a, b []string) []string {
	mb := make(map[string]struct{}, len(b))
	for _, x := range b {
		mb[x] = struct{}{}
	}
	diff := []string{}
	for _, x := range a {
		if _, found := mb[x]; !found {
			diff = append(diff, x)
		}
	}
	return diff
}

// Unique returns a slice with only unique strings.
func Unique(s []string) []string {
	if len(s) < 2 {
		return s
	}
	keys := make(map[string]bool)
	list := []string{}
	for _, entry := range s {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}

// SortedList renders names as a one-per-line sorted list for diagnostics.
func SortedList(names []string) string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	var sb strings.Builder
	for _, n := range out {
		fmt.Fprintf(&sb, "\t%s\n", n)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
