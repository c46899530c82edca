package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
)

type countRow struct {
	label string
	count int
}

// sortedCounts orders a breakdown by count descending, then label for a
// stable tie-break.
func sortedCounts(counts map[string]int) []countRow {
	rows := make([]countRow, 0, len(counts))
	for label, count := range counts {
		rows = append(rows, countRow{label: label, count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].label < rows[j].label
	})
	return rows
}

func writeCountTable(w io.Writer, counts map[string]int, total, labelWidth int) {
	for _, row := range sortedCounts(counts) {
		fmt.Fprintf(w, "  %-*s %5d  %s\n",
			labelWidth, truncate(row.label, labelWidth), row.count, percent(row.count, total))
	}
}

func percent(part, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

// groupDigits renders n with comma separators, e.g. 8421775 -> "8,421,775".
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	start := 0
	if s[0] == '-' {
		start = 1
	}
	digits := len(s) - start
	if digits <= 3 {
		return s
	}

	out := make([]byte, 0, len(s)+digits/3)
	out = append(out, s[:start]...)
	for i := start; i < len(s); i++ {
		if i > start && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
