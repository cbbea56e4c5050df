package commands

import (
	"strconv"
	"strings"
	"time"
)

// numberWords covers the English number words the "wait" builtin must
// understand, up to "thousand".
var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19, "twenty": 20, "thirty": 30, "forty": 40,
	"fifty": 50, "sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

const maxWaitDuration = 3600 * time.Second

// parseWaitDuration interprets the content of a "wait" command: plain
// digits, or English number words joined by whitespace/hyphens, with
// an optional trailing unit ("seconds"/"second"/"sec"/"ms"/"milliseconds").
// Unparseable or empty content defaults to 1s; results are capped at
// 3600s.
func parseWaitDuration(content string) time.Duration {
	content = strings.TrimSpace(strings.ToLower(content))
	if content == "" {
		return time.Second
	}

	unit := time.Second
	for _, suffix := range []string{"milliseconds", "millisecond", "ms"} {
		if strings.HasSuffix(content, suffix) {
			unit = time.Millisecond
			content = strings.TrimSpace(strings.TrimSuffix(content, suffix))
			break
		}
	}
	if unit == time.Second {
		for _, suffix := range []string{"seconds", "second", "secs", "sec", "s"} {
			if strings.HasSuffix(content, suffix) {
				content = strings.TrimSpace(strings.TrimSuffix(content, suffix))
				break
			}
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return time.Second
	}

	if n, err := strconv.Atoi(content); err == nil {
		return capWait(time.Duration(n) * unit)
	}

	if n, ok := parseNumberWords(content); ok {
		return capWait(time.Duration(n) * unit)
	}

	return time.Second
}

// parseNumberWords sums a whitespace/hyphen-separated run of English
// number words (e.g. "thirty" -> 30, "one thousand" -> 1000). Any
// word that is not a number word makes it report false.
func parseNumberWords(s string) (int, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-'
	})
	if len(fields) == 0 {
		return 0, false
	}

	total, current := 0, 0
	matched := false
	for _, f := range fields {
		if f == "and" {
			continue
		}
		if f == "hundred" {
			if current == 0 {
				current = 1
			}
			current *= 100
			matched = true
			continue
		}
		if f == "thousand" {
			if current == 0 {
				current = 1
			}
			total += current * 1000
			current = 0
			matched = true
			continue
		}
		n, ok := numberWords[f]
		if !ok {
			return 0, false
		}
		current += n
		matched = true
	}
	return total + current, matched
}

func capWait(d time.Duration) time.Duration {
	if d > maxWaitDuration {
		return maxWaitDuration
	}
	if d < 0 {
		return time.Second
	}
	return d
}
