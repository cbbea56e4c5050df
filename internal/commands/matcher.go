package commands

import (
	"regexp"
	"sort"
	"strings"
)

// TriggerVariations are the wake-word tokens that open every command
// pattern, matched case-insensitively.
var TriggerVariations = map[string]bool{
	"okay": true, "ok": true, "o.k.": true, "o.k": true,
}

// FillerWords may be optionally consumed between the wake word and a
// command's own trigger phrase, or between the closing wake word and
// its end word.
var FillerWords = map[string]bool{
	"and": true, "the": true, "a": true, "to": true, "uh": true,
	"um": true, "so": true, "please": true, "now": true,
}

// EndWords terminate a bracketed command.
var EndWords = map[string]bool{
	"done": true, "finished": true, "complete": true, "over": true,
	"stop": true, "end": true, "execute": true, "finish": true,
}

// sepPattern matches a token separator: a run of whitespace, or one of
// .,!? followed by optional whitespace. This tolerates ASR-inserted
// mid-utterance punctuation.
var sepPattern = regexp.MustCompile(`\s+|[.,!?]\s*`)

// token is a single word with its byte span in the original text.
type token struct {
	text       string // original case
	lower      string
	start, end int
}

// tokenize splits text into word tokens separated by sepPattern,
// recording each token's byte offsets in the original string.
func tokenize(text string) []token {
	seps := sepPattern.FindAllStringIndex(text, -1)
	var tokens []token
	pos := 0
	for _, s := range seps {
		if s[0] > pos {
			word := text[pos:s[0]]
			tokens = append(tokens, token{text: word, lower: strings.ToLower(word), start: pos, end: s[0]})
		}
		pos = s[1]
	}
	if pos < len(text) {
		word := text[pos:]
		tokens = append(tokens, token{text: word, lower: strings.ToLower(word), start: pos, end: len(text)})
	}
	// The "." separator splits "o.k."/"o.k" into "o" and "k"; rejoin
	// them into one token so the wake word can match.
	merged := tokens[:0]
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.lower == "o" && i+1 < len(tokens) && tokens[i+1].lower == "k" && text[t.end:tokens[i+1].start] == "." {
			t.end = tokens[i+1].end
			t.text = text[t.start:t.end]
			t.lower = strings.ToLower(t.text)
			i++
		}
		merged = append(merged, t)
	}
	return merged
}

// compiled is a Definition plus its trigger phrases split into lower
// word sequences, used by the scanner.
type compiled struct {
	def      *Definition
	triggers [][]string // one []string per trigger phrase, word-split
}

func compileDefinitions(defs []*Definition) []*compiled {
	out := make([]*compiled, 0, len(defs))
	for _, d := range defs {
		c := &compiled{def: d}
		for _, t := range d.Triggers {
			words := strings.Fields(strings.ToLower(t))
			if len(words) > 0 {
				c.triggers = append(c.triggers, words)
			}
		}
		if len(c.triggers) > 0 {
			out = append(out, c)
		}
	}
	// Longest trigger (by word count, then by rune length) first, so
	// multi-word triggers win over any single-word prefix.
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := maxTriggerWords(out[i]), maxTriggerWords(out[j])
		if li != lj {
			return li > lj
		}
		return maxTriggerLen(out[i]) > maxTriggerLen(out[j])
	})
	return out
}

func maxTriggerWords(c *compiled) int {
	max := 0
	for _, t := range c.triggers {
		if len(t) > max {
			max = len(t)
		}
	}
	return max
}

func maxTriggerLen(c *compiled) int {
	max := 0
	for _, t := range c.triggers {
		n := len(strings.Join(t, " "))
		if n > max {
			max = n
		}
	}
	return max
}

// matchTriggerAt reports whether words, starting at index i, equal
// trigger (a lower-cased word sequence).
func matchTriggerAt(words []token, i int, trigger []string) bool {
	if i+len(trigger) > len(words) {
		return false
	}
	for k, w := range trigger {
		if words[i+k].lower != w {
			return false
		}
	}
	return true
}

// findEndWordAt looks for a wake word at index i, followed by an
// optional filler word, followed by an end word. Returns the index one
// past the end word on success, or -1.
func findEndWordAt(words []token, i int) int {
	if i >= len(words) || !TriggerVariations[words[i].lower] {
		return -1
	}
	j := i + 1
	if j < len(words) && FillerWords[words[j].lower] {
		j++
	}
	if j < len(words) && EndWords[words[j].lower] {
		return j + 1
	}
	return -1
}

// scanMatch describes one located occurrence before dedup/substitution
// bookkeeping is applied.
type scanMatch struct {
	c            *compiled
	start, end   int // token index range [start, end)
	contentStart int // token index where content begins (== trigger end for instant)
	contentEnd   int // token index where content ends (== contentStart if none)
}

// findMatchAt tries every compiled command (longest-trigger-first) at
// token index i, where words[i] is assumed to be a wake word. Returns
// (match, true) on success.
func findMatchAt(words []token, i int, compiledDefs []*compiled) (scanMatch, bool) {
	j := i + 1
	if j < len(words) && FillerWords[words[j].lower] {
		j++
	}
	for _, c := range compiledDefs {
		for _, trig := range c.triggers {
			if !matchTriggerAt(words, j, trig) {
				continue
			}
			k := j + len(trig)
			if !c.def.RequiresEnd {
				return scanMatch{c: c, start: i, end: k, contentStart: k, contentEnd: k}, true
			}
			// Bracketed: find the nearest closing "wake SEP FILLER? END"
			// at or after k, scanning left-to-right (non-greedy content).
			for m := k; m < len(words); m++ {
				if end := findEndWordAt(words, m); end != -1 {
					return scanMatch{c: c, start: i, end: end, contentStart: k, contentEnd: m}, true
				}
			}
			// No closing sequence found; this trigger doesn't
			// complete a valid bracketed command here.
		}
	}
	return scanMatch{}, false
}

// contentText extracts the original-case substring of text spanned by
// tokens [from, to), trimmed, or "" if empty.
func contentText(text string, words []token, from, to int) string {
	if from >= to {
		return ""
	}
	return strings.TrimSpace(text[words[from].start:words[to-1].end])
}
