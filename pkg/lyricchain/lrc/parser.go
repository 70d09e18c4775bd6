// Package lrc converts raw timestamped lyric text (the LRC format) into an
// ordered sequence of clean lyric lines.
package lrc

import (
	"regexp"
	"strings"
)

// timeTagRE matches a single bracketed time tag: [mm:ss.xx], [mm:ss:xx] or
// [mm:ss]. A line may carry several of them.
var timeTagRE = regexp.MustCompile(`\[\d{1,3}:\d{1,2}(?:[.:]\d{1,3})?\]`)

// idTagRE matches an LRC ID tag line such as [ti:...], [ar:...], [al:...],
// [by:...] or [offset:...] once time tags are gone.
var idTagRE = regexp.MustCompile(`^\[[A-Za-z]+:[^\]]*\]$`)

// metaPrefixes is a policy list of credit-line prefixes to drop. It is not
// a strict grammar; unrecognized metadata formats pass through as lyric
// lines.
var metaPrefixes = []string{
	"作词", "作曲", "编曲", "制作人", "制作", "监制", "混音", "母带", "录音", "出品",
	"lyricist", "composer", "arranger", "producer",
}

// Parse splits raw LRC text into clean lyric lines in original order.
// All time tags are stripped from each line, empty lines and credit lines
// are dropped, and nothing is deduplicated. Input without any tags is
// treated as plain lyric text, one lyric line per text line.
func Parse(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		text := strings.TrimSpace(timeTagRE.ReplaceAllString(line, ""))
		if text == "" {
			continue
		}
		if idTagRE.MatchString(text) || isCreditLine(text) {
			continue
		}
		out = append(out, text)
	}
	return out
}

func isCreditLine(text string) bool {
	lower := strings.ToLower(text)
	for _, prefix := range metaPrefixes {
		rest, ok := strings.CutPrefix(lower, prefix)
		if !ok {
			continue
		}
		rest = strings.TrimLeft(rest, " \t")
		if strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "：") {
			return true
		}
	}
	return false
}
