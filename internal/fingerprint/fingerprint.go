// Package fingerprint canonicalizes element and file text and computes the
// stable content hashes the rest of the compilation engine keys on (spec
// §4.C1). It is pure stdlib: hashing and line-oriented text normalization
// have no third-party equivalent in the pack worth the dependency.
package fingerprint

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// commentPrefixes maps a language hint to the line-comment markers stripped
// during canonicalization. Block comments are deliberately not stripped —
// doing so safely requires a real parser, and spec §9's Open Question
// accepts that comment-stripping may diverge from a source's naive regex
// behavior only for line comments.
var commentPrefixes = map[string][]string{
	"go":         {"//"},
	"javascript": {"//"},
	"typescript": {"//"},
	"java":       {"//"},
	"rust":       {"//"},
	"c":          {"//"},
	"cpp":        {"//"},
	"python":     {"#"},
	"":           {"//", "#"},
}

// Canonicalize trims trailing whitespace per line, strips comment-only
// lines for the given language, normalizes line endings to LF, and
// collapses runs of blank lines to one. The result is referentially
// transparent: re-canonicalizing a canonical form is a no-op.
func Canonicalize(text, language string) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	prefixes := commentPrefixes[strings.ToLower(language)]
	if prefixes == nil {
		prefixes = commentPrefixes[""]
	}

	var out []string
	blank := false
	scanner := bufio.NewScanner(strings.NewReader(normalized))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		trimmed := strings.TrimSpace(line)

		if isCommentOnly(trimmed, prefixes) {
			continue
		}

		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

func isCommentOnly(trimmed string, prefixes []string) bool {
	if trimmed == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// Hash returns the hex-encoded SHA-256 digest of the canonical form of
// text for the given language. Trailing-whitespace edits, line-ending
// changes, comment-only lines and runs of blank lines never change the
// result; other whitespace edits, such as re-indentation, do.
func Hash(text, language string) string {
	canon := Canonicalize(text, language)
	sum := sha256.Sum256([]byte(canon))
	return hex.EncodeToString(sum[:])
}

// HashSpan hashes the substring of lines [startLine, endLine] (1-indexed,
// inclusive) of text, for computing an Element Record's canonical_hash
// over its text_span.
func HashSpan(text, language string, startLine, endLine int) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > endLine {
		return Hash("", language)
	}
	span := strings.Join(lines[startLine-1:endLine], "\n")
	return Hash(span, language)
}
