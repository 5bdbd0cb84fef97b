// Package structural implements the Structural Analyzer (spec §4.C9): it
// extracts Element Records from source text using per-language line- and
// regex-based recognizers, generalized from the teacher's
// internal/tools/codedom/elements.go single-line extractor into one that
// tracks block extents and produces declared_dependencies.
package structural

import (
	"regexp"
	"strings"

	"suncc/internal/model"
)

type recognizer struct {
	kind    model.ElementKind
	pattern *regexp.Regexp
	// exported reports whether the matched name counts as exported,
	// given the raw matched line.
	exported func(line string) bool
}

func recognizersFor(language string) []recognizer {
	switch language {
	case "python":
		return []recognizer{
			{model.KindImport, regexp.MustCompile(`^(?:from\s+(\S+)\s+)?import\s+(\S+)`), func(string) bool { return true }},
			{model.KindClass, regexp.MustCompile(`^class\s+(\w+)`), startsUpper},
			{model.KindFunction, regexp.MustCompile(`^def\s+(\w+)\s*\(`), notUnderscorePrefixed},
		}
	case "javascript", "typescript":
		return []recognizer{
			{model.KindImport, regexp.MustCompile(`^import\s+.*from\s+['"](\S+)['"]`), func(string) bool { return true }},
			{model.KindExport, regexp.MustCompile(`^export\s+(?:default\s+)?(?:const|class|function|interface|type)?\s*(\w+)?`), func(string) bool { return true }},
			{model.KindClass, regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?class\s+(\w+)`), containsExport},
			{model.KindInterface, regexp.MustCompile(`^(?:export\s+)?interface\s+(\w+)`), containsExport},
			{model.KindFunction, regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s+(\w+)\s*\(`), containsExport},
			{model.KindFunction, regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?\(`), containsExport},
		}
	case "java":
		return []recognizer{
			{model.KindImport, regexp.MustCompile(`^import\s+([\w.]+);`), func(string) bool { return true }},
			{model.KindClass, regexp.MustCompile(`^(?:public\s+)?(?:abstract\s+)?(?:final\s+)?class\s+(\w+)`), containsPublic},
			{model.KindInterface, regexp.MustCompile(`^(?:public\s+)?interface\s+(\w+)`), containsPublic},
			{model.KindFunction, regexp.MustCompile(`^\s*(?:public|private|protected)\s+(?:static\s+)?[\w<>\[\]]+\s+(\w+)\s*\(`), containsPublic},
		}
	case "rust":
		return []recognizer{
			{model.KindImport, regexp.MustCompile(`^use\s+([\w:]+)`), func(string) bool { return true }},
			{model.KindType, regexp.MustCompile(`^(?:pub\s+)?struct\s+(\w+)`), containsPub},
			{model.KindInterface, regexp.MustCompile(`^(?:pub\s+)?trait\s+(\w+)`), containsPub},
			{model.KindFunction, regexp.MustCompile(`^(?:pub\s+)?fn\s+(\w+)`), containsPub},
		}
	default: // "go"
		return []recognizer{
			{model.KindImport, regexp.MustCompile(`^\s*"([\w./-]+)"\s*$`), func(string) bool { return true }},
			{model.KindType, regexp.MustCompile(`^type\s+(\w+)\s+(?:struct|interface)`), startsUpper},
			{model.KindFunction, regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?(\w+)\s*\(`), startsUpper},
		}
	}
}

func startsUpper(line string) bool {
	m := regexp.MustCompile(`^\s*(?:type|class|func)\s+(?:\([^)]*\)\s*)?(\w+)`).FindStringSubmatch(line)
	if m == nil {
		return false
	}
	r := rune(m[1][0])
	return r >= 'A' && r <= 'Z'
}

func notUnderscorePrefixed(line string) bool {
	return !strings.Contains(line, "def _")
}

func containsExport(line string) bool { return strings.Contains(line, "export") }
func containsPublic(line string) bool { return strings.Contains(line, "public") }
func containsPub(line string) bool    { return strings.Contains(line, "pub ") || strings.Contains(line, "pub(") }

// braceLanguages identifies languages whose blocks are brace-delimited,
// allowing end-line detection by brace balance; others (Python) use
// indentation.
var braceLanguages = map[string]bool{"go": true, "javascript": true, "typescript": true, "java": true, "rust": true}

// Analyze extracts an ordered list of Element Records from source text for
// the given language. Malformed or unrecognized source never errors — it
// yields an empty list (spec §7 propagation policy).
func Analyze(source, language string) []model.Element {
	lines := strings.Split(source, "\n")
	recs := recognizersFor(language)

	var elements []model.Element
	seen := make(map[string]bool)

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		for _, r := range recs {
			m := r.pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := ""
			for _, g := range m[1:] {
				if g != "" {
					name = g
					break
				}
			}
			if name == "" {
				continue
			}

			dedupKey := string(r.kind) + ":" + name
			if seen[dedupKey] {
				continue
			}
			seen[dedupKey] = true

			end := i
			if braceLanguages[language] && (r.kind == model.KindFunction || r.kind == model.KindClass || r.kind == model.KindInterface || r.kind == model.KindType) {
				end = findBraceEnd(lines, i)
			} else if language == "python" && (r.kind == model.KindFunction || r.kind == model.KindClass) {
				end = findIndentEnd(lines, i)
			}

			deps := declaredDependencies(r.kind, name, m)

			elements = append(elements, model.Element{
				Name:                 name,
				Kind:                 r.kind,
				StartLine:            i + 1,
				EndLine:              end + 1,
				DeclaredDependencies: deps,
				Exported:             r.exported(line),
			})
			break
		}
	}

	return elements
}

func declaredDependencies(kind model.ElementKind, name string, match []string) []string {
	if kind != model.KindImport {
		return nil
	}
	var deps []string
	for _, g := range match[1:] {
		if g != "" {
			deps = append(deps, g)
		}
	}
	return deps
}

// findBraceEnd walks forward from a declaration line, tracking brace depth,
// to find the line where the block closes. Falls back to the start line
// if no braces are found before EOF (best-effort, per spec §4.C9).
func findBraceEnd(lines []string, start int) int {
	depth := 0
	seenOpen := false
	for i := start; i < len(lines); i++ {
		for _, c := range lines[i] {
			switch c {
			case '{':
				depth++
				seenOpen = true
			case '}':
				depth--
			}
		}
		if seenOpen && depth <= 0 {
			return i
		}
	}
	return start
}

// findIndentEnd finds the last contiguous line more deeply indented than
// the declaration line — Python's block-extent rule.
func findIndentEnd(lines []string, start int) int {
	baseIndent := indentOf(lines[start])
	end := start
	for i := start + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if indentOf(lines[i]) <= baseIndent {
			break
		}
		end = i
	}
	return end
}

func indentOf(line string) int {
	n := 0
	for _, c := range line {
		if c == ' ' {
			n++
		} else if c == '\t' {
			n += 8
		} else {
			break
		}
	}
	return n
}
