// Package sunparse is the upstream pre-parser boundary spec §1 calls out
// as external to the core engine ("consumes a pre-parsed element summary
// from an upstream parser"). It turns a .sun source file into the Element
// Records the compilation engine operates on, using the same line- and
// regex-based recognizer style as structural.Analyze (spec §4.C9) rather
// than a real SunScript grammar, since the language itself is out of
// scope.
package sunparse

import (
	"regexp"
	"strings"

	"suncc/internal/model"
)

var (
	importPattern = regexp.MustCompile(`^use\s+([\w./-]+)`)
	funcPattern   = regexp.MustCompile(`^fn\s+(\w+)\s*\(`)
	classPattern  = regexp.MustCompile(`^type\s+(\w+)\s*\{`)
	exportPattern = regexp.MustCompile(`^pub\s+(?:fn|type)\s+(\w+)`)
)

// Parse extracts Element Records from SunScript source text. Block extent
// is brace-delimited, matching the language's curly-brace block syntax.
func Parse(source string) []model.Element {
	lines := strings.Split(source, "\n")
	var elements []model.Element
	seen := make(map[string]bool)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}

		kind, name, exported := "", "", false
		switch {
		case importPattern.MatchString(trimmed):
			m := importPattern.FindStringSubmatch(trimmed)
			kind, name = string(model.KindImport), m[1]
		case exportPattern.MatchString(trimmed):
			m := exportPattern.FindStringSubmatch(trimmed)
			if strings.HasPrefix(trimmed, "pub fn") {
				kind = string(model.KindFunction)
			} else {
				kind = string(model.KindType)
			}
			name, exported = m[1], true
		case funcPattern.MatchString(trimmed):
			m := funcPattern.FindStringSubmatch(trimmed)
			kind, name = string(model.KindFunction), m[1]
		case classPattern.MatchString(trimmed):
			m := classPattern.FindStringSubmatch(trimmed)
			kind, name = string(model.KindType), m[1]
		default:
			continue
		}

		dedupKey := kind + ":" + name
		if seen[dedupKey] {
			continue
		}
		seen[dedupKey] = true

		end := i
		if model.ElementKind(kind) != model.KindImport {
			end = findBraceEnd(lines, i)
		}

		var deps []string
		if model.ElementKind(kind) == model.KindImport {
			deps = []string{name}
		}

		elements = append(elements, model.Element{
			Name:                 name,
			Kind:                 model.ElementKind(kind),
			StartLine:            i + 1,
			EndLine:              end + 1,
			DeclaredDependencies: deps,
			Exported:             exported,
		})
	}

	recordBodyReferences(lines, elements)

	return elements
}

// recordBodyReferences scans each function/type element's body text for a
// bare reference to another element declared in the same file (e.g. baz
// calling foo) and appends the referenced name to DeclaredDependencies.
// Without this, the Dependency Index (spec §4.C4) would never learn that
// baz depends on foo, and a cascade rebuild could never form.
func recordBodyReferences(lines []string, elements []model.Element) {
	type candidate struct {
		name    string
		pattern *regexp.Regexp
	}
	candidates := make([]candidate, 0, len(elements))
	for _, e := range elements {
		if e.Kind == model.KindFunction || e.Kind == model.KindType {
			candidates = append(candidates, candidate{
				name:    e.Name,
				pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(e.Name) + `\b`),
			})
		}
	}

	for i := range elements {
		e := &elements[i]
		if e.Kind != model.KindFunction && e.Kind != model.KindType {
			continue
		}
		body := strings.Join(lines[e.StartLine-1:e.EndLine], "\n")

		seen := make(map[string]bool, len(e.DeclaredDependencies))
		for _, dep := range e.DeclaredDependencies {
			seen[dep] = true
		}
		for _, c := range candidates {
			if c.name == e.Name || seen[c.name] {
				continue
			}
			if c.pattern.MatchString(body) {
				e.DeclaredDependencies = append(e.DeclaredDependencies, c.name)
				seen[c.name] = true
			}
		}
	}
}

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
