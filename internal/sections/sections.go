// Package sections implements the Section Model (spec §4.C6): splitting a
// generated output file into typed, named Output Sections, splicing a
// regenerated section back in by element name, and reassembling the file
// in canonical order.
package sections

import (
	"regexp"
	"sort"
	"strings"

	"suncc/internal/fingerprint"
	"suncc/internal/model"
)

// anchor pairs a regex that marks the start of a section with the kind it
// introduces. Anchors are tried in order; the first match wins.
type anchor struct {
	kind    model.SectionKind
	pattern *regexp.Regexp
}

// anchorsFor returns the ordered anchor set for a target language, mirroring
// the per-language regex families the Structural Analyzer uses so a
// generated file's sections line up with the elements that produced them.
func anchorsFor(language string) []anchor {
	switch language {
	case "python":
		return []anchor{
			{model.SectionImport, regexp.MustCompile(`^(?:from\s+\S+\s+)?import\s+`)},
			{model.SectionClass, regexp.MustCompile(`^class\s+(\w+)`)},
			{model.SectionFunction, regexp.MustCompile(`^def\s+(\w+)\s*\(`)},
			{model.SectionExport, regexp.MustCompile(`^__all__\s*=`)},
		}
	case "java":
		return []anchor{
			{model.SectionImport, regexp.MustCompile(`^import\s+`)},
			{model.SectionClass, regexp.MustCompile(`^(?:public\s+)?(?:abstract\s+)?(?:final\s+)?class\s+(\w+)`)},
			{model.SectionClass, regexp.MustCompile(`^(?:public\s+)?interface\s+(\w+)`)},
			{model.SectionFunction, regexp.MustCompile(`^\s*(?:public|private|protected)\s+[\w<>\[\]]+\s+(\w+)\s*\(`)},
		}
	case "rust":
		return []anchor{
			{model.SectionImport, regexp.MustCompile(`^use\s+`)},
			{model.SectionClass, regexp.MustCompile(`^(?:pub\s+)?(?:struct|trait|enum)\s+(\w+)`)},
			{model.SectionFunction, regexp.MustCompile(`^(?:pub\s+)?fn\s+(\w+)`)},
			{model.SectionExport, regexp.MustCompile(`^pub\s+use\s+`)},
		}
	case "go":
		return []anchor{
			{model.SectionImport, regexp.MustCompile(`^import\s+[("]`)},
			{model.SectionClass, regexp.MustCompile(`^type\s+(\w+)\s+(?:struct|interface)`)},
			{model.SectionFunction, regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?(\w+)\s*\(`)},
		}
	default: // javascript / typescript family
		return []anchor{
			{model.SectionImport, regexp.MustCompile(`^import\s+`)},
			{model.SectionClass, regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?class\s+(\w+)`)},
			{model.SectionFunction, regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s+(\w+)\s*\(`)},
			{model.SectionFunction, regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?\(`)},
			{model.SectionExport, regexp.MustCompile(`^export\s+(?:default\s+)?\{`)},
		}
	}
}

// Split breaks an output file's text into Output Sections. Lines before the
// first anchor form a leading "other" section; each later section runs from
// its anchor line to the line before the next anchor (spec §4.C6).
func Split(text, language string) []model.Section {
	anchors := anchorsFor(language)
	lines := strings.Split(text, "\n")

	type boundary struct {
		lineIdx int
		kind    model.SectionKind
		name    string
	}
	var bounds []boundary
	for i, line := range lines {
		for _, a := range anchors {
			if m := a.pattern.FindStringSubmatch(line); m != nil {
				name := ""
				if len(m) > 1 {
					name = m[1]
				}
				bounds = append(bounds, boundary{lineIdx: i, kind: a.kind, name: name})
				break
			}
		}
	}

	var out []model.Section
	if len(bounds) == 0 || bounds[0].lineIdx > 0 {
		end := len(lines)
		if len(bounds) > 0 {
			end = bounds[0].lineIdx
		}
		leading := strings.Join(lines[0:end], "\n")
		if strings.TrimSpace(leading) != "" || len(bounds) == 0 {
			out = append(out, model.Section{
				Kind:      model.SectionOther,
				StartLine: 1,
				EndLine:   end,
				Text:      leading,
				Hash:      fingerprint.Hash(leading, language),
			})
		}
	}

	for i, b := range bounds {
		end := len(lines)
		if i+1 < len(bounds) {
			end = bounds[i+1].lineIdx
		}
		txt := strings.Join(lines[b.lineIdx:end], "\n")
		out = append(out, model.Section{
			Kind:        b.kind,
			ElementName: b.name,
			StartLine:   b.lineIdx + 1,
			EndLine:     end,
			Text:        txt,
			Hash:        fingerprint.Hash(txt, language),
		})
	}

	return out
}

// Splice inserts or replaces newSection by ElementName. When ElementName is
// empty, or no existing section matches it, the section is appended just
// before the export block — new functions/classes land with the rest of
// the body, never ahead of imports.
func Splice(current []model.Section, newSection model.Section) []model.Section {
	if newSection.ElementName != "" {
		for i, s := range current {
			if s.ElementName == newSection.ElementName && s.Kind == newSection.Kind {
				out := make([]model.Section, len(current))
				copy(out, current)
				out[i] = newSection
				return out
			}
		}
	}

	insertAt := len(current)
	for i, s := range current {
		if s.Kind == model.SectionExport {
			insertAt = i
			break
		}
	}
	out := make([]model.Section, 0, len(current)+1)
	out = append(out, current[:insertAt]...)
	out = append(out, newSection)
	out = append(out, current[insertAt:]...)
	return out
}

// Remove deletes the section with the given element name, if present.
func Remove(current []model.Section, elementName string) []model.Section {
	out := make([]model.Section, 0, len(current))
	for _, s := range current {
		if s.ElementName == elementName {
			continue
		}
		out = append(out, s)
	}
	return out
}

// kindOrder fixes the canonical ordering: imports, then
// functions/classes in their prior relative order, then exports, then
// everything else.
func kindOrder(k model.SectionKind) int {
	switch k {
	case model.SectionImport:
		return 0
	case model.SectionFunction, model.SectionClass:
		return 1
	case model.SectionExport:
		return 2
	default:
		return 3
	}
}

// Assemble emits sections in canonical order, separated by exactly one
// blank line (spec §4.C6). Sort is stable, so functions/classes retain
// their prior relative order within their bucket.
func Assemble(secs []model.Section) string {
	ordered := make([]model.Section, len(secs))
	copy(ordered, secs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return kindOrder(ordered[i].Kind) < kindOrder(ordered[j].Kind)
	})

	parts := make([]string, 0, len(ordered))
	for _, s := range ordered {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		parts = append(parts, strings.TrimRight(s.Text, "\n"))
	}
	return strings.Join(parts, "\n\n") + "\n"
}
