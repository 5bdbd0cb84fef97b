// Package manifest parses and validates a Genesis manifest file: the
// line-oriented project descriptor the `genesis` subcommand builds from.
// Grounded on the teacher's internal/tools/codedom element-extraction
// line-scanning style and the pack's validator-backed config validation
// (Priyans-hu-argus/internal/config/validator.go).
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"
)

// Manifest is the parsed form of a genesis.sun file.
type Manifest struct {
	Project string `validate:"required"`
	Version string
	Author  string
	Source  string
	Output  string
	Context string
	Domain  string

	Imports      map[string]string
	Config       map[string]string
	Entrypoints  map[string]string
	Build        map[string]string
	Dependencies map[string]string

	Questions []string
}

var (
	sectionOpen = regexp.MustCompile(`^(\w+)\s*\{$`)
	dangerousPattern = regexp.MustCompile(`(?i)<script|javascript:|\$\(|` + "`" + `.*` + "`")
)

var permittedSections = map[string]bool{
	"imports":      true,
	"config":       true,
	"entrypoints":  true,
	"build":        true,
	"dependencies": true,
}

// Parse reads a Genesis manifest from r. It returns a ValidationError-class
// error (wrapped by the caller into errs.NewValidation) on any malformed
// directive, unknown section, or dangerous content.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{
		Imports:      make(map[string]string),
		Config:       make(map[string]string),
		Entrypoints:  make(map[string]string),
		Build:        make(map[string]string),
		Dependencies: make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	var currentSection string
	var currentMap map[string]string

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if dangerousPattern.MatchString(line) {
			return nil, fmt.Errorf("line %d: disallowed content pattern", lineNo)
		}

		switch {
		case strings.HasPrefix(line, "##"):
			m.Questions = append(m.Questions, strings.TrimSpace(strings.TrimPrefix(line, "##")))
			continue
		case strings.HasPrefix(line, "#"):
			continue
		}

		if currentSection != "" {
			if line == "}" {
				currentSection = ""
				currentMap = nil
				continue
			}
			key, value, ok := splitKV(line)
			if !ok {
				return nil, fmt.Errorf("line %d: malformed entry in %s{}", lineNo, currentSection)
			}
			currentMap[key] = value
			continue
		}

		if sm := sectionOpen.FindStringSubmatch(line); sm != nil {
			name := sm[1]
			if !permittedSections[name] {
				return nil, fmt.Errorf("line %d: unknown section %q", lineNo, name)
			}
			currentSection = name
			currentMap = m.sectionMap(name)
			continue
		}

		if strings.HasPrefix(line, "@") {
			if err := m.applyDirective(line); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}

		return nil, fmt.Errorf("line %d: unrecognized syntax %q", lineNo, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if currentSection != "" {
		return nil, fmt.Errorf("unterminated section %q", currentSection)
	}

	return m, nil
}

func (m *Manifest) sectionMap(name string) map[string]string {
	switch name {
	case "imports":
		return m.Imports
	case "config":
		return m.Config
	case "entrypoints":
		return m.Entrypoints
	case "build":
		return m.Build
	case "dependencies":
		return m.Dependencies
	default:
		return nil
	}
}

func (m *Manifest) applyDirective(line string) error {
	rest := strings.TrimPrefix(line, "@")
	parts := strings.SplitN(rest, " ", 2)
	if len(parts) != 2 {
		return fmt.Errorf("directive %q missing a value", line)
	}
	key, value := parts[0], strings.TrimSpace(parts[1])

	switch key {
	case "project":
		m.Project = value
	case "version":
		m.Version = value
	case "author":
		m.Author = value
	case "source":
		m.Source = value
	case "output":
		m.Output = value
	case "context":
		m.Context = value
	case "domain":
		m.Domain = value
	default:
		return fmt.Errorf("unknown directive @%s", key)
	}
	return nil
}

func splitKV(line string) (string, string, bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

var validate = validator.New()

// Validate enforces the manifest's required fields and path-safety rules:
// @project is required, @source must differ from @output, and neither path
// may contain a ".." traversal segment.
func Validate(m *Manifest) error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("manifest validation: %w", err)
	}
	if m.Source != "" && m.Source == m.Output {
		return fmt.Errorf("@source and @output must differ")
	}
	if containsTraversal(m.Source) || containsTraversal(m.Output) {
		return fmt.Errorf("manifest paths must not contain \"..\"")
	}
	if m.Version != "" && !semver.IsValid(canonicalSemver(m.Version)) {
		return fmt.Errorf("@version %q is not a valid semantic version", m.Version)
	}
	return nil
}

func containsTraversal(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// canonicalSemver prefixes a bare "1.2.3" with "v" since golang.org/x/mod/semver
// requires the leading v that most human-authored manifests omit.
func canonicalSemver(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
