// Package langdetect implements the Language Detector (spec §4.C8):
// per-file weighted scoring and a project-wide scan, grounded on the
// extension-map and walker patterns from the rest of the retrieved
// corpus (internal/detector/techstack.go and internal/analyzer's
// godirwalk-based walker).
package langdetect

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"

	"suncc/internal/model"
)

// FileResult is detect_file's output.
type FileResult struct {
	Language   string
	Confidence int
	Features   []string
	Framework  string
}

// ProjectResult is detect_project's output.
type ProjectResult struct {
	Primary        string
	Secondary      []string
	Frameworks     []string
	BuildSystems   []string
	PackageManagers []string
}

var extToLanguage = map[string]string{
	".js": "javascript", ".jsx": "javascript", ".mjs": "javascript", ".cjs": "javascript",
	".ts": "typescript", ".tsx": "typescript",
	".py": "python",
	".go": "go",
	".rs": "rust",
	".java": "java", ".kt": "java",
}

var keywordPatterns = map[string][]*regexp.Regexp{
	"python":     {regexp.MustCompile(`\bdef\s+\w+\s*\(`), regexp.MustCompile(`\bimport\s+\w+`), regexp.MustCompile(`:\s*$`)},
	"go":         {regexp.MustCompile(`\bfunc\s+\w+\s*\(`), regexp.MustCompile(`\bpackage\s+\w+`), regexp.MustCompile(`:=`)},
	"rust":       {regexp.MustCompile(`\bfn\s+\w+\s*\(`), regexp.MustCompile(`\blet\s+mut\b`), regexp.MustCompile(`->`)},
	"java":       {regexp.MustCompile(`\bpublic\s+class\s+\w+`), regexp.MustCompile(`\bpackage\s+[\w.]+;`), regexp.MustCompile(`\bimport\s+[\w.]+;`)},
	"javascript": {regexp.MustCompile(`\bfunction\s+\w+\s*\(`), regexp.MustCompile(`\bconst\s+\w+\s*=`), regexp.MustCompile(`=>`)},
	"typescript": {regexp.MustCompile(`:\s*\w+(\[\])?\s*[;=)]`), regexp.MustCompile(`\binterface\s+\w+`), regexp.MustCompile(`\btype\s+\w+\s*=`)},
}

var signaturePatterns = map[string][]*regexp.Regexp{
	"python":     {regexp.MustCompile(`^#!.*python`), regexp.MustCompile(`if __name__ == ['"]__main__['"]`)},
	"go":         {regexp.MustCompile(`^package main$`), regexp.MustCompile(`func main\(\)`)},
	"rust":       {regexp.MustCompile(`fn main\(\)`), regexp.MustCompile(`#\[derive\(`)},
	"java":       {regexp.MustCompile(`public static void main`)},
	"javascript": {regexp.MustCompile(`^#!.*node`), regexp.MustCompile(`module\.exports`)},
	"typescript": {regexp.MustCompile(`export\s+default`)},
}

var frameworkHints = map[string]map[string]*regexp.Regexp{
	"javascript": {"react": regexp.MustCompile(`from ['"]react['"]`), "express": regexp.MustCompile(`require\(['"]express['"]\)`)},
	"typescript": {"react": regexp.MustCompile(`from ['"]react['"]`), "angular": regexp.MustCompile(`@angular/core`)},
	"python":     {"django": regexp.MustCompile(`from django`), "flask": regexp.MustCompile(`from flask`)},
	"go":         {"cobra": regexp.MustCompile(`spf13/cobra`), "gin": regexp.MustCompile(`gin-gonic/gin`)},
}

var configFileHints = map[string]string{
	"go.mod":            "go",
	"package.json":      "javascript",
	"tsconfig.json":     "typescript",
	"requirements.txt":  "python",
	"pyproject.toml":    "python",
	"Cargo.toml":        "rust",
	"pom.xml":           "java",
	"build.gradle":      "java",
}

// DetectFile scores content against every candidate language's rules and
// returns the best match. Weights per spec §4.C8: extension 40, keywords
// up to 30, signatures up to 30, framework hint 15; clamped to 100.
func DetectFile(path, content string) FileResult {
	ext := strings.ToLower(filepath.Ext(path))
	extLang := extToLanguage[ext]

	scores := make(map[string]int)
	features := make(map[string][]string)

	candidates := make(map[string]struct{})
	if extLang != "" {
		candidates[extLang] = struct{}{}
	}
	for lang := range keywordPatterns {
		candidates[lang] = struct{}{}
	}

	for lang := range candidates {
		score := 0
		if lang == extLang {
			score += 40
		}

		keywordHits := 0
		for _, p := range keywordPatterns[lang] {
			if p.MatchString(content) {
				keywordHits++
				features[lang] = append(features[lang], "keyword:"+p.String())
			}
		}
		score += min(30, keywordHits*10)

		sigHits := 0
		for _, p := range signaturePatterns[lang] {
			if p.MatchString(content) {
				sigHits++
				features[lang] = append(features[lang], "signature:"+p.String())
			}
		}
		score += min(30, sigHits*15)

		scores[lang] = model.Clamp0To100(float64(score))
	}

	best := ""
	bestScore := -1
	for lang, score := range scores {
		if score > bestScore || (score == bestScore && lang < best) {
			best, bestScore = lang, score
		}
	}
	if best == "" {
		return FileResult{Language: "unknown", Confidence: 0}
	}

	framework := ""
	for name, pattern := range frameworkHints[best] {
		if pattern.MatchString(content) {
			framework = name
			bestScore = model.Clamp0To100(float64(bestScore) + 15)
			break
		}
	}

	sort.Strings(features[best])
	return FileResult{
		Language:   best,
		Confidence: bestScore,
		Features:   features[best],
		Framework:  framework,
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// DetectProject scans root (bounded to files godirwalk can reach,
// skipping common vendor/build directories) and aggregates per-language
// counts plus config-file hints into a project-wide summary.
func DetectProject(root string) (ProjectResult, error) {
	skipDirs := map[string]struct{}{
		".git": {}, "node_modules": {}, "vendor": {}, "__pycache__": {},
		".venv": {}, "dist": {}, "build": {}, "target": {}, ".idea": {}, ".vscode": {},
	}

	counts := make(map[string]int)
	var buildSystems, packageManagers []string
	seenBuild := make(map[string]struct{})

	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			name := de.Name()
			if de.IsDir() {
				if _, skip := skipDirs[name]; skip {
					return godirwalk.SkipThis
				}
				return nil
			}

			if lang, ok := configFileHints[name]; ok {
				counts[lang] += 50
				if _, seen := seenBuild[name]; !seen {
					seenBuild[name] = struct{}{}
					buildSystems = append(buildSystems, name)
					if name == "package.json" {
						packageManagers = append(packageManagers, "npm")
					}
				}
			}

			ext := strings.ToLower(filepath.Ext(name))
			if lang, ok := extToLanguage[ext]; ok {
				counts[lang]++
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
	if err != nil && !os.IsNotExist(err) {
		return ProjectResult{}, err
	}

	type langCount struct {
		lang  string
		count int
	}
	var ordered []langCount
	for lang, c := range counts {
		ordered = append(ordered, langCount{lang, c})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].lang < ordered[j].lang
	})

	result := ProjectResult{BuildSystems: buildSystems, PackageManagers: packageManagers}
	if len(ordered) > 0 {
		result.Primary = ordered[0].lang
		for _, lc := range ordered[1:] {
			result.Secondary = append(result.Secondary, lc.lang)
		}
	}
	return result, nil
}
