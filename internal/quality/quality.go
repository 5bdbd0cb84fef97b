// Package quality implements the Quality & Content Analyzer (spec
// §4.C10): pure scoring functions over an Analysis Record and file text —
// complexity, maintainability, testability, documentation, and
// rule-based architectural pattern detection.
package quality

import (
	"math"
	"regexp"
	"strings"

	"suncc/internal/model"
)

var decisionPointPattern = regexp.MustCompile(`\b(if|elif|else if|while|for|switch|case|catch)\b|&&|\|\|`)

// Cyclomatic computes 1 + count of decision-point keywords/operators.
func Cyclomatic(text string) int {
	return 1 + len(decisionPointPattern.FindAllString(text, -1))
}

// Cognitive walks text line by line tracking brace/indent nesting depth;
// each decision point inside a nested block scores nesting_depth extra
// points, and boolean operator chains add one per extra operator.
func Cognitive(text string) int {
	score := 0
	depth := 0
	for _, line := range strings.Split(text, "\n") {
		opens := strings.Count(line, "{")
		closes := strings.Count(line, "}")

		hits := decisionPointPattern.FindAllString(line, -1)
		if len(hits) > 0 {
			score += 1 + depth
			boolOps := 0
			for _, h := range hits {
				if h == "&&" || h == "||" {
					boolOps++
				}
			}
			if boolOps > 1 {
				score += boolOps - 1
			}
		}

		depth += opens - closes
		if depth < 0 {
			depth = 0
		}
	}
	return score
}

// NestingDepth returns the maximum brace/parenthesis nesting depth, or for Python the
// maximum indentation level measured in 4-space units.
func NestingDepth(text, language string) int {
	if language == "python" {
		maxIndent := 0
		for _, line := range strings.Split(text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			n := 0
			for _, c := range line {
				if c == ' ' {
					n++
				} else if c == '\t' {
					n += 4
				} else {
					break
				}
			}
			level := n / 4
			if level > maxIndent {
				maxIndent = level
			}
		}
		return maxIndent
	}

	depth, maxDepth := 0, 0
	for _, c := range text {
		switch c {
		case '{', '(':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case '}', ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return maxDepth
}

// Maintainability implements the documented formula, scaled into 0..100:
// 171 − 5.2·ln(volume) − 0.23·cyclomatic − 16.2·ln(LOC), scaled by 100/171.
func Maintainability(text string, cyclomatic int) int {
	loc := countCodeLines(text)
	if loc == 0 {
		return 100
	}
	volume := halsteadVolume(text)
	if volume < 1 {
		volume = 1
	}
	raw := 171 - 5.2*math.Log(volume) - 0.23*float64(cyclomatic) - 16.2*math.Log(float64(loc))
	scaled := raw * 100 / 171
	return model.Clamp0To100(scaled)
}

// halsteadVolume approximates Halstead volume as token_count * log2(vocabulary).
func halsteadVolume(text string) float64 {
	tokens := regexp.MustCompile(`\w+|[^\s\w]`).FindAllString(text, -1)
	if len(tokens) == 0 {
		return 1
	}
	vocab := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		vocab[t] = struct{}{}
	}
	n := float64(len(tokens))
	vocabSize := float64(len(vocab))
	if vocabSize < 2 {
		vocabSize = 2
	}
	return n * math.Log2(vocabSize)
}

func countCodeLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") {
			continue
		}
		n++
	}
	return n
}

var diMarkerPattern = regexp.MustCompile(`\bNew\w*\(.*\w+\s+\w+Interface\b|\binject\b|\bconstructor\(.*:\s*\w+\)`)
var globalStatePattern = regexp.MustCompile(`\bvar\s+\w+\s*=\s*(?:map|make)|^\s*global\s+\w+`)
var sideEffectPattern = regexp.MustCompile(`\bos\.(Open|Remove|WriteFile)|fmt\.Print|console\.log|print\(`)
var testMarkerPattern = regexp.MustCompile(`\bfunc\s+Test\w+|\bdef\s+test_\w+|\bit\(['"]`)

// Testability implements the documented formula over simple textual
// heuristics, since a true purity/side-effect analysis needs a type
// checker this package intentionally doesn't have.
func Testability(text string, complexFnCount, totalFnCount int) int {
	score := 50.0

	pureRatio := 0.0
	if totalFnCount > 0 {
		sideEffectful := len(sideEffectPattern.FindAllString(text, -1))
		if sideEffectful > totalFnCount {
			sideEffectful = totalFnCount
		}
		pureRatio = float64(totalFnCount-sideEffectful) / float64(totalFnCount)
		score += 30 * pureRatio
		score -= 20 * (float64(sideEffectful) / float64(totalFnCount))
	}

	if diMarkerPattern.MatchString(text) {
		score += 15
	}
	if globalStatePattern.MatchString(text) {
		score -= 15
	}
	score -= 5 * float64(complexFnCount)
	if testMarkerPattern.MatchString(text) {
		score += 20
	}

	return model.Clamp0To100(score)
}

var docCommentMarkerPattern = regexp.MustCompile(`/\*\*|"""|^\s*///`)
var readmeOrTagPattern = regexp.MustCompile(`(?i)README|@param|@return|:param\s|:returns:`)

// Documentation scores comment density against code density, with bonus
// points for doc-comment markers and README/parameter tag references.
func Documentation(text string) int {
	var commentLines, codeLines int
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") || strings.HasPrefix(t, "*") || strings.HasPrefix(t, "/*") {
			commentLines++
		} else {
			codeLines++
		}
	}
	if codeLines == 0 {
		codeLines = 1
	}

	score := math.Min(100, float64(commentLines)/float64(codeLines)*300)
	if docCommentMarkerPattern.MatchString(text) {
		score += 10
	}
	if readmeOrTagPattern.MatchString(text) {
		score += 15
	}
	return model.Clamp0To100(score)
}

// Detect runs the rule-based pattern detectors over an Analysis Record and
// text, returning every pattern with non-zero confidence.
func Detect(a model.Analysis, text string) []model.Pattern {
	var out []model.Pattern

	if p := detectSingleton(text); p != nil {
		out = append(out, *p)
	}
	if p := detectFactory(a, text); p != nil {
		out = append(out, *p)
	}
	if p := detectObserver(text); p != nil {
		out = append(out, *p)
	}
	return out
}

var singletonPattern = regexp.MustCompile(`\bgetInstance\s*\(\)|\bonce\.Do\(|\bsingleton\b`)

func detectSingleton(text string) *model.Pattern {
	hits := singletonPattern.FindAllString(text, -1)
	if len(hits) == 0 {
		return nil
	}
	return &model.Pattern{
		Name:       "singleton",
		Confidence: model.Clamp0To100(float64(40 + 20*len(hits))),
		Evidence:   hits,
	}
}

var factoryNamePattern = regexp.MustCompile(`\bNew\w+\(|\bcreate\w+\(|\bFactory\b`)

func detectFactory(a model.Analysis, text string) *model.Pattern {
	hits := factoryNamePattern.FindAllString(text, -1)
	if len(hits) == 0 {
		return nil
	}
	confidence := 30 + 10*len(hits)
	if len(a.Interfaces) > 0 {
		confidence += 20
	}
	return &model.Pattern{
		Name:       "factory",
		Confidence: model.Clamp0To100(float64(confidence)),
		Evidence:   hits,
	}
}

var observerPattern = regexp.MustCompile(`\bSubscribe\(|\bon\w+\s*\(|\baddEventListener\(|\bNotify\(`)

func detectObserver(text string) *model.Pattern {
	hits := observerPattern.FindAllString(text, -1)
	if len(hits) == 0 {
		return nil
	}
	return &model.Pattern{
		Name:       "observer",
		Confidence: model.Clamp0To100(float64(35 + 15*len(hits))),
		Evidence:   hits,
	}
}
