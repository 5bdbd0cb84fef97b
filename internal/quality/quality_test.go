package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"suncc/internal/model"
)

func TestCyclomaticCountsDecisionPoints(t *testing.T) {
	text := "if (a && b) {\n} else if (c) {\n}\nfor (;;) {}\n"
	assert.Equal(t, 1+4, Cyclomatic(text))
}

func TestCognitiveAddsNestingPenalty(t *testing.T) {
	flat := "if (a) {\n}\n"
	nested := "if (a) {\n  if (b) {\n  }\n}\n"
	assert.Greater(t, Cognitive(nested), Cognitive(flat))
}

func TestNestingDepthBraces(t *testing.T) {
	text := "func f() {\n  if true {\n    if true {\n    }\n  }\n}\n"
	assert.Equal(t, 3, NestingDepth(text, "go"))
}

func TestNestingDepthPythonIndentation(t *testing.T) {
	text := "def f():\n    if True:\n        pass\n"
	assert.Equal(t, 2, NestingDepth(text, "python"))
}

func TestMaintainabilityClampedTo0To100(t *testing.T) {
	score := Maintainability("func f() {}\n", 1)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestTestabilityRewardsTestMarkersAndPenalizesSideEffects(t *testing.T) {
	withTests := "func TestThing(t *testing.T) {}\n"
	withSideEffects := "func f() {\n\tfmt.Println(\"x\")\n\tos.Remove(\"y\")\n}\n"

	assert.Greater(t, Testability(withTests, 0, 1), Testability(withSideEffects, 0, 1))
}

func TestDocumentationRewardsCommentDensity(t *testing.T) {
	documented := "// does a thing\nfunc f() {}\n"
	bare := "func f() {}\n"
	assert.Greater(t, Documentation(documented), Documentation(bare))
}

func TestDetectFindsFactoryPattern(t *testing.T) {
	text := "func NewWidget() *Widget {\n\treturn &Widget{}\n}\n"
	patterns := Detect(model.Analysis{}, text)

	found := false
	for _, p := range patterns {
		if p.Name == "factory" {
			found = true
		}
	}
	assert.True(t, found)
}
