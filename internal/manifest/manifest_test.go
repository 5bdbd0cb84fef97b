package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# a sample genesis manifest
@project demo
@version 1.2.0
@source ./src
@output ./out
## should generated outputs live alongside sources?

imports {
  util = ./src/util.py
}

config {
  ratio_threshold = 0.3
}
`

func TestParseExtractsDirectivesSectionsAndQuestions(t *testing.T) {
	m, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "demo", m.Project)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, "./src", m.Source)
	assert.Equal(t, "./out", m.Output)
	assert.Equal(t, []string{"should generated outputs live alongside sources?"}, m.Questions)
	assert.Equal(t, "./src/util.py", m.Imports["util"])
	assert.Equal(t, "0.3", m.Config["ratio_threshold"])
}

func TestParseRejectsUnknownSection(t *testing.T) {
	_, err := Parse(strings.NewReader("@project x\nbogus {\n}\n"))
	assert.Error(t, err)
}

func TestParseRejectsDangerousContent(t *testing.T) {
	_, err := Parse(strings.NewReader("@project x\n@context <script>alert(1)</script>\n"))
	assert.Error(t, err)
}

func TestValidateRequiresProject(t *testing.T) {
	m := &Manifest{}
	assert.Error(t, Validate(m))
}

func TestValidateRejectsMatchingSourceAndOutput(t *testing.T) {
	m := &Manifest{Project: "demo", Source: "./src", Output: "./src"}
	assert.Error(t, Validate(m))
}

func TestValidateRejectsPathTraversal(t *testing.T) {
	m := &Manifest{Project: "demo", Source: "../escape", Output: "./out"}
	assert.Error(t, Validate(m))
}

func TestValidateRejectsMalformedSemver(t *testing.T) {
	m := &Manifest{Project: "demo", Version: "not-a-version"}
	assert.Error(t, Validate(m))
}

func TestValidateAcceptsBareVersionNumber(t *testing.T) {
	m := &Manifest{Project: "demo", Version: "1.0.0"}
	assert.NoError(t, Validate(m))
}
