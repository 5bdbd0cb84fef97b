package langdetect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFileGoByExtensionAndSignature(t *testing.T) {
	content := "package main\n\nfunc main() {\n\tx := 1\n\t_ = x\n}\n"
	res := DetectFile("main.go", content)

	assert.Equal(t, "go", res.Language)
	assert.GreaterOrEqual(t, res.Confidence, 40)
}

func TestDetectFilePythonSignature(t *testing.T) {
	content := "#!/usr/bin/env python\nimport os\n\ndef run():\n    pass\n\nif __name__ == '__main__':\n    run()\n"
	res := DetectFile("script.py", content)

	assert.Equal(t, "python", res.Language)
}

func TestDetectFileUnknownExtensionFallsBackToKeywords(t *testing.T) {
	content := "func main() {\n\tx := 1\n}\n"
	res := DetectFile("script.txt", content)

	assert.Equal(t, "go", res.Language)
}

func TestDetectProjectFindsConfigHints(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	res, err := DetectProject(dir)
	require.NoError(t, err)
	assert.Equal(t, "go", res.Primary)
	assert.Contains(t, res.BuildSystems, "go.mod")
}
