package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suncc/internal/generate"
	"suncc/internal/logging"
	"suncc/internal/model"
	"suncc/internal/oracle"
	"suncc/internal/planner"
)

type fakeOracle struct {
	code string
	err  error
	n    int
}

func (f *fakeOracle) Complete(ctx context.Context, req oracle.Request) (oracle.Response, error) {
	f.n++
	if f.err != nil {
		return oracle.Response{}, f.err
	}
	code := f.code
	if code == "" {
		code = "func greet() {}\n"
	}
	return oracle.Response{Code: code, Model: "fake"}, nil
}

func greetSource(out string) Source {
	return Source{
		Path:       "greet.sun",
		Language:   "go",
		OutputPath: out,
		Text:       "fn greet(name) {\n  print(name)\n}\n",
	}
}

// fillerSources pads a test corpus with files that never change across
// invocations, so a single changed file stays under the ratio gate's
// default 20% threshold (planner.go Rule 3) instead of always tripping
// a full rebuild on a one- or two-file project.
func fillerSources(dir string, n int) []Source {
	out := make([]Source, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Source{
			Path:       fmt.Sprintf("filler%d.sun", i),
			Language:   "go",
			OutputPath: filepath.Join(dir, fmt.Sprintf("filler%d.out", i)),
			Text:       "// filler, unrelated to the element(s) under test\n",
		})
	}
	return out
}

func TestInvokeColdStoreRunsFullBuild(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "greet.out")

	o := &fakeOracle{}
	outcome, err := Invoke(context.Background(), []Source{greetSource(out)}, o, Options{
		ProjectRoot: dir,
		Planner:     defaultPlannerOptions(),
		Generate:    generate.DefaultOptions(),
	}, logging.NewNop())

	require.NoError(t, err)
	assert.Equal(t, model.ModeFull, outcome.Plan.Mode)
	assert.Contains(t, outcome.Result.Added, out)
	assert.Equal(t, 1, o.n)

	contents, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Contains(t, string(contents), "func greet")
}

func TestInvokeSecondRunWithNoChangesIsNoOp(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "greet.out")

	o := &fakeOracle{}
	opts := Options{
		ProjectRoot: dir,
		Planner:     defaultPlannerOptions(),
		Generate:    generate.DefaultOptions(),
	}

	_, err := Invoke(context.Background(), []Source{greetSource(out)}, o, opts, logging.NewNop())
	require.NoError(t, err)

	outcome, err := Invoke(context.Background(), []Source{greetSource(out)}, o, opts, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, model.ModeNoOp, outcome.Plan.Mode)
	assert.Equal(t, 1, o.n, "oracle must not be invoked again on a no-op build")
}

func TestInvokeModifiedElementTriggersIncrementalRegeneration(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "greet.out")
	filler := fillerSources(dir, 5)

	o := &fakeOracle{}
	opts := Options{
		ProjectRoot: dir,
		Planner:     defaultPlannerOptions(),
		Generate:    generate.DefaultOptions(),
	}

	_, err := Invoke(context.Background(), append([]Source{greetSource(out)}, filler...), o, opts, logging.NewNop())
	require.NoError(t, err)

	changed := greetSource(out)
	changed.Text = "fn greet(name) {\n  print(name + \"!\")\n}\n"

	outcome, err := Invoke(context.Background(), append([]Source{changed}, filler...), o, opts, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, model.ModeIncremental, outcome.Plan.Mode)
	assert.Contains(t, outcome.Result.AffectedElements, "greet")
	assert.Equal(t, 2, o.n)
}

func TestInvokeCascadesAcrossFilesOnDependencyChange(t *testing.T) {
	dir := t.TempDir()
	fooOut := filepath.Join(dir, "foo.out")
	bazOut := filepath.Join(dir, "baz.out")

	foo := Source{Path: "foo.sun", Language: "go", OutputPath: fooOut, Text: "fn foo(x) {\n  print(x)\n}\n"}
	baz := Source{Path: "baz.sun", Language: "go", OutputPath: bazOut, Text: "fn baz(y) {\n  foo(y)\n}\n"}
	filler := fillerSources(dir, 4)

	o := &fakeOracle{}
	opts := Options{
		ProjectRoot: dir,
		Planner:     defaultPlannerOptions(),
		Generate:    generate.DefaultOptions(),
	}

	_, err := Invoke(context.Background(), append([]Source{foo, baz}, filler...), o, opts, logging.NewNop())
	require.NoError(t, err)
	require.Equal(t, 2, o.n, "initial full build regenerates both elements once each")

	changedFoo := foo
	changedFoo.Text = "fn foo(x) {\n  print(x + 1)\n}\n"

	outcome, err := Invoke(context.Background(), append([]Source{changedFoo, baz}, filler...), o, opts, logging.NewNop())
	require.NoError(t, err)
	require.Equal(t, model.ModeIncremental, outcome.Plan.Mode)

	assert.Equal(t, []string{"baz", "foo"}, outcome.Result.AffectedElements)
	assert.Equal(t, 4, o.n, "foo's change must cascade to baz exactly once, not twice")

	bazContents, readErr := os.ReadFile(bazOut)
	require.NoError(t, readErr)
	assert.Contains(t, string(bazContents), "func greet")
}

func TestInvokeForceFullSkipsIncrementalPath(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "greet.out")

	o := &fakeOracle{}
	opts := Options{
		ProjectRoot: dir,
		ForceFull:   true,
		Planner:     defaultPlannerOptions(),
		Generate:    generate.DefaultOptions(),
	}

	_, err := Invoke(context.Background(), []Source{greetSource(out)}, o, opts, logging.NewNop())
	require.NoError(t, err)

	outcome, err := Invoke(context.Background(), []Source{greetSource(out)}, o, opts, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, model.ModeFull, outcome.Plan.Mode)
	assert.Equal(t, "full build forced", outcome.Plan.Rationale)
}

func TestInvokeOracleFailureLeavesStoreUntouched(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "greet.out")

	o := &fakeOracle{err: assertErr("boom")}
	opts := Options{
		ProjectRoot: dir,
		Planner:     defaultPlannerOptions(),
		Generate:    generate.DefaultOptions(),
	}

	_, err := Invoke(context.Background(), []Source{greetSource(out)}, o, opts, logging.NewNop())
	require.Error(t, err)

	cachePath := filepath.Join(dir, ".build-cache", "elements.json")
	_, statErr := os.Stat(cachePath)
	assert.True(t, os.IsNotExist(statErr), "element store must not be persisted after a failed generation")
}

func TestInvokeClearCacheForcesColdRebuild(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "greet.out")

	o := &fakeOracle{}
	opts := Options{
		ProjectRoot: dir,
		Planner:     defaultPlannerOptions(),
		Generate:    generate.DefaultOptions(),
	}

	_, err := Invoke(context.Background(), []Source{greetSource(out)}, o, opts, logging.NewNop())
	require.NoError(t, err)

	opts.ClearCache = true
	outcome, err := Invoke(context.Background(), []Source{greetSource(out)}, o, opts, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, model.ModeFull, outcome.Plan.Mode)
	assert.Equal(t, 2, o.n)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func defaultPlannerOptions() planner.Options {
	return planner.DefaultOptions()
}
