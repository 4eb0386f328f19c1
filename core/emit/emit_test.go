package emit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-scopp/ts-flattered/core/builder"
	"github.com/max-scopp/ts-flattered/core/cache"
	"github.com/max-scopp/ts-flattered/core/diagnostics"
	"github.com/max-scopp/ts-flattered/core/pathutil"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteAll(t *testing.T) {
	out := t.TempDir()
	good := builder.NewSourceFile("src/models/user.ts")
	good.AddClass(builder.NewClass("User").Export())
	// A class without a name cannot be printed.
	bad := builder.NewSourceFile("src/broken.ts", tsast.NewClassDeclaration(""))
	escaping := builder.NewSourceFile("../outside.ts")

	res, err := WriteAll(context.Background(), out, []*builder.SourceFile{good, bad, escaping}, Options{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"src/models/user.ts"}, res.Written)
	assert.Equal(t, "export class User {\n}\n", read(t, filepath.Join(out, "src", "models", "user.ts")))

	require.Len(t, res.Failed, 2)
	assert.ErrorIs(t, res.Failed["../outside.ts"], pathutil.ErrEscapesRoot)
	assert.ErrorIs(t, res.Failed["src/broken.ts"], tsast.ErrInvalidNode)
	assert.True(t, strings.HasPrefix(read(t, filepath.Join(out, "src", "broken.ts")), "// ts-flattered: failed to emit src/broken.ts: "))
	assert.Error(t, res.Err())
	assert.False(t, res.OK())

	_, err = os.Stat(filepath.Join(filepath.Dir(out), "outside.ts"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteAllSkipsUnchanged(t *testing.T) {
	out := t.TempDir()
	gens := cache.NewGenerationCache()
	unit := builder.NewSourceFile("a.ts")
	unit.AddClass(builder.NewClass("A"))
	opts := Options{Generations: gens}

	res, err := WriteAll(context.Background(), out, []*builder.SourceFile{unit}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ts"}, res.Written)

	res, err = WriteAll(context.Background(), out, []*builder.SourceFile{unit}, opts)
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Equal(t, []string{"a.ts"}, res.Skipped)
	assert.NoError(t, res.Err())

	unit.AddClass(builder.NewClass("B"))
	res, err = WriteAll(context.Background(), out, []*builder.SourceFile{unit}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ts"}, res.Written)
}

func TestWriteAllReturnsNoErrorWhenEverythingIsWritten(t *testing.T) {
	out := t.TempDir()
	var units []*builder.SourceFile
	for _, name := range []string{"a.ts", "b.ts", "c/d.ts"} {
		unit := builder.NewSourceFile(name)
		unit.AddClass(builder.NewClass("X"))
		units = append(units, unit)
	}

	res, err := WriteAll(context.Background(), out, units, Options{Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ts", "b.ts", "c/d.ts"}, res.Written)
	assert.NoError(t, res.Err())
}

func TestWriteAllComparesDisk(t *testing.T) {
	out := t.TempDir()
	unit := builder.NewSourceFile("a.ts")
	unit.AddClass(builder.NewClass("A"))
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.ts"), []byte("class A {\n}\n"), 0o644))

	res, err := WriteAll(context.Background(), out, []*builder.SourceFile{unit}, Options{CompareDisk: true})
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Equal(t, []string{"a.ts"}, res.Skipped)

	unit.AddClass(builder.NewClass("B"))
	res, err = WriteAll(context.Background(), out, []*builder.SourceFile{unit}, Options{CompareDisk: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ts"}, res.Written)
	assert.Equal(t, "class A {\n}\nclass B {\n}\n", read(t, filepath.Join(out, "a.ts")))
}

func TestWriteAllStripsMarkers(t *testing.T) {
	out := t.TempDir()
	m := diagnostics.NewSourceMap()
	unit := builder.NewSourceFile("a.ts", m.MarkStatement(diagnostics.Location{File: "tpl.ts", Line: 1, Column: 1}))
	unit.AddClass(builder.NewClass("A"))

	_, err := WriteAll(context.Background(), out, []*builder.SourceFile{unit}, Options{StripMarkers: true})
	require.NoError(t, err)
	assert.Equal(t, "class A {\n}\n", read(t, filepath.Join(out, "a.ts")))
}

func TestWriteAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WriteAll(ctx, t.TempDir(), []*builder.SourceFile{builder.NewSourceFile("a.ts")}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
