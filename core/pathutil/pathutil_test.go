package pathutil

import (
	"fmt"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRelativeImport(t *testing.T) {
	tests := []struct {
		spec string
		want bool
	}{
		{"./b", true},
		{"../types/common", true},
		{`..\win\style`, true},
		{"react", false},
		{"@scope/pkg", false},
		{"/abs/path", false},
		{"~/alias", false},
		{".hidden", false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRelativeImport(tt.spec))
		})
	}
}

func TestResolveImportPath(t *testing.T) {
	assert.Equal(t, "src/types/common", ResolveImportPath("../types/common", "src/components/Button.tsx"))
	assert.Equal(t, "src/b", ResolveImportPath("./b", "src/a.ts"))
	assert.Equal(t, "/repo/lib/x", ResolveImportPath("../lib/x", `/repo/src/a.ts`))
	assert.Equal(t, "react", ResolveImportPath("react", "src/a.ts"))
	assert.Equal(t, "src/x", ResolveImportPath(`.\x`, `src\a.ts`))
}

func TestCalculateNewImportPath(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		old, new string
		want     string
	}{
		{"deeper move", "../types/common", "src/components/Button.tsx", "src/out/components/Button.tsx", "../../types/common"},
		{"shallower move", "../../types/common", "src/out/components/Button.tsx", "src/components/Button.tsx", "../types/common"},
		{"same directory rename", "./b", "src/a.ts", "src/c.ts", "./b"},
		{"target becomes sibling", "../lib/util", "src/app/main.ts", "src/lib/main.ts", "./util"},
		{"crossing unrelated subtrees", "./helpers/fmt", "src/a/x.ts", "tools/b/c/x.ts", "../../../src/a/helpers/fmt"},
		{"target becomes directory itself", "../lib", "src/app/main.ts", "src/lib/main.ts", "./"},
		{"non relative passthrough", "react", "src/a.ts", "elsewhere/b.ts", "react"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateNewImportPath(tt.spec, tt.old, tt.new)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewritePreservesTarget(t *testing.T) {
	specs := []string{"./b", "../b", "./x/y", "../../lib/z", "../a/b/../c", "./"}
	files := []string{
		"src/a.ts",
		"src/components/Button.tsx",
		"src/out/components/Button.tsx",
		"lib/deep/er/file.ts",
		"other/x.ts",
		"src/b.ts",
	}
	for _, spec := range specs {
		for _, oldFile := range files {
			for _, newFile := range files {
				name := fmt.Sprintf("%s:%s->%s", spec, oldFile, newFile)
				t.Run(name, func(t *testing.T) {
					before := ResolveImportPath(spec, oldFile)
					got, err := CalculateNewImportPath(spec, oldFile, newFile)
					if err != nil {
						// Only targets above the logical root are unreachable.
						assert.ErrorIs(t, err, ErrEscapesRoot)
						return
					}
					assert.True(t, IsRelativeImport(got), "result %q must stay relative", got)
					assert.Equal(t, path.Clean(before), path.Clean(ResolveImportPath(got, newFile)))
				})
			}
		}
	}
}

func TestRewriteNoOp(t *testing.T) {
	for _, spec := range []string{"./b", "../x/./y", "../../a/../b"} {
		got, err := CalculateNewImportPath(spec, "src/p/q.ts", "src/p/q.ts")
		require.NoError(t, err)
		assert.Equal(t, spec, got)
	}
}

func TestNonRelativePassthrough(t *testing.T) {
	for _, spec := range []string{"react", "@angular/core", "/abs", "lodash/fp"} {
		got, err := CalculateNewImportPath(spec, "a/b.ts", "c/d/e.ts")
		require.NoError(t, err)
		assert.Equal(t, spec, got)
	}
}

func TestRetargetImportPath(t *testing.T) {
	move := func(p string) string {
		out, _ := ReplacePrefix(p, "src", "dist")
		return out
	}
	got, err := RetargetImportPath("./b", "src/a.ts", "dist/a.ts", move)
	require.NoError(t, err)
	assert.Equal(t, "./b", got)

	got, err = RetargetImportPath("../shared/x", "src/app/a.ts", "dist/app/a.ts", func(p string) string { return p })
	require.NoError(t, err)
	assert.Equal(t, "../../src/shared/x", got)
}

func TestRelative(t *testing.T) {
	rel, err := Relative("src/a", "src/b/c")
	require.NoError(t, err)
	assert.Equal(t, "../b/c", rel)

	rel, err = Relative(".", "src/x")
	require.NoError(t, err)
	assert.Equal(t, "src/x", rel)

	_, err = Relative("../outside", "src/x")
	assert.ErrorIs(t, err, ErrEscapesRoot)

	_, err = Relative("/abs", "rel")
	assert.ErrorIs(t, err, ErrMalformedPath)
}

func TestReplacePrefix(t *testing.T) {
	got, ok := ReplacePrefix("src/components/Button.tsx", "src/components", "src/out/components")
	assert.True(t, ok)
	assert.Equal(t, "src/out/components/Button.tsx", got)

	_, ok = ReplacePrefix("srcx/a.ts", "src", "dist")
	assert.False(t, ok)

	got, ok = ReplacePrefix("src/a.ts", "src", "")
	assert.True(t, ok)
	assert.Equal(t, "a.ts", got)

	got, ok = ReplacePrefix("a.ts", "", "lib")
	assert.True(t, ok)
	assert.Equal(t, "lib/a.ts", got)
}

func TestValidateMovedPath(t *testing.T) {
	assert.NoError(t, ValidateMovedPath("src/a/b.ts", "dist/a/b.ts", "src", "dist"))
	assert.NoError(t, ValidateMovedPath("src/dist/b.ts", "dist/dist/b.ts", "src", "dist"))

	assert.ErrorIs(t, ValidateMovedPath("src/a.ts", "dist/dist/a.ts", "src", "dist"), ErrMalformedPath)
	assert.ErrorIs(t, ValidateMovedPath("src/a.ts", "", "src", "dist"), ErrMalformedPath)
	assert.ErrorIs(t, ValidateMovedPath("src/a.ts", "dist//a.ts", "src", "dist"), ErrMalformedPath)
	assert.ErrorIs(t, ValidateMovedPath("src/a.ts", "../a.ts", "src", ".."), ErrEscapesRoot)
}

func TestValidateSpecifier(t *testing.T) {
	assert.NoError(t, ValidateSpecifier("../../x"))
	assert.NoError(t, ValidateSpecifier("./"))
	assert.ErrorIs(t, ValidateSpecifier("x"), ErrMalformedPath)
	assert.ErrorIs(t, ValidateSpecifier(".//x"), ErrMalformedPath)
	assert.ErrorIs(t, ValidateSpecifier("./a/../b"), ErrMalformedPath)
}

func TestSameModule(t *testing.T) {
	assert.True(t, SameModule("src/types/common", "src/types/common.ts"))
	assert.True(t, SameModule("src/lib", "src/lib/index.tsx"))
	assert.True(t, SameModule("src/d", "src/d.d.ts"))
	assert.False(t, SameModule("src/types/common", "src/types/commons.ts"))
}
