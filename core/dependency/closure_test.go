package dependency

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-scopp/ts-flattered/core/builder"
	"github.com/max-scopp/ts-flattered/core/registry"
)

func newRegistry(t *testing.T, files map[string]string) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for p, src := range files {
		unit, err := builder.ParseSourceFile(context.Background(), p, src)
		require.NoError(t, err)
		require.NoError(t, reg.Register(unit))
	}
	return reg
}

func TestClosure(t *testing.T) {
	reg := newRegistry(t, map[string]string{
		"src/app.ts":       "import { A } from \"./a\";\nimport \"./app.css\";\nimport { R } from \"react\";\n",
		"src/a.ts":         "import { B } from \"./lib\";\n",
		"src/lib/index.ts": "import { A } from \"../a.js\";\nimport { C } from \"./c\";\n",
		"src/lib/c.ts":     "",
		"src/unrelated.ts": "import { A } from \"./a\";\n",
	})
	r := NewResolver(reg)

	p, ok := r.File("src/lib")
	require.True(t, ok)
	assert.Equal(t, "src/lib/index.ts", p)
	_, ok = r.File("src/app.css")
	assert.False(t, ok)

	assert.Equal(t, []string{"src/a.ts"}, r.Direct("src/app.ts"))
	assert.Equal(t, []string{"src/a.ts", "src/app.ts", "src/lib/c.ts", "src/lib/index.ts"}, r.Closure("src/app.ts"))
	assert.Equal(t, []string{"src/lib/c.ts"}, r.Closure("src/lib/c.ts", "src/missing.ts"))
	assert.Empty(t, r.Closure())
}
