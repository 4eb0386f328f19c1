package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/app.ts":                "import { Button } from \"./components/Button\";\n",
		"src/components/Button.tsx": "import { Base } from \"../types/common\";\nexport class Button {\n}\n",
		"src/types/common.ts":       "export interface Base {}\n",
	}
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	t.Chdir(root)
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	moveWrite, moveRewriteInbound, moveOut = false, false, ""
	printRemoveComments, generateOut, autoImportCode = false, "", ""
	configPath, logfile, verbose = "", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDepsAndImporters(t *testing.T) {
	setupProject(t)

	out, err := run(t, "deps", "src/components/Button.tsx")
	require.NoError(t, err)
	assert.Equal(t, "Relative ../types/common -> src/types/common\n", out)

	out, err = run(t, "importers", "src/components/Button.tsx")
	require.NoError(t, err)
	assert.Equal(t, "src/app.ts\n", out)

	_, err = run(t, "deps", "src/missing.ts")
	assert.Error(t, err)
}

func TestMovePlanAndWrite(t *testing.T) {
	root := setupProject(t)

	out, err := run(t, "move", "src/components", "src/ui/components", "--rewrite-inbound")
	require.NoError(t, err)
	assert.Contains(t, out, "move    src/components/Button.tsx -> src/ui/components/Button.tsx\n")
	assert.Contains(t, out, "rewrite src/ui/components/Button.tsx: \"../types/common\" -> \"../../types/common\"\n")
	assert.Contains(t, out, "rewrite src/app.ts: \"./components/Button\" -> \"./ui/components/Button\"\n")

	_, err = os.Stat(filepath.Join(root, "out"))
	assert.True(t, os.IsNotExist(err))

	_, err = run(t, "move", "src/components", "src/ui/components", "--write")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, "out", "src", "ui", "components", "Button.tsx"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "from \"../../types/common\"")
}

func TestPrintAndVersion(t *testing.T) {
	setupProject(t)

	out, err := run(t, "print", "src/types/common.ts")
	require.NoError(t, err)
	assert.Equal(t, "export interface Base {}\n", out)

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ts-flattered dev\n", out)
}

func TestDiagnose(t *testing.T) {
	root := setupProject(t)
	bad := filepath.Join(root, "bad.ts")
	require.NoError(t, os.WriteFile(bad, []byte("const a = ;\n"), 0o644))

	_, err := run(t, "diagnose", "src/app.ts")
	require.NoError(t, err)

	out, err := run(t, "diagnose", "bad.ts")
	assert.Error(t, err)
	assert.Contains(t, out, "bad.ts:1:")
}

func TestGenerateClosure(t *testing.T) {
	root := setupProject(t)

	_, err := run(t, "generate", "src/components/Button.tsx")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "out", "src", "components", "Button.tsx"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "out", "src", "types", "common.ts"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "out", "src", "app.ts"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateSkipsUnchangedOutputs(t *testing.T) {
	root := setupProject(t)
	_, err := run(t, "generate")
	require.NoError(t, err)

	target := filepath.Join(root, "out", "src", "app.ts")
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(target, old, old))

	_, err = run(t, "generate")
	require.NoError(t, err)
	stat, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, stat.ModTime().Equal(old), "unchanged output was rewritten")
}
