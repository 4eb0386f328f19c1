package diagnostics

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkIsMonotonic(t *testing.T) {
	m := NewSourceMap()
	a := m.Mark(Location{File: "gen/a.ts", Line: 10, Column: 2})
	b := m.Mark(Location{File: "gen/b.ts", Line: 1, Column: 1})
	assert.Equal(t, "/*@tsf:1*/", a)
	assert.Equal(t, "/*@tsf:2*/", b)

	loc, ok := m.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "gen/b.ts:1:1", loc.String())
	_, ok = m.Lookup(3)
	assert.False(t, ok)
}

func TestMarkConcurrently(t *testing.T) {
	m := NewSourceMap()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Mark(Location{File: "x.ts", Line: 1, Column: 1})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len())
	_, ok := m.Lookup(50)
	assert.True(t, ok)
}

func TestResolve(t *testing.T) {
	m := NewSourceMap()
	own := m.Mark(Location{File: "models/user.gen.ts", Line: 20, Column: 5})
	inline := m.Mark(Location{File: "models/order.gen.ts", Line: 7, Column: 3})
	text := strings.Join([]string{
		"import { A } from \"./a\";",
		own,
		"class User {",
		"    name: string;",
		"}",
		inline + " const total = 1;",
		"const next = 2;",
	}, "\n")

	tests := []struct {
		line, column int
		want         Location
		ok           bool
	}{
		{line: 1, column: 1, ok: false},
		{line: 2, column: 1, want: Location{File: "models/user.gen.ts", Line: 20, Column: 5}, ok: true},
		{line: 3, column: 1, want: Location{File: "models/user.gen.ts", Line: 20, Column: 5}, ok: true},
		{line: 4, column: 5, want: Location{File: "models/user.gen.ts", Line: 21, Column: 5}, ok: true},
		{line: 6, column: 12, want: Location{File: "models/order.gen.ts", Line: 7, Column: 3}, ok: true},
		{line: 7, column: 1, want: Location{File: "models/order.gen.ts", Line: 8, Column: 1}, ok: true},
		{line: 99, column: 1, ok: false},
	}
	for _, tt := range tests {
		got, ok := m.Resolve(text, tt.line, tt.column)
		assert.Equal(t, tt.ok, ok, "line %d", tt.line)
		if tt.ok {
			assert.Equal(t, tt.want, got, "line %d", tt.line)
		}
	}

	_, ok := NewSourceMap().Resolve(text, 3, 1)
	assert.False(t, ok)
}

func TestDiagnose(t *testing.T) {
	ctx := context.Background()

	diags, err := Diagnose(ctx, "ok.ts", "const a = 1;\n", nil)
	require.NoError(t, err)
	assert.Empty(t, diags)

	m := NewSourceMap()
	origin := Location{File: "templates/b.ts", Line: 4, Column: 1}
	text := "const a = 1;\n" + m.Mark(origin) + "\nconst b = ;\n"
	diags, err = Diagnose(ctx, "out/b.ts", text, m)
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	for _, d := range diags {
		assert.Equal(t, 3, d.Generated.Line)
		require.NotNil(t, d.Origin)
		assert.Equal(t, origin, *d.Origin)
		assert.True(t, strings.HasPrefix(d.String(), "templates/b.ts:4:1: "), d.String())
	}

	diags, err = Diagnose(ctx, "out/b.ts", text, nil)
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Nil(t, diags[0].Origin)
	assert.True(t, strings.HasPrefix(Format(diags), "out/b.ts:3:"))
}

func TestStripMarkers(t *testing.T) {
	m := NewSourceMap()
	text := "a;\n" + m.Mark(Location{}) + "\nb;" + m.Mark(Location{}) + "\n"
	assert.Equal(t, "a;\nb;\n", StripMarkers(text))
}

func TestMarkStatement(t *testing.T) {
	m := NewSourceMap()
	st := m.MarkStatement(Location{File: "a.ts", Line: 1, Column: 1})
	assert.NotNil(t, st)
	assert.Equal(t, 1, m.Len())
}
