// Package symbols guesses which identifiers a fragment of TypeScript refers
// to. The guess feeds auto-import and is only a heuristic.
package symbols

import (
	"regexp"
	"sort"
)

// Guesser returns the symbols a fragment of code probably references, in
// order of first use.
type Guesser interface {
	Guess(code string) []string
}

type GuesserFunc func(code string) []string

func (f GuesserFunc) Guess(code string) []string { return f(code) }

var (
	// Strings, template literals and comments never hold references.
	noise = regexp.MustCompile("(?s)'(?:[^'\\\\\\n]|\\\\.)*'|\"(?:[^\"\\\\\\n]|\\\\.)*\"|`(?:[^`\\\\]|\\\\.)*`|//[^\\n]*|/\\*.*?\\*/")
	// A capitalized identifier, unless it is a member access.
	capitalized = regexp.MustCompile(`(^|[^.\w$])([A-Z][A-Za-z0-9_$]*)`)
)

// Builtins are global names that never need an import.
var Builtins = []string{
	"Array", "ArrayBuffer", "BigInt", "Boolean", "DataView", "Date", "Error",
	"Exclude", "Extract", "Function", "Infinity", "InstanceType", "Intl",
	"JSON", "Map", "Math", "NaN", "NonNullable", "Number", "Object", "Omit",
	"Parameters", "Partial", "Pick", "Promise", "Proxy", "RangeError",
	"Readonly", "ReadonlyArray", "Record", "Reflect", "RegExp", "Required",
	"ReturnType", "Set", "String", "Symbol", "TypeError", "Uint8Array",
	"WeakMap", "WeakSet",
}

// Capitalized guesses that every capitalized identifier outside strings and
// comments is a class, type or decorator that may need an import.
type Capitalized struct {
	// Ignore lists extra names to leave out, on top of Builtins.
	Ignore []string
}

func (c Capitalized) Guess(code string) []string {
	skip := make(map[string]bool, len(Builtins)+len(c.Ignore))
	for _, name := range Builtins {
		skip[name] = true
	}
	for _, name := range c.Ignore {
		skip[name] = true
	}

	code = noise.ReplaceAllString(code, " ")
	var out []string
	for _, m := range capitalized.FindAllStringSubmatch(code, -1) {
		name := m[2]
		if skip[name] {
			continue
		}
		skip[name] = true
		out = append(out, name)
	}
	return out
}

// Sorted returns the guess of g in lexical order.
func Sorted(g Guesser, code string) []string {
	out := g.Guess(code)
	sort.Strings(out)
	return out
}
