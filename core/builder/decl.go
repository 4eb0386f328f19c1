// Package builder provides fluent builders over tsast nodes. A builder owns
// one node; each mutator asks tsast for an updated copy of that node, stores
// it, and returns the same builder. Nodes already handed out are never
// changed.
package builder

import (
	"strings"

	"github.com/max-scopp/ts-flattered/core/decorator"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

// declKind reads and replaces the parts every declaration shares: leading
// comments, decorators and modifiers. Kinds without decorators return nil and
// ignore the decorators passed to with.
type declKind[N any] struct {
	comments   func(N) []string
	decorators func(N) []*tsast.Decorator
	modifiers  func(N) []tsast.Modifier
	with       func(n N, comments []string, decorators []*tsast.Decorator, modifiers []tsast.Modifier) N
}

// decl is the decorator, modifier and documentation surface shared by all
// declaration builders.
type decl[N any] struct {
	node N
	kind *declKind[N]
}

func (d *decl[N]) set(comments []string, decorators []*tsast.Decorator, modifiers []tsast.Modifier) {
	d.node = d.kind.with(d.node, comments, decorators, modifiers)
}

func (d *decl[N]) setDecorators(decorators []*tsast.Decorator) {
	d.set(d.kind.comments(d.node), decorators, d.kind.modifiers(d.node))
}

func (d *decl[N]) setModifiers(modifiers []tsast.Modifier) {
	d.set(d.kind.comments(d.node), d.kind.decorators(d.node), modifiers)
}

func (d *decl[N]) addDecorator(dec *decorator.Decorator) {
	decs := append(append([]*tsast.Decorator(nil), d.kind.decorators(d.node)...), dec.Get())
	d.setDecorators(decs)
}

// findDecorator adopts the first decorator called name.
func (d *decl[N]) findDecorator(name string) (*decorator.Decorator, bool) {
	for _, dec := range d.kind.decorators(d.node) {
		if dec.Name() == name {
			return decorator.Adopt(dec), true
		}
	}
	return nil, false
}

// updateDecorator runs fn on the first decorator called name and stores the
// result in place.
func (d *decl[N]) updateDecorator(name string, fn func(*decorator.Decorator)) bool {
	decs := append([]*tsast.Decorator(nil), d.kind.decorators(d.node)...)
	for i, dec := range decs {
		if dec.Name() != name {
			continue
		}
		b := decorator.Adopt(dec)
		fn(b)
		decs[i] = b.Get()
		d.setDecorators(decs)
		return true
	}
	return false
}

func (d *decl[N]) removeDecorator(name string) bool {
	cur := d.kind.decorators(d.node)
	decs := make([]*tsast.Decorator, 0, len(cur))
	for _, dec := range cur {
		if dec.Name() != name {
			decs = append(decs, dec)
		}
	}
	if len(decs) == len(cur) {
		return false
	}
	d.setDecorators(decs)
	return true
}

func (d *decl[N]) hasModifier(m tsast.Modifier) bool {
	return tsast.HasModifier(d.kind.modifiers(d.node), m)
}

// setModifier adds or removes m. Added modifiers are placed by their
// canonical rank so export comes before static, static before readonly.
func (d *decl[N]) setModifier(m tsast.Modifier, on bool) {
	cur := d.kind.modifiers(d.node)
	if tsast.HasModifier(cur, m) == on {
		return
	}
	if !on {
		d.setModifiers(without(cur, func(x tsast.Modifier) bool { return x == m }))
		return
	}
	d.setModifiers(insertModifier(cur, m))
}

// setAccess replaces any public/protected/private modifier with m. An empty
// m removes the access modifier.
func (d *decl[N]) setAccess(m tsast.Modifier) {
	mods := without(d.kind.modifiers(d.node), tsast.IsAccessModifier)
	if m != "" {
		mods = insertModifier(mods, m)
	}
	d.setModifiers(mods)
}

func without(mods []tsast.Modifier, drop func(tsast.Modifier) bool) []tsast.Modifier {
	out := make([]tsast.Modifier, 0, len(mods))
	for _, x := range mods {
		if !drop(x) {
			out = append(out, x)
		}
	}
	return out
}

func insertModifier(mods []tsast.Modifier, m tsast.Modifier) []tsast.Modifier {
	rank := tsast.ModifierRank(m)
	out := make([]tsast.Modifier, 0, len(mods)+1)
	inserted := false
	for _, x := range mods {
		if !inserted && tsast.ModifierRank(x) > rank {
			out = append(out, m)
			inserted = true
		}
		out = append(out, x)
	}
	if !inserted {
		out = append(out, m)
	}
	return out
}

// doc replaces the JSDoc block among the leading comments with text, keeping
// line comments. Empty text removes the block.
func (d *decl[N]) doc(text string) {
	comments := withoutDocBlock(d.kind.comments(d.node))
	comments = append(comments, docLines(text)...)
	d.set(comments, d.kind.decorators(d.node), d.kind.modifiers(d.node))
}

func withoutDocBlock(comments []string) []string {
	out := make([]string, 0, len(comments))
	inDoc := false
	for _, c := range comments {
		trimmed := strings.TrimSpace(c)
		switch {
		case inDoc:
			if strings.HasSuffix(trimmed, "*/") {
				inDoc = false
			}
		case strings.HasPrefix(trimmed, "/**"):
			inDoc = !strings.HasSuffix(trimmed, "*/") || trimmed == "/**"
		default:
			out = append(out, c)
		}
	}
	return out
}

// docLines renders text as a JSDoc block, one comment entry per line so the
// printer indents each line.
func docLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return []string{"/** " + lines[0] + " */"}
	}
	out := []string{"/**"}
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			out = append(out, " *")
		} else {
			out = append(out, " * "+l)
		}
	}
	return append(out, " */")
}

// Doc returns the text of the JSDoc block in comments, without the comment
// markers.
func Doc(comments []string) string {
	var lines []string
	inDoc := false
	for _, c := range comments {
		for _, l := range strings.Split(c, "\n") {
			t := strings.TrimSpace(l)
			if !inDoc {
				if !strings.HasPrefix(t, "/**") {
					continue
				}
				inDoc = true
				t = strings.TrimPrefix(t, "/**")
			}
			end := strings.HasSuffix(t, "*/")
			t = strings.TrimSuffix(t, "*/")
			t = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "*"))
			if t != "" {
				lines = append(lines, t)
			}
			if end {
				return strings.Join(lines, "\n")
			}
		}
	}
	return strings.Join(lines, "\n")
}
