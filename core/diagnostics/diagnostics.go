// Package diagnostics reports syntax problems in printed output and maps
// them back to the place that authored the offending code.
//
// Authoring code records its origin with SourceMap.Mark, which returns a
// comment token such as /*@tsf:3*/ to embed in the generated text. A
// diagnostic on a later line resolves to the nearest marker above it.
package diagnostics

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

type Diagnostic struct {
	// Generated is where the problem is in the printed text.
	Generated Location
	// Origin is the authoring location, when a marker covers the line.
	Origin  *Location
	Message string
}

// Location prefers the origin over the generated position.
func (d Diagnostic) Location() Location {
	if d.Origin != nil {
		return *d.Origin
	}
	return d.Generated
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Location(), d.Message)
}

var markerPattern = regexp.MustCompile(`/\*@tsf:(\d+)\*/`)

// SourceMap hands out marker ids in increasing order and remembers the origin
// of each. It is safe for concurrent use.
type SourceMap struct {
	mu      sync.Mutex
	next    int
	origins map[int]Location
}

func NewSourceMap() *SourceMap {
	return &SourceMap{origins: make(map[int]Location)}
}

// Mark records origin and returns the marker comment to embed before the
// code authored there.
func (m *SourceMap) Mark(origin Location) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.origins[m.next] = origin
	return Marker(m.next)
}

// MarkStatement is Mark wrapped in a statement, for insertion ahead of the
// generated statements.
func (m *SourceMap) MarkStatement(origin Location) tsast.Statement {
	return tsast.NewRawStatement(m.Mark(origin))
}

func Marker(id int) string {
	return "/*@tsf:" + strconv.Itoa(id) + "*/"
}

func (m *SourceMap) Lookup(id int) (Location, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.origins[id]
	return loc, ok
}

func (m *SourceMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.origins)
}

// Resolve translates a 1-based position in text to its authoring location.
// Lines after a marker count on from the marker's origin line, so a marker on
// a line of its own covers the code that follows it.
func (m *SourceMap) Resolve(text string, line, column int) (Location, bool) {
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return Location{}, false
	}
	for i := line - 1; i >= 0; i-- {
		found := markerPattern.FindAllStringSubmatch(lines[i], -1)
		if len(found) == 0 {
			continue
		}
		id, err := strconv.Atoi(found[len(found)-1][1])
		if err != nil {
			return Location{}, false
		}
		origin, ok := m.Lookup(id)
		if !ok {
			logger.Debug("diagnostics: unknown marker %d on line %d", id, i+1)
			return Location{}, false
		}

		delta := line - 1 - i
		if strings.TrimSpace(markerPattern.ReplaceAllString(lines[i], "")) == "" {
			delta--
		}
		if delta <= 0 {
			return origin, true
		}
		return Location{File: origin.File, Line: origin.Line + delta, Column: column}, true
	}
	return Location{}, false
}

// Diagnose parses text and returns its syntax errors, translated through m
// when m is not nil.
func Diagnose(ctx context.Context, fileName, text string, m *SourceMap) ([]Diagnostic, error) {
	errs, err := tsast.SyntaxErrors(ctx, fileName, text)
	if err != nil {
		return nil, fmt.Errorf("failed to diagnose %s: %w", fileName, err)
	}
	out := make([]Diagnostic, 0, len(errs))
	for _, e := range errs {
		d := Diagnostic{
			Generated: Location{File: fileName, Line: e.Line, Column: e.Column},
			Message:   e.Message,
		}
		if m != nil {
			if origin, ok := m.Resolve(text, e.Line, e.Column); ok {
				d.Origin = &origin
			}
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Generated, out[j].Generated
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out, nil
}

// Format renders one diagnostic per line as file:line:column: message.
func Format(diags []Diagnostic) string {
	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// StripMarkers removes every marker comment from text. Lines that held only
// markers are dropped.
func StripMarkers(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		if !markerPattern.MatchString(l) {
			out = append(out, l)
			continue
		}
		stripped := markerPattern.ReplaceAllString(l, "")
		if strings.TrimSpace(stripped) == "" {
			continue
		}
		out = append(out, stripped)
	}
	return strings.Join(out, "\n")
}
