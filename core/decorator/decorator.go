// Package decorator edits decorator invocations such as
// @Entity({ tableName: "users" }) through a fluent, copy-on-write API.
package decorator

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

var ErrArgumentIndex = errors.New("decorator argument index out of range")

// Decorator holds the current node of one decorator. Every mutator replaces
// the node with an updated copy and returns the same Decorator.
type Decorator struct {
	node *tsast.Decorator
	err  error
}

// Pair is one key/value assignment for SetPropertiesOrdered.
type Pair struct {
	Key   string
	Value any
}

// New starts a decorator call with no arguments, printed as @name().
func New(name string) *Decorator {
	return &Decorator{node: tsast.NewDecorator(tsast.NewCallExpression(tsast.NewIdentifier(name), nil))}
}

// Adopt wraps an existing decorator node without changing it.
func Adopt(node *tsast.Decorator) *Decorator {
	return &Decorator{node: node}
}

func (d *Decorator) Name() string {
	return d.node.Name()
}

// Get returns the current node.
func (d *Decorator) Get() *tsast.Decorator {
	return d.node
}

// Err returns the first value conversion failure seen by a mutator. Mutators
// whose value could not be converted leave the decorator unchanged.
func (d *Decorator) Err() error {
	return d.err
}

// Arguments returns a copy of the positional arguments.
func (d *Decorator) Arguments() []tsast.Expression {
	call, ok := d.node.Expression.(*tsast.CallExpression)
	if !ok {
		return nil
	}
	out := make([]tsast.Expression, len(call.Arguments))
	copy(out, call.Arguments)
	return out
}

func (d *Decorator) setArguments(args []tsast.Expression) {
	switch x := d.node.Expression.(type) {
	case *tsast.CallExpression:
		d.node = tsast.UpdateDecorator(d.node, tsast.UpdateCallExpression(x, x.Callee, x.TypeArguments, args))
	default:
		// @Name without parentheses becomes a call once it gets arguments.
		d.node = tsast.UpdateDecorator(d.node, tsast.NewCallExpression(x, args))
	}
}

func (d *Decorator) value(v any) (tsast.Expression, bool) {
	expr, err := tsast.ValueOf(v)
	if err != nil {
		if d.err == nil {
			d.err = fmt.Errorf("decorator %s: %w", d.Name(), err)
		}
		return nil, false
	}
	return expr, true
}

func (d *Decorator) AddArgument(v any) *Decorator {
	expr, ok := d.value(v)
	if !ok {
		return d
	}
	d.setArguments(append(d.Arguments(), expr))
	return d
}

// UpdateArgument replaces the argument at index i.
func (d *Decorator) UpdateArgument(i int, v any) error {
	args := d.Arguments()
	if i < 0 || i >= len(args) {
		return fmt.Errorf("failed to update argument of @%s: %w: %d of %d", d.Name(), ErrArgumentIndex, i, len(args))
	}
	expr, err := tsast.ValueOf(v)
	if err != nil {
		return fmt.Errorf("failed to update argument %d of @%s: %w", i, d.Name(), err)
	}
	args[i] = expr
	d.setArguments(args)
	return nil
}

// RemoveArgument deletes the argument at index i; later arguments shift down.
func (d *Decorator) RemoveArgument(i int) error {
	args := d.Arguments()
	if i < 0 || i >= len(args) {
		return fmt.Errorf("failed to remove argument of @%s: %w: %d of %d", d.Name(), ErrArgumentIndex, i, len(args))
	}
	d.setArguments(append(args[:i], args[i+1:]...))
	return nil
}

// record returns the first argument when it is an object literal, creating an
// empty one when there are no arguments.
func (d *Decorator) record() (*tsast.ObjectLiteral, bool) {
	args := d.Arguments()
	if len(args) == 0 {
		obj := tsast.NewObjectLiteral(nil)
		d.setArguments([]tsast.Expression{obj})
		return obj, true
	}
	obj, ok := args[0].(*tsast.ObjectLiteral)
	if !ok {
		logger.Debug("@%s: first argument is %s, not an object", d.Name(), args[0].Kind())
	}
	return obj, ok
}

func (d *Decorator) setRecord(obj *tsast.ObjectLiteral) {
	args := d.Arguments()
	args[0] = obj
	d.setArguments(args)
}

// SetProperty sets key in the first argument's object literal. An existing
// key keeps its position; a new key is appended.
func (d *Decorator) SetProperty(key string, v any) *Decorator {
	expr, ok := d.value(v)
	if !ok {
		return d
	}
	obj, ok := d.record()
	if !ok {
		return d
	}
	props := make([]*tsast.PropertyAssignment, 0, len(obj.Properties)+1)
	replaced := false
	for _, p := range obj.Properties {
		if p.Name == key {
			props = append(props, &tsast.PropertyAssignment{Name: p.Name, Quoted: p.Quoted, Initializer: expr})
			replaced = true
			continue
		}
		props = append(props, p)
	}
	if !replaced {
		props = append(props, tsast.NewPropertyAssignment(key, expr))
	}
	d.setRecord(tsast.UpdateObjectLiteral(obj, props))
	return d
}

func (d *Decorator) RemoveProperty(key string) *Decorator {
	args := d.Arguments()
	if len(args) == 0 {
		return d
	}
	obj, ok := args[0].(*tsast.ObjectLiteral)
	if !ok {
		return d
	}
	props := make([]*tsast.PropertyAssignment, 0, len(obj.Properties))
	for _, p := range obj.Properties {
		if p.Name != key {
			props = append(props, p)
		}
	}
	d.setRecord(tsast.UpdateObjectLiteral(obj, props))
	return d
}

// SetProperties calls SetProperty for every entry, in sorted key order.
func (d *Decorator) SetProperties(values map[string]any) *Decorator {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.SetProperty(k, values[k])
	}
	return d
}

func (d *Decorator) SetPropertiesOrdered(pairs ...Pair) *Decorator {
	for _, p := range pairs {
		d.SetProperty(p.Key, p.Value)
	}
	return d
}

// Property returns the expression stored under key in the first argument.
func (d *Decorator) Property(key string) (tsast.Expression, bool) {
	args := d.Arguments()
	if len(args) == 0 {
		return nil, false
	}
	obj, ok := args[0].(*tsast.ObjectLiteral)
	if !ok {
		return nil, false
	}
	return obj.Property(key)
}

// ArgumentObject decodes the first argument of d into T. It reports false
// when there is no first argument, it is not an object literal, or it holds
// values that are not plain literals.
func ArgumentObject[T any](d *Decorator) (T, bool) {
	var out T
	args := d.Arguments()
	if len(args) == 0 {
		return out, false
	}
	obj, ok := args[0].(*tsast.ObjectLiteral)
	if !ok {
		return out, false
	}
	v, ok := tsast.GoValue(obj)
	if !ok {
		return out, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Debug("@%s: cannot decode argument into %T: %v", d.Name(), out, err)
		return out, false
	}
	return out, true
}
