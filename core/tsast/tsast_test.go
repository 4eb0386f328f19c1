package tsast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSource = `import { Base } from "../types/common";
import type { Repo } from './repo';
@Entity({ tableName: "users" })
export class User extends Base implements Named {
    @Column()
    name: string;
    age?: number = 0;
    constructor(private readonly id: string) {
        super();
    }
    greet(greeting: string): string {
        return greeting;
    }
}
export function helper() {}
`

func mustParse(t *testing.T, name, src string) *SourceFile {
	t.Helper()
	f, err := Parse(context.Background(), name, src)
	require.NoError(t, err)
	return f
}

func TestParseImports(t *testing.T) {
	f := mustParse(t, "src/a.ts", `import React, { useState as useS, type FC } from "react";
import * as path from "path";
import "./side-effect";
`)
	require.Len(t, f.Statements, 3)

	react, ok := f.Statements[0].(*ImportDeclaration)
	require.True(t, ok)
	assert.Equal(t, "react", react.ModuleSpecifier)
	require.NotNil(t, react.Clause)
	assert.Equal(t, "React", react.Clause.Default)
	require.Len(t, react.Clause.Named, 2)
	assert.Equal(t, ImportSpecifier{Name: "useState", Alias: "useS"}, react.Clause.Named[0])
	assert.Equal(t, ImportSpecifier{Name: "FC", TypeOnly: true}, react.Clause.Named[1])

	ns, ok := f.Statements[1].(*ImportDeclaration)
	require.True(t, ok)
	assert.Equal(t, "path", ns.Clause.Namespace)

	side, ok := f.Statements[2].(*ImportDeclaration)
	require.True(t, ok)
	assert.Nil(t, side.Clause)
	assert.Equal(t, "./side-effect", side.ModuleSpecifier)
}

func TestParseClass(t *testing.T) {
	f := mustParse(t, "src/user.ts", userSource)
	require.Len(t, f.Statements, 4)

	typeImport := f.Statements[1].(*ImportDeclaration)
	assert.True(t, typeImport.TypeOnly)
	assert.Equal(t, byte('\''), typeImport.Quote)

	cls, ok := f.Statements[2].(*ClassDeclaration)
	require.True(t, ok, "expected a class, got %T", f.Statements[2])
	assert.Equal(t, "User", cls.Name)
	assert.Equal(t, "Base", cls.Extends)
	assert.Equal(t, []string{"Named"}, cls.Implements)
	assert.Equal(t, []Modifier{ModExport}, cls.Modifiers)
	require.Len(t, cls.Decorators, 1)
	assert.Equal(t, "Entity", cls.Decorators[0].Name())

	require.Len(t, cls.Members, 4)
	name := cls.Members[0].(*PropertyDeclaration)
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, "string", name.Type)
	require.Len(t, name.Decorators, 1)
	assert.Equal(t, "Column", name.Decorators[0].Name())

	age := cls.Members[1].(*PropertyDeclaration)
	assert.True(t, age.Optional)
	assert.Equal(t, &NumericLiteral{Text: "0"}, age.Initializer)

	ctor := cls.Members[2].(*ConstructorDeclaration)
	require.Len(t, ctor.Parameters, 1)
	assert.Equal(t, "id", ctor.Parameters[0].Name)
	assert.Equal(t, []Modifier{ModPrivate, ModReadonly}, ctor.Parameters[0].Modifiers)

	greet := cls.Members[3].(*MethodDeclaration)
	assert.Equal(t, "greet", greet.Name)
	assert.Equal(t, "string", greet.ReturnType)
	require.NotNil(t, greet.Body)

	raw, ok := f.Statements[3].(*RawStatement)
	require.True(t, ok)
	assert.Equal(t, []string{"helper"}, raw.Exports)
}

func TestParsePrintRoundTrip(t *testing.T) {
	f := mustParse(t, "src/user.ts", userSource)
	out, err := Print(f, PrintOptions{})
	require.NoError(t, err)
	assert.Equal(t, userSource, out)
}

func TestParseKeepsLeadingComments(t *testing.T) {
	src := "/** The user. */\nexport class User {\n}\n"
	f := mustParse(t, "u.ts", src)
	cls := f.Statements[0].(*ClassDeclaration)
	assert.Equal(t, []string{"/** The user. */"}, cls.Comments)

	out, err := Print(f, PrintOptions{})
	require.NoError(t, err)
	assert.Equal(t, src, out)

	stripped, err := Print(f, PrintOptions{RemoveComments: true})
	require.NoError(t, err)
	assert.Equal(t, "export class User {\n}\n", stripped)
}

func TestParseKeepsImportComments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"trailing", "import { A } from \"./a\"; // note\n", "import { A } from \"./a\"; // note\n"},
		{"without semicolon", "import {A} from \"../types/a\" // trailing\n", "import { A } from \"../types/a\"; // trailing\n"},
		{"inside braces", "import { /* c */ A } from \"./a\";\n", "import { /* c */ A } from \"./a\";\n"},
		{"before clause", "import /* c */ A from \"./a\";\n", "import /* c */ A from \"./a\";\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Print(mustParse(t, "a.ts", tt.src), PrintOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	stripped, err := Print(mustParse(t, "a.ts", "import { A } from \"./a\"; // note\n"), PrintOptions{RemoveComments: true})
	require.NoError(t, err)
	assert.Equal(t, "import { A } from \"./a\";\n", stripped)
}

func TestParseImportAttributes(t *testing.T) {
	src := "import data from \"./config.json\" with { type: \"json\" };\n"
	f := mustParse(t, "a.ts", src)
	decl, ok := f.Statements[0].(*ImportDeclaration)
	require.True(t, ok, "expected an import, got %T", f.Statements[0])
	assert.Equal(t, "./config.json", decl.ModuleSpecifier)
	assert.Equal(t, `with { type: "json" }`, decl.Attributes)

	moved := UpdateImportDeclaration(decl, decl.Comments, decl.TypeOnly, decl.Clause, "../config.json")
	out, err := Print(moved, PrintOptions{})
	require.NoError(t, err)
	assert.Equal(t, "import data from \"../config.json\" with { type: \"json\" };\n", out)
}

func TestRawStatementReferences(t *testing.T) {
	f := mustParse(t, "src/index.ts", `export { B } from "../types/b";
export * from './x';
import fs = require("../lib/fs");
`)
	require.Len(t, f.Statements, 3)

	var got []string
	for _, st := range f.Statements {
		raw, ok := st.(*RawStatement)
		require.True(t, ok, "expected a raw statement, got %T", st)
		require.Len(t, raw.References, 1)
		ref := raw.References[0]
		got = append(got, ref.Specifier)
		assert.Equal(t, quote(ref.Specifier, raw.Text[ref.Start]), raw.Text[ref.Start:ref.End])
	}
	assert.Equal(t, []string{"../types/b", "./x", "../lib/fs"}, got)

	star := f.Statements[1].(*RawStatement)
	assert.Same(t, star, RetargetRawStatement(star, []string{"./x"}))
	assert.Same(t, star, RetargetRawStatement(star, nil))

	moved := RetargetRawStatement(star, []string{"../../x"})
	assert.Equal(t, "export * from '../../x';", moved.Text)
	assert.Equal(t, "../../x", moved.References[0].Specifier)
	assert.Equal(t, "'../../x'", moved.Text[moved.References[0].Start:moved.References[0].End])
	assert.Equal(t, "export * from './x';", star.Text)
}

func TestPrintBuiltNodes(t *testing.T) {
	decl := NewImportDeclaration(false, NewImportClause("React", "", []ImportSpecifier{{Name: "useCallback"}}), "react")
	prop := UpdatePropertyDeclaration(nil, nil, nil, []Modifier{ModPrivate}, "count", false, false, "number", NewNumericLiteral("1"))
	method := NewMethodDeclaration("run", []*Parameter{NewParameter("n", "number")}, "void", NewBlock("this.count += n;"))
	cls := UpdateClassDeclaration(nil, nil,
		[]*Decorator{NewDecorator(NewCallExpression(NewIdentifier("Injectable"), nil))},
		[]Modifier{ModExport}, "Counter", "", "", nil,
		[]ClassElement{prop, method})
	file := NewSourceFile("counter.ts", []Statement{decl, cls})

	out, err := Print(file, PrintOptions{})
	require.NoError(t, err)
	assert.Equal(t, `import React, { useCallback } from "react";
@Injectable()
export class Counter {
    private count: number = 1;
    run(n: number): void {
        this.count += n;
    }
}
`, out)
}

func TestPrintRejectsInvalidNodes(t *testing.T) {
	_, err := Print(&ImportDeclaration{}, PrintOptions{})
	assert.ErrorIs(t, err, ErrInvalidNode)

	_, err = Print(NewSourceFile("x.ts", []Statement{&ClassDeclaration{}}), PrintOptions{})
	assert.ErrorIs(t, err, ErrInvalidNode)

	_, err = Print(NewSourceFile("x.ts", []Statement{nil}), PrintOptions{})
	assert.ErrorIs(t, err, ErrInvalidNode)
}

func TestUpdateIsPersistent(t *testing.T) {
	orig := NewPropertyDeclaration("name", "string", nil)

	same := UpdatePropertyDeclaration(orig, orig.Comments, orig.Decorators, orig.Modifiers, orig.Name, orig.Optional, orig.Definite, orig.Type, orig.Initializer)
	assert.Same(t, orig, same)

	changed := UpdatePropertyDeclaration(orig, orig.Comments, orig.Decorators, orig.Modifiers, orig.Name, true, orig.Definite, "number", orig.Initializer)
	assert.NotSame(t, orig, changed)
	assert.Equal(t, "string", orig.Type)
	assert.False(t, orig.Optional)
	assert.Equal(t, "number", changed.Type)
}

func TestUpdateCopiesSlices(t *testing.T) {
	members := []ClassElement{NewPropertyDeclaration("a", "", nil)}
	cls := UpdateClassDeclaration(nil, nil, nil, nil, "C", "", "", nil, members)
	members[0] = NewPropertyDeclaration("b", "", nil)
	assert.Equal(t, "a", cls.Members[0].(*PropertyDeclaration).Name)
}

func TestValueOfAndGoValue(t *testing.T) {
	expr, err := ValueOf(map[string]any{"b": []any{1, "x"}, "a": true, "c": nil})
	require.NoError(t, err)
	text, err := PrintExpression(expr)
	require.NoError(t, err)
	assert.Equal(t, `{ a: true, b: [1, "x"], c: null }`, text)

	v, ok := GoValue(expr)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": true, "b": []any{float64(1), "x"}, "c": nil}, v)

	_, err = ValueOf(struct{}{})
	assert.ErrorIs(t, err, ErrInvalidNode)
}

func TestStringEscaping(t *testing.T) {
	text, err := PrintExpression(NewStringLiteral(`say "hi"\n`))
	require.NoError(t, err)
	assert.Equal(t, `"say \"hi\"\\n"`, text)
}

func TestSyntaxErrors(t *testing.T) {
	errs, err := SyntaxErrors(context.Background(), "bad.ts", "const x = ;\n")
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.Equal(t, 1, errs[0].Line)

	errs, err = SyntaxErrors(context.Background(), "ok.ts", "const x = 1;\n")
	require.NoError(t, err)
	assert.Empty(t, errs)
}
