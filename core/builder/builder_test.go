package builder

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-scopp/ts-flattered/core/decorator"
	"github.com/max-scopp/ts-flattered/core/imports"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

const serviceSource = `import { Injectable } from "@angular/core";
/**
 * Loads users.
 */
@Injectable({ providedIn: "root" })
export class UserService {
    // cache
    @Input()
    limit: number = 10;
    private readonly cache?: Map<string, User>;
    constructor(private http: HttpClient) {
    }
    load(id: string): User {
        return this.cache.get(id);
    }
    save(user: User): void {
        this.http.post(user);
    }
}
`

func parse(t *testing.T, name, src string) *SourceFile {
	t.Helper()
	f, err := ParseSourceFile(context.Background(), name, src)
	require.NoError(t, err)
	return f
}

func printNode(t *testing.T, n tsast.Node) string {
	t.Helper()
	out, err := tsast.Print(n, tsast.PrintOptions{})
	require.NoError(t, err)
	return out
}

func TestAdoptionIsLossless(t *testing.T) {
	f := parse(t, "user.service.ts", serviceSource)
	cls, ok := f.Class("UserService")
	require.True(t, ok)
	assert.Equal(t, printNode(t, f.Get().Statements[1]), printNode(t, cls.Get()))
	assert.Same(t, f.Get().Statements[1], cls.Get())

	limit, ok := cls.Property("limit")
	require.True(t, ok)
	original := f.Get().Statements[1].(*tsast.ClassDeclaration).Members[0]
	assert.Equal(t, printNode(t, original), printNode(t, limit.Get()))

	load, ok := cls.Method("load")
	require.True(t, ok)
	assert.Equal(t, printNode(t, f.Get().Statements[1].(*tsast.ClassDeclaration).Members[3]), printNode(t, load.Get()))

	out, err := f.Print(tsast.PrintOptions{})
	require.NoError(t, err)
	assert.Equal(t, serviceSource, out)
}

func TestGetReflectsEveryMutation(t *testing.T) {
	cls := NewClass("Counter")
	first := cls.Get()
	cls.Export().Extends("Base")
	second := cls.Get()
	cls.AddProperty(NewProperty("count", "number").Initializer(0))

	assert.NotSame(t, first, second)
	assert.Empty(t, first.Modifiers)
	assert.Equal(t, "Base", second.Extends)
	assert.Empty(t, second.Members)
	require.Len(t, cls.Get().Members, 1)
	assert.Equal(t, "export class Counter extends Base {\n    count: number = 0;\n}\n", printNode(t, cls.Get()))
}

func TestBuildClass(t *testing.T) {
	ctor, err := NewConstructor(tsast.NewBlock(), ParameterProperty(tsast.ModPrivate, true, "repo", "Repo"))
	require.NoError(t, err)

	cls := NewClass("UserStore").
		ExportDefault().
		Implements("OnInit", "OnInit").
		TypeParameters("T").
		AddDecorator(decorator.New("Injectable")).
		Doc("Stores users.").
		AddProperty(NewProperty("items", "T[]").Initializer(tsast.NewRawExpression("[]")).Readonly(true).Access(tsast.ModPrivate)).
		AddMethod(NewMethod("ngOnInit").Returns("void").Body("this.load();")).
		AddMethod(NewMethod("load").Async(true).Returns("Promise<void>").AddParameter(OptionalParam("force", "boolean"))).
		AddConstructor(ctor)

	assert.Equal(t, `/** Stores users. */
@Injectable()
export default class UserStore<T> implements OnInit {
    private readonly items: T[] = [];
    constructor(private readonly repo: Repo) { }
    ngOnInit(): void {
        this.load();
    }
    async load(force?: boolean): Promise<void> { }
}
`, printNode(t, cls.Get()))
	assert.Equal(t, "Stores users.", Doc(cls.Get().Comments))
}

func TestNewConstructorRequiresBody(t *testing.T) {
	_, err := NewConstructor(nil, Param("x", "number"))
	assert.ErrorIs(t, err, ErrMissingBody)

	_, err = NewConstructor(tsast.NewBlock(), &tsast.Parameter{})
	assert.ErrorIs(t, err, tsast.ErrInvalidNode)
}

func TestModifiersKeepCanonicalOrder(t *testing.T) {
	p := NewProperty("x", "number").Readonly(true).Static(true).Access(tsast.ModProtected)
	assert.Equal(t, []tsast.Modifier{tsast.ModProtected, tsast.ModStatic, tsast.ModReadonly}, p.Get().Modifiers)

	p.Access(tsast.ModPublic).Static(false)
	assert.Equal(t, []tsast.Modifier{tsast.ModPublic, tsast.ModReadonly}, p.Get().Modifiers)

	p.Access("")
	assert.Equal(t, []tsast.Modifier{tsast.ModReadonly}, p.Get().Modifiers)
}

func TestUpdatePropertiesScansInOrder(t *testing.T) {
	f := parse(t, "m.ts", `class Model {
    a: string;
    run(): void { }
    b: string;
    c: number;
    d: string;
}
`)
	var seen []string
	ok := f.UpdateClass("Model", func(c *Class) {
		results := c.UpdateProperties(
			func(p *tsast.PropertyDeclaration) bool { return p.Type == "string" },
			func(p *Property) {
				seen = append(seen, p.Name())
				p.Optional(true)
			},
		)
		require.Len(t, results, 3)
		assert.Equal(t, "a", results[0].Name())
		assert.Equal(t, "d", results[2].Name())
	})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "d"}, seen)

	out, err := f.Print(tsast.PrintOptions{})
	require.NoError(t, err)
	assert.Equal(t, `class Model {
    a?: string;
    run(): void { }
    b?: string;
    c: number;
    d?: string;
}
`, out)
}

func TestUpdateByNameMisses(t *testing.T) {
	cls := NewClass("Empty")
	assert.False(t, cls.UpdateProperty("missing", func(*Property) {}))
	assert.False(t, cls.UpdateMethod("missing", func(*Method) {}))
	assert.False(t, cls.UpdateConstructor(func(*Constructor) {}))
	assert.False(t, cls.UpdateDecorator("Missing", func(*decorator.Decorator) {}))
	assert.False(t, cls.RemoveMember("missing"))
	_, ok := cls.Decorator("Missing")
	assert.False(t, ok)
}

func TestUpdateDecoratorInPlace(t *testing.T) {
	f := parse(t, "user.service.ts", serviceSource)
	require.True(t, f.UpdateClass("UserService", func(c *Class) {
		require.True(t, c.UpdateDecorator("Injectable", func(d *decorator.Decorator) {
			d.SetProperty("providedIn", "any")
		}))
		require.True(t, c.UpdateProperty("limit", func(p *Property) {
			p.RemoveDecorator("Input").Initializer(20)
		}))
		require.True(t, c.RemoveMember("save"))
	}))

	out, err := f.Print(tsast.PrintOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, `@Injectable({ providedIn: "any" })`)
	assert.Contains(t, out, "    limit: number = 20;\n")
	assert.NotContains(t, out, "save(")
	assert.Contains(t, out, "    // cache\n")
}

func TestDocReplacesOnlyDocBlock(t *testing.T) {
	f := parse(t, "user.service.ts", serviceSource)
	cls, _ := f.Class("UserService")
	assert.Equal(t, "Loads users.", Doc(cls.Get().Comments))

	cls.Doc("Loads users.\nCaches results.")
	assert.Equal(t, []string{"/**", " * Loads users.", " * Caches results.", " */"}, cls.Get().Comments)

	limit, _ := cls.Property("limit")
	limit.Doc("Page size.")
	assert.Equal(t, []string{"// cache", "/** Page size. */"}, limit.Get().Comments)
	limit.Doc("")
	assert.Equal(t, []string{"// cache"}, limit.Get().Comments)
}

func TestMethodAbstract(t *testing.T) {
	m := NewMethod("draw").Returns("void").Abstract(true)
	assert.Nil(t, m.Get().Body)
	assert.Equal(t, "abstract draw(): void;\n", printNode(t, m.Get()))
	m.Abstract(false)
	assert.NotNil(t, m.Get().Body)
}

func TestSourceFileStatements(t *testing.T) {
	f := NewSourceFile("a.ts", tsast.NewRawStatement("const a = 1;"))
	f.PrependStatements(tsast.NewRawStatement("// header")).AddStatements(tsast.NewRawStatement("export const b = 2;"))
	assert.Len(t, f.Statements(), 3)
	assert.Equal(t, f.Get().Statements, f.Statements())

	statements := f.Statements()
	statements[0] = nil
	assert.NotNil(t, f.Statements()[0])

	n := f.UpdateStatements(func(st tsast.Statement) bool {
		raw, ok := st.(*tsast.RawStatement)
		return ok && strings.HasPrefix(raw.Text, "//")
	}, func(tsast.Statement) tsast.Statement { return nil })
	assert.Equal(t, 1, n)
	assert.Len(t, f.Statements(), 2)
}

func TestAddOrUpdateImportMergesIntoDefault(t *testing.T) {
	f := parse(t, "app.tsx", "import React from \"react\";\nconst x = 1;\n")
	require.NoError(t, f.AddOrUpdateImport(imports.ImportOptions{ModuleSpecifier: "react", NamedImports: []string{"useCallback"}}))

	decls := f.Imports()
	require.Len(t, decls, 1)
	opts := imports.ExtractImportOptions(decls[0])
	assert.Equal(t, "react", opts.ModuleSpecifier)
	assert.Equal(t, "React", opts.DefaultImport)
	assert.Equal(t, []string{"useCallback"}, opts.NamedImports)

	require.NoError(t, f.AddOrUpdateImport(imports.ImportOptions{ModuleSpecifier: "./hooks", NamedImports: []string{"useUser"}}))
	out, err := f.Print(tsast.PrintOptions{})
	require.NoError(t, err)
	assert.Equal(t, "import React, { useCallback } from \"react\";\nimport { useUser } from \"./hooks\";\nconst x = 1;\n", out)

	err = f.AddOrUpdateImport(imports.ImportOptions{NamedImports: []string{"x"}})
	assert.ErrorIs(t, err, imports.ErrMissingModuleSpecifier)
}

func TestRemoveImports(t *testing.T) {
	f := parse(t, "a.ts", "import { a, b } from \"./ab\";\nimport \"./side\";\nimport { c } from \"./c\";\n")
	assert.True(t, f.RemoveNamedImport("./ab", "a"))
	assert.True(t, f.RemoveNamedImport("./c", "c"))
	assert.False(t, f.RemoveNamedImport("./ab", "zzz"))
	assert.True(t, f.RemoveImport("./side"))
	assert.False(t, f.RemoveImport("./side"))

	out, err := f.Print(tsast.PrintOptions{})
	require.NoError(t, err)
	assert.Equal(t, "import { b } from \"./ab\";\n", out)

	assert.Equal(t, 1, f.ReplaceImport("./ab", "../ab"))
	_, ok := f.Import("../ab")
	assert.True(t, ok)
}

func TestRewriteImportsIsAllOrNothing(t *testing.T) {
	f := parse(t, "a.ts", "import { a } from \"./a\";\nimport { b } from \"./b\";\n")
	before := f.Get()
	_, err := f.RewriteImports(func(spec string) (string, error) {
		if spec == "./b" {
			return "", assert.AnError
		}
		return "../" + spec, nil
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Same(t, before, f.Get())

	n, err := f.RewriteImports(func(spec string) (string, error) { return spec + "/index", nil })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "./a/index", f.Imports()[0].ModuleSpecifier)
}

func TestExportedNames(t *testing.T) {
	f := parse(t, "x.ts", "export class A {\n}\nclass B {\n}\nexport const c = 1, d = 2;\nexport function e() {}\nexport default class {\n}\n")
	assert.Equal(t, []string{"A", "c", "d", "e", "default"}, f.ExportedNames())
}
