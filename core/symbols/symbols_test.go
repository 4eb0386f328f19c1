package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapitalizedGuess(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{
			name: "decorated field",
			code: "@Input() user: User;",
			want: []string{"Input", "User"},
		},
		{
			name: "first use order and dedupe",
			code: "const a: Observable<User> = of(new User()); const b: Observable<void>;",
			want: []string{"Observable", "User"},
		},
		{
			name: "strings and comments",
			code: "// Injectable\nconst s = 'Component'; /* Output */ const t = \"Router\"; const u = `Http`;",
			want: nil,
		},
		{
			name: "member access",
			code: "this.Store.dispatch(Actions.Load)",
			want: []string{"Actions"},
		},
		{
			name: "builtins",
			code: "const m: Map<string, Promise<Partial<Order>>> = new Map();",
			want: []string{"Order"},
		},
		{
			name: "inside identifiers",
			code: "const myValue = loadUser(); const $Ref = 1;",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Capitalized{}.Guess(tt.code))
		})
	}
}

func TestCapitalizedIgnore(t *testing.T) {
	g := Capitalized{Ignore: []string{"Local"}}
	assert.Equal(t, []string{"Remote"}, g.Guess("class Local extends Remote {}"))
}

func TestGuesserFunc(t *testing.T) {
	var g Guesser = GuesserFunc(func(string) []string { return []string{"b", "a"} })
	assert.Equal(t, []string{"a", "b"}, Sorted(g, ""))
}
