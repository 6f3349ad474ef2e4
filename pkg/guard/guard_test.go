package guard

import (
	"testing"

	"github.com/samvad-hq/samvad-request/pkg/credential"
)

func TestIsBlocked(t *testing.T) {
	cases := []struct {
		name     string
		token    string
		sentinel string
		want     bool
	}{
		{name: "sandbox token", token: "test", sentinel: DefaultSandboxToken, want: true},
		{name: "regular token", token: "abc", sentinel: DefaultSandboxToken, want: false},
		{name: "empty token", token: "", sentinel: DefaultSandboxToken, want: false},
		{name: "prefix only", token: "test-1", sentinel: DefaultSandboxToken, want: false},
		{name: "guard disabled", token: "test", sentinel: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := tc.token
			g := New(credential.SourceFunc(func() string { return token }), tc.sentinel)
			if got := g.IsBlocked(); got != tc.want {
				t.Fatalf("IsBlocked() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNilGuardNeverBlocks(t *testing.T) {
	var g *Guard
	if g.IsBlocked() {
		t.Fatalf("nil guard must not block")
	}
}
