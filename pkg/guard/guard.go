// Package guard blocks outbound calls while a sandbox account is signed in.
package guard

import "github.com/samvad-hq/samvad-request/pkg/credential"

// DefaultSandboxToken is the literal token of the test account.
const DefaultSandboxToken = "test"

// Warning is shown to the user when a call is blocked.
const Warning = "当前为测试环境，请注意辨别"

// Guard reports whether the current account is the sandbox account.
type Guard struct {
	source   credential.Source
	sentinel string
}

// New returns a guard comparing the token from source against sentinel.
// An empty sentinel disables the guard.
func New(source credential.Source, sentinel string) *Guard {
	return &Guard{source: source, sentinel: sentinel}
}

// IsBlocked evaluates the guard against the current token.
func (g *Guard) IsBlocked() bool {
	if g == nil || g.source == nil || g.sentinel == "" {
		return false
	}
	return g.source.Token() == g.sentinel
}
