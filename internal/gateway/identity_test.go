package gateway_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filegate/internal/gateway"
)

func TestIdentityResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields []string
		claims gateway.Claims
		want   gateway.Identity
		ok     bool
	}{
		{name: "subject", claims: gateway.Claims{"sub": "alice"}, want: "alice", ok: true},
		{name: "subject wins over username", claims: gateway.Claims{"sub": "u-1", "username": "alice"}, want: "u-1", ok: true},
		{name: "cognito username fallback", claims: gateway.Claims{"cognito:username": "bob"}, want: "bob", ok: true},
		{name: "empty subject falls through", claims: gateway.Claims{"sub": "", "username": "carol"}, want: "carol", ok: true},
		{name: "separator in subject denies", claims: gateway.Claims{"sub": "a/b", "username": "dave"}},
		{name: "backslash in subject denies", claims: gateway.Claims{"sub": `a\b`, "username": "dave"}},
		{name: "padded subject denies", claims: gateway.Claims{"sub": " dave ", "username": "dave"}},
		{name: "whitespace subject denies", claims: gateway.Claims{"sub": "  ", "username": "carol"}},
		{name: "dot segment denies", claims: gateway.Claims{"sub": ".."}},
		{name: "value kept verbatim", claims: gateway.Claims{"sub": "Dave Smith"}, want: "Dave Smith", ok: true},
		{name: "no claims"},
		{name: "unrelated claims", claims: gateway.Claims{"email": "x@example.com"}},
		{name: "custom fields", fields: []string{"tenant"}, claims: gateway.Claims{"sub": "alice", "tenant": "acme"}, want: "acme", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := gateway.NewIdentityResolver(tt.fields...).Resolve(tt.claims)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
