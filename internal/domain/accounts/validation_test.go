package accounts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ada@Example.COM", "ada@example.com"},
		{"  ada@example.com  ", "ada@example.com"},
		{"Ada.L@example.com", "Ada.L@example.com"}, // local part preserved
	}
	for _, tc := range cases {
		got, err := normalizeEmail(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestNormalizeEmailRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not-an-email", "a b@example.com", "Display Name <ada@example.com>"} {
		_, err := normalizeEmail(in)
		var vErr ValidationError
		require.ErrorAs(t, err, &vErr, in)
		require.Equal(t, "email", vErr.Field)
	}
}

func TestLoginInputValidate(t *testing.T) {
	email, password, err := LoginInput{Email: " ada@Example.com ", Password: "pw"}.validate()
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", email)
	require.Equal(t, "pw", password)

	_, _, err = LoginInput{Email: "ada@example.com"}.validate()
	var vErr ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "password", vErr.Field)
}
