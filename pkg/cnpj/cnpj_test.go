package cnpj_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loyalty-backend/pkg/cnpj"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12.345.678/0001-95", "12345678000195"},
		{"12345678000195", "12345678000195"},
		{"123.456.789-09", "12345678909"},
		{" 12 345 678 0001 95 ", "12345678000195"},
	}
	for _, c := range cases {
		got, err := cnpj.Normalize(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got)
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, in := range []string{"", "1234", "123456789012345", "abc"} {
		_, err := cnpj.Normalize(in)
		assert.ErrorIs(t, err, cnpj.ErrInvalid, in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.345.678/0001-95", cnpj.Format("12345678000195"))
	assert.Equal(t, "123.456.789-09", cnpj.Format("12345678909"))
	assert.Equal(t, "1234", cnpj.Format("1234"))
}
