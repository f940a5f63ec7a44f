package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompare(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "regular password", password: "password123"},
		{name: "password with special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "short password", password: "sai25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := GetHash(tt.password)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)

			assert.NoError(t, CompareHash(hash, tt.password))
			assert.Error(t, CompareHash(hash, tt.password+"x"))
		})
	}
}

func TestSecret_Matches(t *testing.T) {
	secret := MustSecret("sai25")

	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{name: "exact match", candidate: "sai25", want: true},
		{name: "wrong case", candidate: "SAI25", want: false},
		{name: "surrounding spaces", candidate: " sai25 ", want: false},
		{name: "prefix", candidate: "sai2", want: false},
		{name: "empty", candidate: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, secret.Matches(tt.candidate))
		})
	}
}

func TestNewSecret_Empty(t *testing.T) {
	_, err := NewSecret("")
	assert.Error(t, err)
}
