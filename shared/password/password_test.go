package password_test

import (
	"strings"
	"testing"

	"natours/shared/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name        string
		password    string
		expectedErr error
	}{
		{name: "valid password", password: "validPassword123"},
		{name: "special characters", password: "P@ssw0rd!#$%^&*()"},
		{name: "empty password", password: "", expectedErr: password.ErrEmptyPassword},
		{name: "longer than 72 bytes", password: strings.Repeat("a", 100), expectedErr: password.ErrHashingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.password)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, hash)

				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$2a$12$"), hash)
			assert.NoError(t, password.Verify(tt.password, hash))
		})
	}
}

func TestVerify(t *testing.T) {
	valid, err := password.Hash("test1234")
	require.NoError(t, err)

	tests := []struct {
		name        string
		password    string
		hash        string
		expectedErr error
	}{
		{name: "match", password: "test1234", hash: valid},
		{name: "wrong password", password: "wrong", hash: valid, expectedErr: password.ErrInvalidPassword},
		{name: "empty password", password: "", hash: valid, expectedErr: password.ErrInvalidPassword},
		{name: "empty hash", password: "test1234", hash: "", expectedErr: password.ErrInvalidPassword},
		{name: "malformed hash", password: "test1234", hash: "invalid_hash", expectedErr: password.ErrVerifyingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	a, err := password.Hash("same-password")
	require.NoError(t, err)

	b, err := password.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
