package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken("secret")
	require.NoError(t, err)

	userID, err := GetUserID("secret", token)
	require.NoError(t, err)
	assert.Len(t, userID, 36)
}

func TestGetUserID(t *testing.T) {
	valid, err := BuildJWTString("secret", "user-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	expired, err := BuildJWTString("secret", "user-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	anonymous, err := BuildJWTString("secret", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  string
		token   string
		want    string
		wantErr bool
	}{
		{name: "valid", secret: "secret", token: valid, want: "user-1"},
		{name: "wrong secret", secret: "other", token: valid, wantErr: true},
		{name: "expired", secret: "secret", token: expired, wantErr: true},
		{name: "no user", secret: "secret", token: anonymous, wantErr: true},
		{name: "garbage", secret: "secret", token: "not.a.token", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetUserID(tt.secret, tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
