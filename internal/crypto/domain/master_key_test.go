package domain

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMasterKeyChain(t *testing.T) {
	tests := []struct {
		name     string
		activeID string
		keys     []*MasterKey
		wantErr  error
	}{
		{
			name:     "valid 256-bit key",
			activeID: "dev-master",
			keys:     []*MasterKey{{ID: "dev-master", Key: make([]byte, 32)}},
		},
		{
			name:     "valid 128-bit and 192-bit keys",
			activeID: "new",
			keys: []*MasterKey{
				{ID: "new", Key: make([]byte, 16)},
				{ID: "old", Key: make([]byte, 24)},
			},
		},
		{
			name:     "invalid key length",
			activeID: "dev-master",
			keys:     []*MasterKey{{ID: "dev-master", Key: make([]byte, 20)}},
			wantErr:  ErrInvalidKeySize,
		},
		{
			name:     "empty key id",
			activeID: "dev-master",
			keys:     []*MasterKey{{ID: "", Key: make([]byte, 32)}},
			wantErr:  ErrInvalidMasterKeysFormat,
		},
		{
			name:     "duplicate key id",
			activeID: "a",
			keys: []*MasterKey{
				{ID: "a", Key: make([]byte, 32)},
				{ID: "a", Key: make([]byte, 32)},
			},
			wantErr: ErrInvalidMasterKeysFormat,
		},
		{
			name:     "active key missing",
			activeID: "missing",
			keys:     []*MasterKey{{ID: "dev-master", Key: make([]byte, 32)}},
			wantErr:  ErrActiveMasterKeyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mkc, err := NewMasterKeyChain(tt.activeID, tt.keys)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, mkc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.activeID, mkc.ActiveMasterKeyID())
			assert.Equal(t, tt.activeID, mkc.Active().ID)
		})
	}
}

func TestMasterKeyChain_UnwrapOrder(t *testing.T) {
	mkc, err := NewMasterKeyChain("current", []*MasterKey{
		{ID: "older", Key: make([]byte, 32)},
		{ID: "current", Key: make([]byte, 32)},
		{ID: "oldest", Key: make([]byte, 32)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"current", "older", "oldest"}, mkc.UnwrapOrder())
}

func TestMasterKeyChain_Get(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	mkc, err := NewMasterKeyChain("dev-master", []*MasterKey{{ID: "dev-master", Key: key}})
	require.NoError(t, err)

	t.Run("existing key", func(t *testing.T) {
		mk, found := mkc.Get("dev-master")
		require.True(t, found)
		assert.Equal(t, key, mk.Key)
	})

	t.Run("non-existing key", func(t *testing.T) {
		mk, found := mkc.Get("nope")
		assert.False(t, found)
		assert.Nil(t, mk)
	})
}

func TestMasterKeyChain_Close(t *testing.T) {
	key := bytes.Repeat([]byte{1}, 32)
	mkc, err := NewMasterKeyChain("dev-master", []*MasterKey{{ID: "dev-master", Key: key}})
	require.NoError(t, err)

	mkc.Close()

	assert.Equal(t, "", mkc.ActiveMasterKeyID())
	assert.Equal(t, make([]byte, 32), key)
	_, found := mkc.Get("dev-master")
	assert.False(t, found)
}

func TestParseMasterKeys(t *testing.T) {
	k1 := base64.StdEncoding.EncodeToString(make([]byte, 32))
	k2 := base64.StdEncoding.EncodeToString([]byte("1234567890123456"))

	t.Run("empty input", func(t *testing.T) {
		keys, err := ParseMasterKeys("  ")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("multiple keys with whitespace", func(t *testing.T) {
		keys, err := ParseMasterKeys("dev-2025:" + k1 + " , dev-2024:" + k2)
		require.NoError(t, err)
		require.Len(t, keys, 2)
		assert.Equal(t, "dev-2025", keys[0].ID)
		assert.Len(t, keys[0].Key, 32)
		assert.Equal(t, "dev-2024", keys[1].ID)
		assert.Equal(t, []byte("1234567890123456"), keys[1].Key)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := ParseMasterKeys("dev-2025" + k1)
		assert.ErrorIs(t, err, ErrInvalidMasterKeysFormat)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := ParseMasterKeys("dev-2025:" + k1 + ",bad:!!!")
		assert.ErrorIs(t, err, ErrInvalidMasterKeyBase64)
	})
}
