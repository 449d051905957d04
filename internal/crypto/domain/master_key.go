package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
)

// MasterKey is a long-lived key used only to wrap data keys.
//
// Development master keys are AES keys of 16, 24 or 32 bytes, loaded from
// configuration (optionally decrypted through a KMS keeper first).
type MasterKey struct {
	ID  string
	Key []byte
}

// ValidMasterKeySize reports whether n is an accepted AES key length.
func ValidMasterKeySize(n int) bool {
	return n == 16 || n == 24 || n == 32
}

// MasterKeyChain holds the active master key plus historical keys kept for
// unwrapping envelopes written before a rotation.
//
// Rotation workflow:
//  1. Generate a new key and make it active (KMS_KEY_ID + DEV_KMS_MASTER_KEY)
//  2. Move the previous key into DEV_KMS_PREVIOUS_KEYS
//  3. Run rewrap-envelopes so stored envelopes reference the new key id
//  4. Drop the previous key once no envelope references it
//
// Safe for concurrent reads.
type MasterKeyChain struct {
	activeID string
	order    []string
	keys     sync.Map
}

// NewMasterKeyChain builds a chain from the given keys. Key lengths are validated
// here so a bad key fails at startup rather than on first use.
func NewMasterKeyChain(activeID string, keys []*MasterKey) (*MasterKeyChain, error) {
	mkc := &MasterKeyChain{activeID: activeID}

	for _, mk := range keys {
		if mk == nil || mk.ID == "" {
			mkc.Close()
			return nil, fmt.Errorf("%w: master key id is empty", ErrInvalidMasterKeysFormat)
		}
		if !ValidMasterKeySize(len(mk.Key)) {
			mkc.Close()
			return nil, fmt.Errorf(
				"%w: master key %s must be 16, 24 or 32 bytes, got %d",
				ErrInvalidKeySize,
				mk.ID,
				len(mk.Key),
			)
		}
		if _, loaded := mkc.keys.LoadOrStore(mk.ID, mk); loaded {
			mkc.Close()
			return nil, fmt.Errorf("%w: duplicate master key id %s", ErrInvalidMasterKeysFormat, mk.ID)
		}
		mkc.order = append(mkc.order, mk.ID)
	}

	if _, ok := mkc.Get(activeID); !ok {
		mkc.Close()
		return nil, fmt.Errorf("%w: %s", ErrActiveMasterKeyNotFound, activeID)
	}

	return mkc, nil
}

// ActiveMasterKeyID returns the id of the key used for new wraps.
func (m *MasterKeyChain) ActiveMasterKeyID() string {
	return m.activeID
}

// Get retrieves a master key by id.
func (m *MasterKeyChain) Get(id string) (*MasterKey, bool) {
	if masterKey, ok := m.keys.Load(id); ok {
		return masterKey.(*MasterKey), ok
	}
	return nil, false
}

// Active returns the active master key.
func (m *MasterKeyChain) Active() *MasterKey {
	mk, _ := m.Get(m.activeID)
	return mk
}

// UnwrapOrder lists key ids with the active key first, then historical keys in
// configuration order.
func (m *MasterKeyChain) UnwrapOrder() []string {
	ids := make([]string, 0, len(m.order))
	ids = append(ids, m.activeID)
	for _, id := range m.order {
		if id != m.activeID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close zeroes all key material and empties the chain.
func (m *MasterKeyChain) Close() {
	m.keys.Range(func(_, value any) bool {
		Zero(value.(*MasterKey).Key)
		return true
	})
	m.keys.Clear()
	m.order = nil
	m.activeID = ""
}

// ParseMasterKeys parses a comma separated "id:base64key" list, e.g.
//
//	DEV_KMS_PREVIOUS_KEYS="dev-2025:YWJj...,dev-2024:MTIz..."
//
// An empty string yields no keys. Sizes are validated by NewMasterKeyChain.
func ParseMasterKeys(raw string) ([]*MasterKey, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var keys []*MasterKey
	for part := range strings.SplitSeq(raw, ",") {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 || p[0] == "" {
			for _, k := range keys {
				Zero(k.Key)
			}
			return nil, fmt.Errorf("%w: %q", ErrInvalidMasterKeysFormat, part)
		}
		key, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			for _, k := range keys {
				Zero(k.Key)
			}
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidMasterKeyBase64, p[0], err)
		}
		keys = append(keys, &MasterKey{ID: p[0], Key: key})
	}
	return keys, nil
}
