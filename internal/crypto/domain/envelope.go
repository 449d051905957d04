package domain

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Envelope is the unit of storage for one encrypted field.
//
// The plaintext is encrypted with AES-256-GCM under a data key generated for this
// envelope only. The data key is persisted solely in wrapped form, encrypted under
// the keyring master key named by KeyID. An envelope decrypts only under the exact
// context string supplied at encryption time.
//
// Fields:
//   - Ciphertext: AES-GCM output without the tag
//   - Nonce: 12-byte nonce, fresh per encryption
//   - Tag: 16-byte authentication tag
//   - WrappedDataKey: the 32-byte data key wrapped by the keyring
//   - KeyID: identifier of the master key that wrapped the data key
//   - KeyVersion: envelope layout version (CurrentKeyVersion for new envelopes)
type Envelope struct {
	Ciphertext     []byte
	Nonce          []byte
	Tag            []byte
	WrappedDataKey []byte
	KeyID          string
	KeyVersion     int
}

// Validate checks that every component is present and sized correctly. It does not
// authenticate anything; that happens on decryption.
func (e *Envelope) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: envelope is nil", ErrInvalidEnvelope)
	}
	if len(e.Nonce) != NonceSize {
		return fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrInvalidEnvelope, NonceSize, len(e.Nonce))
	}
	if len(e.Tag) != TagSize {
		return fmt.Errorf("%w: tag must be %d bytes, got %d", ErrInvalidEnvelope, TagSize, len(e.Tag))
	}
	if len(e.WrappedDataKey) == 0 {
		return fmt.Errorf("%w: wrapped data key is empty", ErrInvalidEnvelope)
	}
	if e.KeyID == "" {
		return fmt.Errorf("%w: key id is empty", ErrInvalidEnvelope)
	}
	if e.KeyVersion != CurrentKeyVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedKeyVersion, e.KeyVersion)
	}
	return nil
}

// Encode returns the base64 transport form of the envelope. The result carries
// only what is already persisted; no key material is ever unwrapped for it.
func (e *Envelope) Encode() EncodedEnvelope {
	return EncodedEnvelope{
		Ciphertext:     base64.StdEncoding.EncodeToString(e.Ciphertext),
		Nonce:          base64.StdEncoding.EncodeToString(e.Nonce),
		Tag:            base64.StdEncoding.EncodeToString(e.Tag),
		WrappedDataKey: base64.StdEncoding.EncodeToString(e.WrappedDataKey),
		KeyID:          e.KeyID,
		KeyVersion:     e.KeyVersion,
	}
}

// EncodedEnvelope is an Envelope with binary components in standard base64, used
// for diagnostic views and JSON transport.
type EncodedEnvelope struct {
	Ciphertext     string `json:"ciphertext"`
	Nonce          string `json:"nonce"`
	Tag            string `json:"tag"`
	WrappedDataKey string `json:"wrapped_dk"`
	KeyID          string `json:"kid"`
	KeyVersion     int    `json:"kver"`
}

// Decode parses the base64 components back into an Envelope and validates it.
func (e EncodedEnvelope) Decode() (*Envelope, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"ciphertext", e.Ciphertext},
		{"nonce", e.Nonce},
		{"tag", e.Tag},
		{"wrapped_dk", e.WrappedDataKey},
	}

	decoded := make([][]byte, len(fields))
	for i, f := range fields {
		b, err := base64.StdEncoding.DecodeString(f.value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not valid base64", ErrInvalidEnvelope, f.name)
		}
		decoded[i] = b
	}

	envelope := &Envelope{
		Ciphertext:     decoded[0],
		Nonce:          decoded[1],
		Tag:            decoded[2],
		WrappedDataKey: decoded[3],
		KeyID:          e.KeyID,
		KeyVersion:     e.KeyVersion,
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	return envelope, nil
}

// BuildContext returns the associated data binding an envelope to its location:
// "<entity>:<field>|<key_id>|<key_version>". Both writer and reader must derive it
// from the same entity identity and field name.
func BuildContext(entity, field, keyID string, keyVersion int) string {
	var b strings.Builder
	b.Grow(len(entity) + len(field) + len(keyID) + 8)
	b.WriteString(entity)
	b.WriteByte(':')
	b.WriteString(field)
	b.WriteByte('|')
	b.WriteString(keyID)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(keyVersion))
	return b.String()
}
