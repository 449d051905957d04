package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

func TestContext(t *testing.T) {
	assert.Equal(t, "patients:patient_data|dev-master|1", Context(FieldPatientData, "dev-master", 1))
	assert.Equal(t, "patients:name|dev-2026|1", EnvelopeContext(FieldName, &cryptoDomain.Envelope{
		KeyID:      "dev-2026",
		KeyVersion: 1,
	}))
}

func TestPatient_Envelope(t *testing.T) {
	p := &Patient{}
	assert.False(t, p.Encrypted())

	name := &cryptoDomain.Envelope{KeyID: "dev-master"}
	data := &cryptoDomain.Envelope{KeyID: "dev-2026"}
	p.SetEnvelope(FieldName, name)
	p.SetEnvelope(FieldPatientData, data)
	p.SetEnvelope("ssn", &cryptoDomain.Envelope{})

	assert.True(t, p.Encrypted())
	assert.Same(t, name, p.Envelope(FieldName))
	assert.Same(t, data, p.Envelope(FieldPatientData))
	assert.Nil(t, p.Envelope("ssn"))
}

func TestPatient_HasLegacyPlaintext(t *testing.T) {
	name := "Alice"

	assert.False(t, (&Patient{}).HasLegacyPlaintext())
	assert.True(t, (&Patient{LegacyName: &name}).HasLegacyPlaintext())
	assert.True(t, (&Patient{LegacyPatientData: []byte(`{}`)}).HasLegacyPlaintext())
}

func TestValidField(t *testing.T) {
	for _, f := range Fields() {
		assert.True(t, ValidField(f))
	}
	assert.False(t, ValidField("ssn"))
	assert.False(t, ValidField(""))
}

func TestMarshalData(t *testing.T) {
	t.Run("Success_RoundTrip", func(t *testing.T) {
		b, err := MarshalData(map[string]any{"age": 42, "risk": "high"})
		assert.NoError(t, err)
		assert.JSONEq(t, `{"age":42,"risk":"high"}`, string(b))

		data, err := UnmarshalData(b)
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{"age": float64(42), "risk": "high"}, data)
	})

	t.Run("Success_NilEncodesEmptyObject", func(t *testing.T) {
		b, err := MarshalData(nil)
		assert.NoError(t, err)
		assert.Equal(t, "{}", string(b))
	})

	t.Run("Success_NullDecodesEmptyObject", func(t *testing.T) {
		data, err := UnmarshalData([]byte("null"))
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{}, data)
	})

	t.Run("Error_NotAnObject", func(t *testing.T) {
		_, err := UnmarshalData([]byte(`["a"]`))
		assert.ErrorIs(t, err, ErrInvalidPatientData)
	})

	t.Run("Error_Unsupported", func(t *testing.T) {
		_, err := MarshalData(map[string]any{"f": func() {}})
		assert.ErrorIs(t, err, ErrInvalidPatientData)
	})
}
