package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine matches a sample by name, a partial label pattern and value.
// The exporter adds otel_scope labels, hence the regex.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	assert.Regexp(t, name+`\{[^}]*`+labels+`[^}]*\} `+value, output)
}

func newBusinessMetrics(t *testing.T, namespace string) (*Provider, BusinessMetrics) {
	t.Helper()
	provider, err := NewProvider(namespace)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := NewBusinessMetrics(provider.MeterProvider(), namespace)
	require.NoError(t, err)
	return provider, bm
}

func TestBusinessMetrics_Record(t *testing.T) {
	provider, bm := newBusinessMetrics(t, "biz")
	ctx := context.Background()

	bm.RecordOperation(ctx, "patients", "patient_create", StatusSuccess)
	bm.RecordOperation(ctx, "patients", "patient_create", StatusSuccess)
	bm.RecordOperation(ctx, "patients", "patient_create", StatusError)
	bm.RecordOperation(ctx, "crypto", "field_encrypt", StatusSuccess)
	bm.RecordDuration(ctx, "patients", "patient_create", 50*time.Millisecond, StatusSuccess)
	bm.RecordDuration(ctx, "patients", "patient_create", 70*time.Millisecond, StatusSuccess)

	output := scrape(t, provider)

	assertMetricLine(t, output, `biz_operations_total`,
		`domain="patients".*operation="patient_create".*status="success"`, `2`)
	assertMetricLine(t, output, `biz_operations_total`,
		`domain="patients".*operation="patient_create".*status="error"`, `1`)
	assertMetricLine(t, output, `biz_operations_total`,
		`domain="crypto".*operation="field_encrypt".*status="success"`, `1`)
	assertMetricLine(t, output, `biz_operation_duration_seconds_count`,
		`domain="patients".*operation="patient_create".*status="success"`, `2`)
	assertMetricLine(t, output, `biz_operation_duration_seconds_sum`,
		`domain="patients".*operation="patient_create".*status="success"`, `0\.12`)
}

func TestObserve(t *testing.T) {
	provider, bm := newBusinessMetrics(t, "observe")
	ctx := context.Background()

	Observe(ctx, bm, "crypto", "field_decrypt", time.Now(), nil)
	Observe(ctx, bm, "crypto", "field_decrypt", time.Now(), errors.New("authentication failed"))
	Observe(ctx, bm, "crypto", "field_decrypt", time.Now().Add(-time.Second), errors.New("authentication failed"))

	output := scrape(t, provider)

	assertMetricLine(t, output, `observe_operations_total`,
		`domain="crypto".*operation="field_decrypt".*status="success"`, `1`)
	assertMetricLine(t, output, `observe_operations_total`,
		`domain="crypto".*operation="field_decrypt".*status="error"`, `2`)
	assertMetricLine(t, output, `observe_operation_duration_seconds_count`,
		`domain="crypto".*operation="field_decrypt".*status="error"`, `2`)
	assert.NotContains(t, output, "authentication failed")
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()
	assert.IsType(t, &NoOpBusinessMetrics{}, bm)

	assert.NotPanics(t, func() {
		Observe(context.Background(), bm, "patients", "patient_rotate_batch", time.Now(), nil)
	})
}
