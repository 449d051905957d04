package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RegisterKeyringActive exports "<namespace>_keyring_active{provider,key_id} 1" for the
// active master key, so dashboards can tell which key new envelopes are written
// under while a rotation is in progress. keyID is read on every collection.
func RegisterKeyringActive(
	meterProvider metric.MeterProvider,
	namespace string,
	provider string,
	keyID func() string,
) error {
	meter := meterProvider.Meter(namespace)

	_, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_keyring_active", namespace),
		metric.WithDescription("Active keyring provider and master key id"),
		metric.WithInt64Callback(func(_ context.Context, observer metric.Int64Observer) error {
			observer.Observe(1, metric.WithAttributes(
				attribute.String("provider", provider),
				attribute.String("key_id", keyID()),
			))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create keyring info gauge: %w", err)
	}
	return nil
}
