package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	cryptoUsecase "github.com/allisson/fieldvault/internal/crypto/usecase"
	"github.com/allisson/fieldvault/internal/metrics"
)

// KMSService returns the gocloud.dev keeper opener.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// Keyring returns the keyring selected by KMS_PROVIDER. It is built and
// self-tested once; a failure is cached and returned on every later call.
func (c *Container) Keyring() (cryptoDomain.Keyring, error) {
	var err error
	c.keyringInit.Do(func() {
		c.keyring, err = c.initKeyring()
		if err != nil {
			c.initErrors["keyring"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyring"]; exists {
		return nil, storedErr
	}
	return c.keyring, nil
}

// EnvelopeUseCase returns the field encryption use case, instrumented when
// metrics are enabled.
func (c *Container) EnvelopeUseCase() (cryptoUsecase.EnvelopeUseCase, error) {
	var err error
	c.envelopeUseCaseInit.Do(func() {
		c.envelopeUseCase, err = c.initEnvelopeUseCase()
		if err != nil {
			c.initErrors["envelopeUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelopeUseCase"]; exists {
		return nil, storedErr
	}
	return c.envelopeUseCase, nil
}

// BlindIndexer returns the blind indexer keyed from DEV_KMS_IDX_KEY.
func (c *Container) BlindIndexer() (cryptoService.BlindIndexer, error) {
	var err error
	c.blindIndexerInit.Do(func() {
		c.blindIndexer, err = c.initBlindIndexer()
		if err != nil {
			c.initErrors["blindIndexer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["blindIndexer"]; exists {
		return nil, storedErr
	}
	return c.blindIndexer, nil
}

func (c *Container) initKeyring() (cryptoDomain.Keyring, error) {
	keyring, err := cryptoService.NewKeyring(context.Background(), c.config, c.KMSService(), c.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyring: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		cryptoService.CloseKeyring(keyring)
		return nil, fmt.Errorf("failed to get metrics provider for keyring: %w", err)
	}
	if provider != nil {
		if err := metrics.RegisterKeyringActive(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
			string(keyring.Provider()),
			keyring.CurrentKeyID,
		); err != nil {
			cryptoService.CloseKeyring(keyring)
			return nil, err
		}
	}

	return keyring, nil
}

func (c *Container) initEnvelopeUseCase() (cryptoUsecase.EnvelopeUseCase, error) {
	keyring, err := c.Keyring()
	if err != nil {
		return nil, err
	}

	useCase := cryptoUsecase.NewEnvelopeUseCase(keyring, c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for envelope use case: %w", err)
		}
		useCase = cryptoUsecase.NewEnvelopeUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

func (c *Container) initBlindIndexer() (cryptoService.BlindIndexer, error) {
	key, err := cryptoService.LoadIndexKey(c.config, c.Logger())
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	indexer, err := cryptoService.NewBlindIndexer(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create blind indexer: %w", err)
	}
	return indexer, nil
}
