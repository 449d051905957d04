package app

import (
	"fmt"

	patientHTTP "github.com/allisson/fieldvault/internal/patient/http"
	patientRepository "github.com/allisson/fieldvault/internal/patient/repository"
	patientUsecase "github.com/allisson/fieldvault/internal/patient/usecase"
)

// PatientRepository returns the patient repository for the configured driver.
func (c *Container) PatientRepository() (patientUsecase.PatientRepository, error) {
	var err error
	c.patientRepositoryInit.Do(func() {
		c.patientRepository, err = c.initPatientRepository()
		if err != nil {
			c.initErrors["patientRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["patientRepository"]; exists {
		return nil, storedErr
	}
	return c.patientRepository, nil
}

// PatientUseCase returns the patient use case, instrumented when metrics are enabled.
func (c *Container) PatientUseCase() (patientUsecase.PatientUseCase, error) {
	var err error
	c.patientUseCaseInit.Do(func() {
		c.patientUseCase, err = c.initPatientUseCase()
		if err != nil {
			c.initErrors["patientUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["patientUseCase"]; exists {
		return nil, storedErr
	}
	return c.patientUseCase, nil
}

// AdminUseCase returns the audited admin use case.
func (c *Container) AdminUseCase() (patientUsecase.AdminUseCase, error) {
	var err error
	c.adminUseCaseInit.Do(func() {
		c.adminUseCase, err = c.initAdminUseCase()
		if err != nil {
			c.initErrors["adminUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminUseCase"]; exists {
		return nil, storedErr
	}
	return c.adminUseCase, nil
}

// PatientHandler returns the patient HTTP handler.
func (c *Container) PatientHandler() (*patientHTTP.PatientHandler, error) {
	var err error
	c.patientHandlerInit.Do(func() {
		var useCase patientUsecase.PatientUseCase
		useCase, err = c.PatientUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get patient use case for patient handler: %w", err)
			c.initErrors["patientHandler"] = err
			return
		}
		c.patientHandler = patientHTTP.NewPatientHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["patientHandler"]; exists {
		return nil, storedErr
	}
	return c.patientHandler, nil
}

// AdminHandler returns the admin HTTP handler.
func (c *Container) AdminHandler() (*patientHTTP.AdminHandler, error) {
	var err error
	c.adminHandlerInit.Do(func() {
		var useCase patientUsecase.AdminUseCase
		useCase, err = c.AdminUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get admin use case for admin handler: %w", err)
			c.initErrors["adminHandler"] = err
			return
		}
		c.adminHandler = patientHTTP.NewAdminHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminHandler"]; exists {
		return nil, storedErr
	}
	return c.adminHandler, nil
}

func (c *Container) initPatientRepository() (patientUsecase.PatientRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for patient repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return patientRepository.NewMySQLPatientRepository(db), nil
	case "postgres":
		return patientRepository.NewPostgreSQLPatientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initPatientUseCase() (patientUsecase.PatientUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for patient use case: %w", err)
	}

	repo, err := c.PatientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get patient repository for patient use case: %w", err)
	}

	envelopeUseCase, err := c.EnvelopeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope use case for patient use case: %w", err)
	}

	indexer, err := c.BlindIndexer()
	if err != nil {
		return nil, fmt.Errorf("failed to get blind indexer for patient use case: %w", err)
	}

	useCase := patientUsecase.NewPatientUseCase(
		txManager,
		repo,
		envelopeUseCase,
		indexer,
		patientUsecase.Options{
			EncryptionEnabled:   c.config.EncryptionEnabled,
			ReadLegacyPlaintext: c.config.ReadLegacyPlaintext,
			RotationConcurrency: c.config.RewrapConcurrency,
		},
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for patient use case: %w", err)
		}
		useCase = patientUsecase.NewPatientUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

func (c *Container) initAdminUseCase() (patientUsecase.AdminUseCase, error) {
	repo, err := c.PatientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get patient repository for admin use case: %w", err)
	}

	envelopeUseCase, err := c.EnvelopeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope use case for admin use case: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for admin use case: %w", err)
	}

	return patientUsecase.NewAdminUseCase(repo, envelopeUseCase, auditLogUseCase, c.Logger()), nil
}
