package backend

import (
	"errors"
	"fmt"

	"siuang/internal/config"
	"siuang/internal/storage"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.LedgerBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.LedgerBackend)
	}

	return Config{
		Type:            backendType,
		SQLiteDSN:       appConfig.SQLiteDSN,
		AMQPURL:         appConfig.AMQPURL,
		AMQPExchange:    appConfig.AMQPExchange,
		AMQPEventsQueue: appConfig.AMQPEventsQueue,
		AMQPExportQueue: appConfig.AMQPExportQueue,
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend {
		if c.SQLiteDSN == "" {
			return errors.New("SQLite DSN is required for sqlite backend")
		}
		if !storage.IsMemoryDSN(c.SQLiteDSN) {
			return fmt.Errorf("SQLite DSN %q must be in-memory", c.SQLiteDSN)
		}
	}
	return nil
}

// GetBackendTypeStrings returns all valid backend type strings.
func GetBackendTypeStrings() []string {
	return []string{MemoryBackend.String(), SQLiteBackend.String()}
}
