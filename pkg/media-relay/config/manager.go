package config

import "github.com/oxyno-zeta/media-relay/pkg/media-relay/log"

// Manager
//
//go:generate mockgen -destination=./mocks/mock_Manager.go -package=mocks github.com/oxyno-zeta/media-relay/pkg/media-relay/config Manager
type Manager interface {
	// Load configuration from folder.
	Load(configFolder string) error
	// Get configuration object
	GetConfig() *Config
	// Add on change hook for configuration change.
	AddOnChangeHook(hook func())
}

func NewManager(logger log.Logger) Manager {
	return &managercontext{logger: logger}
}

// NewDefaultManager returns a manager already loaded with default values only.
// It is used where no configuration folder exists (serverless runtimes).
func NewDefaultManager(logger log.Logger) (Manager, error) {
	ctx := &managercontext{logger: logger}
	// Load configuration without any file
	err := ctx.loadConfiguration()
	if err != nil {
		return nil, err
	}

	return ctx, nil
}
