package source

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/source/demo"
)

// BackendType represents the type of data source
type BackendType string

const (
	// DemoBackend serves the built-in seed dataset, optionally
	// overridden by JSON files in the data directory.
	DemoBackend BackendType = "demo"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	return bt == DemoBackend
}

// Config holds configuration for data source creation
type Config struct {
	Type          BackendType
	DataDirectory string
}

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// CreateBackend builds a data source from config.
func CreateBackend(config Config, logger *slog.Logger) (*BackendResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid data source type: %s", config.Type)
	}

	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store := demo.NewFromFiles(dataDir, time.Now())

	logger.Info("Initialized demo data source", "data_directory", dataDir)

	return &BackendResult{
		Backend: store,
		Cleanup: nil,
	}, nil
}
