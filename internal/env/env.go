// Package env identifies the runtime environment of the process.
package env

import (
	"os"

	"github.com/ekisa-team/ttsmaker/internal/envvar"
)

// Environment is the runtime environment of the process.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// FromEnv reads the environment from TTSMAKER_ENV, defaulting to Development.
func FromEnv() Environment {
	switch os.Getenv(envvar.TTSMakerEnv) {
	case "production", "prod":
		return Production
	default:
		return Development
	}
}
