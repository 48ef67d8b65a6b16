package util

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/spf13/viper"
)

// MustExist panics if an environment variable is not set.
func MustExist(envVar string) {
	if viper.GetString(envVar) == "" {
		panic(fmt.Sprintf("%s must be set", envVar))
	}
}

// VarNotSetTo panics if an environment variable is not set or set to `emptyVal`.
func VarNotSetTo(envVar, emptyVal string) {
	setTo := viper.GetString(envVar)
	if setTo == emptyVal || setTo == "" {
		panic(fmt.Sprintf("%s must be set", envVar))
	}
}

// InDocker returns true if the service is running as a container.
func InDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// ResolveEnvFile finds the appropriate env file to use for the service.
func ResolveEnvFile(service string, env string) string {
	format := "app-%s-%s.yaml"
	if InDocker() {
		return fmt.Sprintf(format, "docker", service)
	}

	switch env {
	case "local":
		return fmt.Sprintf(format, "local", service)
	case "dev":
		return fmt.Sprintf(format, "dev", service)
	case "prod":
		return fmt.Sprintf(format, "prod", service)
	}

	return fmt.Sprintf("app-local-%s.yaml", service)
}

// LoadEnvFile configures the environment with the configured input file. A missing file is
// logged and skipped so a purely environment driven setup still works locally.
func LoadEnvFile(fileName string) {
	if viper.GetString("ENV") != "local" {
		logger.For(nil).Info("running in non-local environment, skipping environment configuration")
		return
	}

	// Tests can run from directories deeper in the source tree, so we need to search parent directories to find this config file
	filePath := filepath.Join("_local", fileName)
	path, err := FindFile(filePath, 5)
	if err != nil {
		logger.For(nil).Warnf("no env file found at %s, using process environment only", filePath)
		return
	}

	logger.For(nil).Infof("configuring environment with settings from %s", path)
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Sprintf("error reading viper config: %s", err))
	}
}

// FindFile finds a file relative to the working directory
// by searching outer directories up to the search depth.
// Mostly for testing purposes.
func FindFile(f string, searchDepth int) (string, error) {
	if _, err := os.Stat(f); err == nil {
		return f, nil
	}

	for i := 0; i < searchDepth; i++ {
		f = filepath.Join("..", f)
		if _, err := os.Stat(f); err == nil {
			return f, nil
		}
	}

	return "", fmt.Errorf("could not find file '%s' in path", f)
}
