package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log"
	"os"

	"github.com/spf13/afero"
)

// Initialize writes a default configuration to dir. Existing files are left
// untouched so Initialize can be re-run safely.
func Initialize(dir string, logger *log.Logger) error {
	logger.Printf("Initializing configuration in %q\n", dir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return initializeFs(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

func initializeFs(configFs afero.Fs, logger *log.Logger) error {
	if err := writeIfMissing(configFs, ConfigurationName, logger, func() ([]byte, error) {
		return defaultConfigData, nil
	}); err != nil {
		return err
	}

	if err := configFs.MkdirAll(RecordingsDirName, 0700); err != nil {
		return err
	}

	return writeIfMissing(configFs, PrivateKeyName, logger, generateHostKey)
}

func writeIfMissing(configFs afero.Fs, name string, logger *log.Logger, contents func() ([]byte, error)) error {
	switch exists, err := afero.Exists(configFs, name); {
	case err != nil:
		return err
	case exists:
		logger.Printf("- %s exists, skipping\n", name)
		return nil
	}

	data, err := contents()
	if err != nil {
		return err
	}
	logger.Printf("- writing %s\n", name)
	return afero.WriteFile(configFs, name, data, 0600)
}

func generateHostKey() ([]byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), nil
}
