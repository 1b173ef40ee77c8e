package core

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/smarty/gcs"

	"github.com/sideloadhq/depot/contracts"
)

// CredentialParser locates and parses the Google service-account key used for
// gs:// artifact storage. Resolution order: DEPOT_GOOGLE_CREDENTIALS, then the
// conventional GOOGLE_APPLICATION_CREDENTIALS, then the gcloud application
// default credentials file under the user's home directory.
type CredentialParser struct {
	storage     contracts.FileReader
	environment contracts.Environment
}

func NewGoogleCredentialParser(storage contracts.FileReader, environment contracts.Environment) CredentialParser {
	return CredentialParser{storage: storage, environment: environment}
}

func (this CredentialParser) Parse() (gcs.Credentials, error) {
	path := this.credentialsPath()
	if path == "" {
		return gcs.Credentials{}, errors.New(
			"no Google credentials: set DEPOT_GOOGLE_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS")
	}
	data, err := this.storage.ReadFile(path)
	if err != nil {
		return gcs.Credentials{}, err
	}
	credentials, err := gcs.ParseCredentialsFromJSON(data)
	if err != nil {
		return gcs.Credentials{}, err
	}
	return credentials, nil
}

func (this CredentialParser) credentialsPath() string {
	for _, key := range []string{"DEPOT_GOOGLE_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS"} {
		if value, set := this.environment.LookupEnv(key); set && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	if home, set := this.environment.LookupEnv("HOME"); set && strings.TrimSpace(home) != "" {
		return filepath.Join(home, ".config", "gcloud", "application_default_credentials.json")
	}
	return ""
}
