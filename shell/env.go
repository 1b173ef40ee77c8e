package shell

import (
	"os"

	"github.com/joho/godotenv"
)

type Environment struct{}

func NewEnvironment() *Environment {
	return &Environment{}
}

func (this *Environment) LookupEnv(key string) (value string, set bool) {
	return os.LookupEnv(key)
}

// LoadEnvFile merges a .env file into the process environment when present;
// a missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}
