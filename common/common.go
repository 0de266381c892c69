package common

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	ProjectID string

	GAEService string

	GAEVersion string

	Env string

	// Production flag indicating if app is running the production backend on appengine
	Production bool

	// IsLocalhost flag indicating if app is running on localhost
	IsLocalhost bool

	FirestoreEmulatorHost string
)

const productionProject = "me-doit-intl-com"

// InitEnv reads the process environment. It runs on package init and must
// run again when the environment is changed later, e.g. by a .env file.
func InitEnv() {
	ProjectID = GetEnv("GOOGLE_CLOUD_PROJECT", "")

	if ProjectID == "" {
		log.Println("environment variable GOOGLE_CLOUD_PROJECT is not set")
	}

	IsLocalhost = gin.Mode() != gin.ReleaseMode
	GAEService = GetEnv("GAE_SERVICE", "mixpanel-sheets")
	GAEVersion = GetEnv("GAE_VERSION", "localhost")
	FirestoreEmulatorHost = os.Getenv("FIRESTORE_EMULATOR_HOST")

	if ProjectID == productionProject && !IsLocalhost {
		Env = "production"
		Production = true
	} else {
		Env = "development"
		Production = false
	}
}

func init() {
	InitEnv()
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

// GetEnvInt returns the integer value of key, or fallback when it is unset.
func GetEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

// GetEnvDuration returns the duration value of key, or fallback when it is unset.
func GetEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	return time.ParseDuration(value)
}
