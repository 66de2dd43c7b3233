package instance

import (
	"os"

	"github.com/angelmondragon/farmledger/pkg/env"
)

// EnvInstanceID names the process in logs when several cron workers share a lock.
const EnvInstanceID = "FARMLEDGER_INSTANCE_ID"

// GetID returns the configured instance id, then the hostname, then a default.
func GetID() string {
	if id := env.Get(EnvInstanceID, ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "farmledger-0"
}
