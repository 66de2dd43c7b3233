package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIDPrefersEnvironment(t *testing.T) {
	t.Setenv(EnvInstanceID, "cron-a")
	assert.Equal(t, "cron-a", GetID())
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv(EnvInstanceID, "")
	assert.NotEmpty(t, GetID())
}
