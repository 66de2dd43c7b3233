package enums

import (
	"fmt"
	"strings"
)

// WorkerRole decides which pay rules apply to a profile.
type WorkerRole string

const (
	WorkerRoleWorker     WorkerRole = "worker"
	WorkerRoleManager    WorkerRole = "manager"
	WorkerRoleSupervisor WorkerRole = "supervisor"
)

var validWorkerRoles = []WorkerRole{
	WorkerRoleWorker,
	WorkerRoleManager,
	WorkerRoleSupervisor,
}

// IsValid reports whether the value is a known WorkerRole.
func (r WorkerRole) IsValid() bool {
	for _, candidate := range validWorkerRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseWorkerRole converts raw input into WorkerRole. Portuguese labels are accepted.
func ParseWorkerRole(value string) (WorkerRole, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "worker", "trabalhador":
		return WorkerRoleWorker, nil
	case "manager", "gerente":
		return WorkerRoleManager, nil
	case "supervisor":
		return WorkerRoleSupervisor, nil
	}
	return "", fmt.Errorf("invalid worker role %q", value)
}
