// Package deps declares the external binaries sullivan shells out to and
// checks whether the host provides them.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is one external binary some sullivan operation invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement resolved against the host's PATH.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// Requirements returns the binaries the provisioning and lifecycle flows
// depend on. composeBinary is the configured container runtime; empty falls
// back to docker. apt-get is optional because only provisioning needs it and
// an already-provisioned host may not be Debian-based.
func Requirements(composeBinary string) []Requirement {
	if strings.TrimSpace(composeBinary) == "" {
		composeBinary = "docker"
	}
	return []Requirement{
		{
			Name:        "Docker",
			Command:     composeBinary,
			Description: "runs the compose stack",
		},
		{
			Name:        "Tailscale",
			Command:     "tailscale",
			Description: "enrolls the host into the tailnet",
		},
		{
			Name:        "apt-get",
			Command:     "apt-get",
			Description: "installs provisioning packages",
			Optional:    true,
		},
	}
}

// Check resolves every requirement and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, req.check())
	}
	return results
}

func (r Requirement) check() Status {
	status := Status{Requirement: r}
	status.Command = strings.TrimSpace(r.Command)
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	if _, err := exec.LookPath(status.Command); err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Available = true
	return status
}
