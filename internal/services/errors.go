package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classify failures across component boundaries. Callers use
// errors.Is against these to decide whether an operation is fatal or merely
// degrades the run.
var (
	// ErrProvisioning marks a fatal provisioning step failure. Halts the
	// plan immediately; recovery is operator re-invocation.
	ErrProvisioning = errors.New("provisioning error")
	// ErrCredentialExchange marks a failed VPN token/key exchange. Fatal for
	// stage two; the resume token is preserved for manual retry.
	ErrCredentialExchange = errors.New("credential exchange error")
	// ErrDegraded marks a non-fatal failure (image pull, health probe).
	// Logged as a warning, execution continues.
	ErrDegraded = errors.New("degraded")
	// ErrConfiguration marks missing directories or unfilled placeholder
	// secrets. Reported, never blocks startup.
	ErrConfiguration = errors.New("configuration warning")
	// ErrExternalTool marks an external process returning a failure.
	ErrExternalTool = errors.New("external tool error")
	// ErrTimeout marks a bounded operation exceeding its deadline.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error must abort the current command with a
// non-zero exit. Degraded and configuration failures are warnings only.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrDegraded) && !errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
