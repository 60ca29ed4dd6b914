package stack

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// PrepareMounts makes sure each mount point exists, is writable, and carries
// the configured ownership. External storage may legitimately be absent, so
// every failure is reported as a warning rather than aborting the start.
func PrepareMounts(mounts []string, uid, gid int) []Warning {
	var warnings []Warning
	for _, mount := range mounts {
		if err := os.MkdirAll(mount, 0o775); err != nil {
			warnings = append(warnings, Warning{
				Op:     "prepare-mount",
				Detail: fmt.Sprintf("%s: %v", mount, err),
			})
			continue
		}
		if err := unix.Access(mount, unix.W_OK); err != nil {
			warnings = append(warnings, Warning{
				Op:     "prepare-mount",
				Detail: fmt.Sprintf("%s is not writable: %v", mount, err),
			})
			continue
		}
		if uid > 0 && os.Geteuid() == 0 {
			if err := os.Chown(mount, uid, gid); err != nil {
				warnings = append(warnings, Warning{
					Op:     "prepare-mount",
					Detail: fmt.Sprintf("chown %s: %v", mount, err),
				})
			}
		}
	}
	return warnings
}
