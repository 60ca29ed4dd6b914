// Package systemd manages the one-shot boot unit used to resume provisioning
// after the mandatory reboot, plus enable/restart of host services.
package systemd
