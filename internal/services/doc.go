// Package services hosts clients for the external collaborators Sullivan
// orchestrates (docker compose, the Tailscale control plane, apt, systemd)
// plus the shared failure classification used across component boundaries.
package services
