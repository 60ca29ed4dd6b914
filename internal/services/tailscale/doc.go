// Package tailscale implements the VPN control-plane collaborator: an OAuth
// client-credentials exchange, single-use auth-key minting, and enrollment of
// the local node via the tailscale CLI.
package tailscale
