// Package provision implements the stage coordinator: ordered, journaled
// provisioning steps split across a mandatory reboot, with a persisted resume
// token carrying the enrollment secrets into stage two.
package provision
