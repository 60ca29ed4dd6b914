// Package pkgmgr wraps the apt package manager for provisioning steps.
package pkgmgr
