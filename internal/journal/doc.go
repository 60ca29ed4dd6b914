// Package journal records provisioning step outcomes in SQLite so a re-run
// after a mid-plan failure skips steps that already completed instead of
// re-mutating the host.
package journal
