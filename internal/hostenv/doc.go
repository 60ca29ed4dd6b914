// Package hostenv classifies the host into a deployment profile from
// observable signals (cloud metadata, container markers, memory size,
// hostname patterns). Classification is a pure function so tests can inject
// fake signal sources; the resulting profile only tunes advisory defaults.
package hostenv
