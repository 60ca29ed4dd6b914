// Package stack manages the compose service lifecycle: dependency-ordered
// start and stop, idempotent convergence over an already-running stack, env
// file synthesis, and bounded health probes that warn instead of failing.
package stack
