// Command sullivan provisions a home media server host and manages the
// lifecycle of its docker compose service stack.
package main
