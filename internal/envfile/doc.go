// Package envfile manages the line-oriented KEY=VALUE configuration file the
// compose stack reads.
//
// The update rule is the load-bearing invariant: a key is only overwritten
// when its current value is empty or a recognized placeholder, so synthesis
// and secret generation can run any number of times without clobbering values
// the operator filled in by hand.
package envfile
