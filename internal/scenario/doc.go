// Package scenario drives a reactive runtime from a scripted file.
//
// A scenario names an initial document, the watchers to install on it and
// a list of steps. Running it reacts the document, installs the watchers
// and applies each step in order, writing a trace of every step and every
// watcher change:
//
//	name: counter
//	document:
//	  count: 1
//	  step: 2
//	  total: {$sum: [count, step]}
//	watchers:
//	  - name: total
//	    path: total
//	steps:
//	  - op: set
//	    path: count
//	    value: 5
//
// produces
//
//	scenario counter
//	watch total = 3
//	step 1: set count = 5
//	  total: 3 -> 7
//	done: 1 steps, 1 changes
//
// Paths are dot separated; numeric segments index sequences. "." is the
// document itself. Files may be YAML or JSON.
package scenario
