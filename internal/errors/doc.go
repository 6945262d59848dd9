// Package errors provides coded, actionable errors for the oz CLI.
//
// Engine errors (pkg/reactive) are plain sentinel errors; this package
// wraps them at the edges, where a user needs a code, a location in the
// scenario file and a hint.
//
// # Error Codes
//
//   - E1xx: configuration (oz.json)
//   - E2xx: scenario files
//   - E3xx: command line
//
// # Usage
//
//	err := errors.New("E204").
//	    WithLocation("counter.yaml", 12, 11).
//	    WithSuggestion("Check the path against the document")
//
//	fmt.Print(err.Format())
//	// ERROR E204: Path not found
//	//
//	//   counter.yaml:12:11
//	//
//	//       10 │ steps:
//	//       11 │   - op: set
//	//   →   12 │     path: user.nmae
//	//          │           ^
//	//       13 │     value: 3
//	//
//	//   Hint: Check the path against the document
package errors
