// Package cantus provides a public API for embedding the Cantus
// interpreter in Go applications.
//
// Basic usage:
//
//	state := cantus.NewState()
//	state.SetVariable("name", cantus.String("World"))
//	result, err := state.Eval(`greeting = "Hello, " + name`)
//	greeting, _ := state.GetVariable("greeting")
//
// State also exposes EvalAsync for cooperative background evaluation
// under the worker model, Register for adding Go-backed built-ins, and
// Load for running `load`-resolved source files.
package cantus
