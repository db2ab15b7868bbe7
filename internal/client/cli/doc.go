// Package cli provides the interactive gophauth command-line client.
//
// It is a thin screen layer over auth.Controller: commands collect input,
// call one controller operation and print the outcome. Navigation follows
// the controller status, which the App also watches in the background to
// report session expiry and code expiry as they happen.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
