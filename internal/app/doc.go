// Package app wires a mechbus run together: configuration, logging, the
// forest built from a topology document, the subscribers installed on it,
// Lua scripts, and the message journal.
//
// The lifecycle is
//
//	app, err := app.New(app.Options{ConfigPath: "mechbus.toml"})
//	defer app.Shutdown()
//	err = app.Load("ship.yaml")
//	res, err := app.Run(ctx)
package app
