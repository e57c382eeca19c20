// Package bootstrap orchestrates application lifecycle for speechkit
// services.
//
// It provides typed configuration validation, component registration with
// deterministic start/stop ordering, startup/shutdown hooks, and graceful
// shutdown on OS signals.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.RegisterComponent(serverComponent)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
