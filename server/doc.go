// Package server provides the HTTP serving layer for speechkit services
// built on Gin, with HTTP/2 cleartext (h2c) support so additional
// http.Handler mounts can share the port.
//
// It bundles the standard middleware stack (recovery, request-ID, CORS,
// body-size limiting, rate limiting, request logging) and the default
// health, readiness, info, and metrics endpoints.
//
// # Usage
//
//	srv := server.New(cfg, log)
//	srv.ApplyDefaults("sttd", checker)
//	api.RegisterRoutes(srv.GinEngine(), svc)
//	srv.Start(ctx)
//	defer srv.Stop(ctx)
package server
