// Package diagnostics exposes a container's registrations over HTTP.
//
// The routes are read-only and never resolve a key, so inspecting a
// container cannot trigger construction:
//
//	GET /di/registrations            list, optional ?lifetime= filter
//	GET /di/registrations/:key       one entry, 404 NOT_REGISTERED otherwise
//	GET /info                        build and container summary
//	GET /health                      liveness
//
// Errors use the errors.ErrorResponse body.
package diagnostics
