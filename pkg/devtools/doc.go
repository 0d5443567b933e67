// Package devtools serves an HTTP inspector for a store.Cache.
//
// Routes:
//
//	GET  /healthz                      liveness
//	GET  /keys                         list keys and active binding count
//	GET  /keys/{key...}                read one entry as JSON
//	PUT  /keys/{key...}?skipUpdate=1   write a JSON value through Cache.Set
//	GET  /watch                        WebSocket stream of invalidations
//	GET  /snapshots                    list stored snapshots
//	POST /snapshots/{name}             capture the cache into a snapshot
//	POST /snapshots/{name}/restore     restore a snapshot into the cache
//	GET  /metrics                      Prometheus metrics (when configured)
//
// A /watch connection is a consumer like any other: it activates a binding
// and receives an "invalidate" frame whenever a write would re-render
// bound components. Writes made with skipUpdate produce no frame.
//
// Every request runs in an OpenTelemetry span from the global tracer
// provider.
package devtools
