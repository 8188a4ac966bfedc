// Package server provides a live preview HTTP server for a vbind component
// tree.
//
// The server owns one engine and its mounted root. Every mutation made
// through HTTP or the live socket runs under a single lock, drains the
// engine scheduler, and pushes the re-rendered HTML to connected browsers.
//
// Routes:
//
//	GET  /                 full page with the live client script
//	GET  /fragment         rendered root markup
//	GET  /data?path=a.b    JSON value of a path
//	POST /data             {"path": "a.b", "value": 1}
//	POST /events/{type}    broadcast an event with a JSON array of args
//	GET  /snapshot         msgpack snapshot of all models
//	POST /snapshot         restore a snapshot
//	GET  /live             WebSocket push channel
//	GET  /metrics          Prometheus metrics (when a gatherer is set)
package server
