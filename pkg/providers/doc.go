// Package providers is a data catalog of applications reachable through
// x-callback-url: their scheme, actions and parameters.
//
// A Binding validates arguments against the catalog before sending, so the
// same catalog drives the library, the CLI and the MCP tools.
package providers
