// Package mcp exposes an xcallback Manager to MCP clients, so agents can
// build and launch x-callback-url actions from the provider catalog.
package mcp
