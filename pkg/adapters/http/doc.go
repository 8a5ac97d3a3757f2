// Package http carries x-callback-url URLs between processes over HTTP.
//
// NewHandler serves the receiving side: a URL posted to /open is handed to
// the manager exactly as if the operating system had opened it. Host is the
// sending side, used in place of the OS opener when applications run as
// services.
package http
