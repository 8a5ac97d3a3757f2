/*
Package xcallback implements the x-callback-url protocol for inter-app
communication.

An application can both call actions exposed by other applications and
expose its own. Calls are URLs of the form

	<target-scheme>://x-callback-url/<action>?x-source=<app>&<params>&x-success=..&x-error=..&x-cancel=..

and the target answers by opening one of the callback URLs, which carry the
correlation id of the original request:

	<callback-scheme>://x-callback-url/IACRequestResponse?IACRequestID=<id>&IACResponseType=<0|1|2>&...

# Usage

Configure the Manager once, route every URL the process receives to
HandleURL, and use a Client per target application.

	m := xcallback.New(xcallback.WithCallbackScheme("myapp"))

	m.HandleAction("greet", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		return domain.Success(domain.Parameters{"greeting": "hello " + p["name"]})
	}))

	// Somewhere in the URL entry point of the process:
	handled := m.HandleRawURL(ctx, incoming)

	// Calling another application:
	c := &xcallback.Client{Scheme: "funbox", Manager: m}
	reply, err := c.Call(ctx, "play", query.Pairs{{Key: "sound", Value: "bell"}})

# Errors

Protocol errors are *domain.Error values. Local errors use the domain
"xcallback.manager.error"; failures reported by the target carry whatever
domain it sent, or "xcallback.client.error" when it sent none. Compare with
errors.Is against the sentinels in package domain.

# Transports

URLs leave the process through a ports.Host. The default host hands them to
the operating system (see package process). Package memory provides an
in-process bus for tests, and package http exposes the same bus over HTTP.
*/
package xcallback
