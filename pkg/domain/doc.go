/*
Package domain contains the protocol vocabulary shared by every layer of xcallback.

It is kept free of I/O so that the engine, the adapters and host applications
can all speak the same types.

# Key Entities

  - Request: an outgoing action call with its optional result handler.
  - Result: the three-way outcome (success, failure, cancelled).
  - Error: a protocol failure with domain, code and message.
  - Parameters: decoded query values, with reserved-key stripping.
  - LifecycleHooks: observability callbacks fired by the engine.
*/
package domain
