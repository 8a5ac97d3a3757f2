/*
Package ports defines the driven ports (interfaces) of the xcallback engine.

These interfaces decouple the protocol engine from the operating system,
from persistence and from the application code that performs actions.

# Key Interfaces

  - Host: opens URLs and reports whether a scheme is handled (the OS collaborator).
  - Strategy: one way of performing inbound actions (registry, delegate, custom).
  - CapabilityDelegate: dynamic action support supplied by the host application.
  - Journal: mirrors pending requests to memory, files or Redis.
*/
package ports
