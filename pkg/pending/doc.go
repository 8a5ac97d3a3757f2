/*
Package pending implements the pending-request table: the process-wide map
from correlation id to a request whose response has not arrived yet.

Entries are added when a request with a result handler is sent and removed
exactly once, either by Resolve (which invokes the handler) or by Discard.
A second Resolve for the same id is a no-op returning false.
*/
package pending
