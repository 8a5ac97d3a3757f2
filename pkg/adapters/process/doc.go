// Package process implements ports.Host on top of the operating system's
// URL opener (xdg-open, open, rundll32).
package process
