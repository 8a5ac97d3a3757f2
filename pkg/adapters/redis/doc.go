// Package redis implements ports.Journal on Redis, for hosts that want
// pending requests visible to operators or shared dashboards.
package redis
