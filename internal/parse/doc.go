// Package parse is a small REST client for the Parse Server endpoints this
// service talks to: hook management (/hooks/*), health and server info,
// /users/me and class queries. Every call is scoped to a single upstream
// server chosen through Options.ServerURL, so callers fan out across servers
// themselves and keep per-server failures isolated.
package parse
