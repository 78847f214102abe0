// Package server hosts the Fiber HTTP service that receives Parse Server
// webhook calls.
//
// Hooks attaches webhook routes and registers the matching Cloud Code hooks on
// every configured Parse Server in the background; Function and Trigger wrap
// typed handlers with the webhook key check, body decoding and the
// {"success"}/{"error"} response envelope. Server wires the pieces together and
// owns the startup (health check) and shutdown (wait, drain, stop) sequence.
package server
