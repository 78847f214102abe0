// Package hooks keeps the local view of Cloud Code hooks registered on the
// upstream Parse Servers.
//
// A Hook describes one remote resource (a function or a trigger) together with
// the webhook URL pointing back into this process. ResourceClient performs the
// hook CRUD protocol against every configured server independently, Registry
// records which hook ended up on which server, and Drain removes them again on
// shutdown. ResolveServerURL maps an inbound request back to the server that
// sent it.
package hooks
