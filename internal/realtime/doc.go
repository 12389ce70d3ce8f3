// Package realtime delivers events to connected websocket clients.
//
// Every connection joins the room of its authenticated user id. The Hub
// routes an event to all connections of one user; RedisRouter fans the same
// event out across server instances over Redis pub/sub and hands it to the
// local Hub on each of them. Emitting to a user without a live connection is
// a silent no-op: notifications are already stored and the client catches up
// over HTTP.
package realtime
