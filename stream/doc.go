// Package stream drains residual messages from a camera data stream.
//
// The camera pushes frame metadata and frame data as alternating message
// parts over a ZeroMQ PUSH socket. When an acquisition is aborted, unread
// messages stay queued on the transport and would be delivered to the next
// writer process, corrupting the next run. Drainer connects a PULL socket
// to the stream endpoint and consumes messages until the stream has been
// quiet for a configurable idle window, reporting how many messages it
// discarded.
//
// Draining is diagnostic housekeeping between runs, not a data path: the
// package never interprets payloads beyond handing them to an optional
// callback.
package stream
