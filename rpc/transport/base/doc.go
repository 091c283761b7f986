// Package base implements the transport mechanics shared by the tcp and
// unix transports: length-prefixed request/response frames, a per-connection
// worker pool on the server side and response multiplexing with round-robin
// connection selection on the client side. The medium-specific packages only
// contribute a connector (dial/listen plus socket tuning).
package base
