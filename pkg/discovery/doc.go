// Package discovery advertises a running server over mDNS so clients
// can find it without prior configuration.
//
// Advertisement is fire-and-forget from the server's point of view:
// registration failures are retried on a fixed backoff in the
// background and never block request handling.
package discovery
