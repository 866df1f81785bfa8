// Package wire defines the transport-agnostic request/response types
// the binding layer operates on, and the payload codec.
//
// A Request carries a method, a path and an optional body; a Response
// carries one of exactly five status signals plus a content format and
// body. The CoAP mapping of these signals lives in pkg/transport; the
// binding layer never sees CoAP codes.
package wire
