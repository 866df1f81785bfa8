// Package transport binds the interaction router to a CoAP/UDP
// listener.
//
// Message framing, retransmission and option encoding are delegated to
// go-coap; this package only translates between CoAP requests and the
// wire types, and between the five wire status signals and CoAP
// response codes:
//
//	content     -> 2.05 Content
//	created     -> 2.01 Created
//	no-content  -> 2.02 Deleted
//	bad-request -> 4.00 Bad Request
//	not-found   -> 4.04 Not Found
package transport
