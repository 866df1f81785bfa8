// Package service is the server shell: it wires a Thing registry to
// the routing table, the CoAP listener and the mDNS advertiser, and
// owns the start/stop lifecycle.
//
//	thing := examples.Lamp()
//	server := service.NewServer(registry.NewSingleThing(thing), service.Config{
//		Address: ":5683",
//	})
//	if err := server.Start(); err != nil {
//		...
//	}
//	defer server.Stop(false)
package service
