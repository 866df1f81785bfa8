// Package interaction maps transport requests onto the Thing model.
//
// A Router holds a routing table built once at server construction:
// one table shape for a single-thing registry (resources at the root)
// and one for multi-thing registries (every resource path prefixed
// with /:thingId). Path templates mix literal segments with named
// placeholders; the matcher tries routes in registration order.
//
// Handlers resolve the target Thing through the registry first and
// short-circuit with a not-found signal before any other validation.
// Responses use the five wire status signals; protocol codes are the
// transport adapter's concern.
//
//	r := interaction.NewRouter(logger)
//	interaction.NewHandlers(things, logger).Register(r, "")
//	resp := r.Dispatch(&wire.Request{Method: wire.MethodGet, Path: "/properties"})
package interaction
