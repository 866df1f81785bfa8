// Package model implements the Web of Things entity model.
//
// # Hierarchy
//
// A Thing is the top-level container:
//
//	Thing
//	├── Properties   named mutable values with schema metadata
//	├── Actions      catalog of action kinds + live instances
//	├── Events       catalog of event kinds + append-only log
//	└── Subscribers  opaque sinks receiving serialized status messages
//
// # Catalogs and instances
//
// Action and event names must be registered in the corresponding
// catalog before instances can exist. An action instance is created by
// PerformAction after its input passes the declared schema, and moves
// through created > pending > completed; cancellation before completion
// interrupts its work and guarantees no later model mutation.
//
// # Notifications
//
// Property writes and action status changes notify the Thing-wide
// subscriber set; events notify only the subscribers registered for
// that event name. Fan-out is best-effort: one failing sink never
// blocks the rest and never surfaces to the caller.
//
// The model has no protocol awareness; the binding layer lives in
// pkg/interaction and pkg/description.
package model
