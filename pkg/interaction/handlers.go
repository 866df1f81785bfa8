package interaction

import (
	"log/slog"
	"strings"

	"github.com/coapthing/coapthing-go/pkg/description"
	"github.com/coapthing/coapthing-go/pkg/model"
	"github.com/coapthing/coapthing-go/pkg/registry"
	"github.com/coapthing/coapthing-go/pkg/wire"
)

// Handlers is the resource handler family of the binding layer: one
// handler per resource shape, all resolving the target Thing through
// the registry before any other validation.
type Handlers struct {
	things registry.Registry
	logger *slog.Logger
}

// NewHandlers creates the handler family for a registry.
func NewHandlers(things registry.Registry, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{things: things, logger: logger}
}

// Register installs the routing table, mounted under basePath (empty
// mounts at the root). The table shape is fixed here, once, by the
// registry's topology: multi-thing registries prefix every resource
// path with /:thingId and list all Things at the base path. basePath
// must match the href prefixes assigned to the Things so every
// advertised link resolves. Discovery stays at /.well-known/core
// regardless of the base path.
func (h *Handlers) Register(r *Router, basePath string) {
	root := basePath
	if root == "" {
		root = "/"
	}

	if h.things.Single() {
		r.Handle(wire.MethodGet, "/.well-known/core", h.Core)
		r.Handle(wire.MethodGet, root, h.Thing)
		h.registerResources(r, basePath)
		return
	}

	r.Handle(wire.MethodGet, "/.well-known/core", h.Cores)
	r.Handle(wire.MethodGet, root, h.Things)
	r.Handle(wire.MethodGet, basePath+"/:thingId", h.Thing)
	h.registerResources(r, basePath+"/:thingId")
}

func (h *Handlers) registerResources(r *Router, prefix string) {
	r.Handle(wire.MethodGet, prefix+"/properties", h.Properties)
	r.Handle(wire.MethodGet, prefix+"/properties/:propertyName", h.Property)
	r.Handle(wire.MethodPut, prefix+"/properties/:propertyName", h.SetProperty)
	r.Handle(wire.MethodGet, prefix+"/actions", h.Actions)
	r.Handle(wire.MethodPost, prefix+"/actions", h.PerformActions)
	r.Handle(wire.MethodGet, prefix+"/actions/:actionName", h.Action)
	r.Handle(wire.MethodPost, prefix+"/actions/:actionName", h.PerformAction)
	r.Handle(wire.MethodGet, prefix+"/actions/:actionName/:actionId", h.ActionInstance)
	r.Handle(wire.MethodPut, prefix+"/actions/:actionName/:actionId", h.UpdateActionInstance)
	r.Handle(wire.MethodDelete, prefix+"/actions/:actionName/:actionId", h.CancelActionInstance)
	r.Handle(wire.MethodGet, prefix+"/events", h.Events)
	r.Handle(wire.MethodGet, prefix+"/events/:eventName", h.Event)
}

// thing resolves the target Thing for a request.
func (h *Handlers) thing(params Params) *model.Thing {
	t, err := h.things.Get(params["thingId"])
	if err != nil {
		return nil
	}
	return t
}

// respond serializes v in the negotiated format.
func (h *Handlers) respond(req *wire.Request, status wire.Status, v any) *wire.Response {
	format := req.ResponseFormat()
	body, err := wire.Encode(v, format)
	if err != nil {
		h.logger.Warn("failed to encode response payload", "err", err)
		return &wire.Response{Status: status}
	}
	return &wire.Response{Status: status, Format: format, Body: body}
}

func notFound() *wire.Response {
	return &wire.Response{Status: wire.StatusNotFound}
}

func badRequest() *wire.Response {
	return &wire.Response{Status: wire.StatusBadRequest}
}

// Things handles the multi-thing root: all Thing descriptions.
func (h *Handlers) Things(req *wire.Request, _ Params) *wire.Response {
	things := h.things.Things()
	bodies := make([]map[string]any, 0, len(things))
	for _, t := range things {
		bodies = append(bodies, description.Render(t, req.Scheme, req.Host).Body())
	}
	return h.respond(req, wire.StatusContent, bodies)
}

// Thing handles a single Thing description.
func (h *Handlers) Thing(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}
	return h.respond(req, wire.StatusContent, description.Render(t, req.Scheme, req.Host).Body())
}

// Core handles discovery for a single-thing registry.
func (h *Handlers) Core(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}
	payload := description.EncodeLinkFormat(description.Render(t, req.Scheme, req.Host)) +
		",</>,</.well-known/core>"
	return &wire.Response{
		Status: wire.StatusContent,
		Format: wire.FormatLinkFormat,
		Body:   []byte(payload),
	}
}

// Cores handles discovery for a multi-thing registry: the per-thing
// encodings concatenated in registration order, then the fixed trailer.
func (h *Handlers) Cores(req *wire.Request, _ Params) *wire.Response {
	var parts []string
	for _, t := range h.things.Things() {
		parts = append(parts, description.EncodeLinkFormat(description.Render(t, req.Scheme, req.Host)))
	}
	payload := strings.Join(parts, ",") + ",</>,</.well-known/core>"
	return &wire.Response{
		Status: wire.StatusContent,
		Format: wire.FormatLinkFormat,
		Body:   []byte(payload),
	}
}

// Properties handles GET of the full name to value mapping.
func (h *Handlers) Properties(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}
	return h.respond(req, wire.StatusContent, t.Properties())
}

// Property handles GET of a single property value.
func (h *Handlers) Property(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}

	name := params["propertyName"]
	value, err := t.GetProperty(name)
	if err != nil {
		return notFound()
	}
	return h.respond(req, wire.StatusContent, map[string]any{name: value})
}

// SetProperty handles PUT of a single property value. The body must
// contain exactly the target property's name as a key; a rejected
// value leaves the prior value unchanged.
func (h *Handlers) SetProperty(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}

	name := params["propertyName"]
	if !t.HasProperty(name) {
		return notFound()
	}

	body, err := wire.DecodeBody(req)
	if err != nil {
		return badRequest()
	}
	value, present := body[name]
	if !present {
		return badRequest()
	}

	if err := t.SetProperty(name, value); err != nil {
		return badRequest()
	}

	current, _ := t.GetProperty(name)
	return h.respond(req, wire.StatusContent, map[string]any{name: current})
}

// Actions handles GET of all live action instance descriptions.
func (h *Handlers) Actions(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}
	return h.respond(req, wire.StatusContent, descriptionsOrEmpty(t.ActionDescriptions("")))
}

// PerformActions handles POST of a name to {input} mapping. Every
// entry that dispatches successfully is started and merged into the
// response; unrecognized or invalid entries are skipped silently.
func (h *Handlers) PerformActions(req *wire.Request, params Params) *wire.Response {
	return h.performActions(req, params, "")
}

// Action handles GET of one action kind's instance descriptions.
func (h *Handlers) Action(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}
	return h.respond(req, wire.StatusContent, descriptionsOrEmpty(t.ActionDescriptions(params["actionName"])))
}

// PerformAction handles POST scoped to one action name; body entries
// whose key does not match the path's action name are ignored.
func (h *Handlers) PerformAction(req *wire.Request, params Params) *wire.Response {
	return h.performActions(req, params, params["actionName"])
}

func (h *Handlers) performActions(req *wire.Request, params Params, only string) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}

	body, err := wire.DecodeBody(req)
	if err != nil {
		return badRequest()
	}

	merged := make(map[string]any)
	for name, raw := range body {
		if only != "" && name != only {
			continue
		}

		var input any
		if entry, ok := raw.(map[string]any); ok {
			input = entry["input"]
		}

		action := t.PerformAction(name, input)
		if action == nil {
			continue
		}
		for k, v := range action.Description() {
			merged[k] = v
		}
		action.Start()
	}

	return h.respond(req, wire.StatusCreated, merged)
}

// ActionInstance handles GET of one action instance description.
func (h *Handlers) ActionInstance(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}

	action, err := t.Action(params["actionName"], params["actionId"])
	if err != nil {
		return notFound()
	}
	return h.respond(req, wire.StatusContent, action.Description())
}

// UpdateActionInstance accepts PUT on an action instance. Reserved;
// currently a no-op.
func (h *Handlers) UpdateActionInstance(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}
	return h.respond(req, wire.StatusContent, map[string]any{})
}

// CancelActionInstance handles DELETE: cancel and remove an instance.
func (h *Handlers) CancelActionInstance(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}

	if err := t.RemoveAction(params["actionName"], params["actionId"]); err != nil {
		return notFound()
	}
	return &wire.Response{Status: wire.StatusNoContent}
}

// Events handles GET of the full event log.
func (h *Handlers) Events(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}
	return h.respond(req, wire.StatusContent, descriptionsOrEmpty(t.EventDescriptions("")))
}

// Event handles GET of the event log filtered to one event name.
func (h *Handlers) Event(req *wire.Request, params Params) *wire.Response {
	t := h.thing(params)
	if t == nil {
		return notFound()
	}
	return h.respond(req, wire.StatusContent, descriptionsOrEmpty(t.EventDescriptions(params["eventName"])))
}

// descriptionsOrEmpty keeps empty description lists rendering as []
// instead of null.
func descriptionsOrEmpty(d []map[string]any) []map[string]any {
	if d == nil {
		return []map[string]any{}
	}
	return d
}
