package interaction

import (
	"log/slog"
	"strings"

	"github.com/coapthing/coapthing-go/pkg/wire"
)

// Params holds the named placeholder captures of a matched route.
type Params map[string]string

// HandlerFunc handles one matched request.
type HandlerFunc func(req *wire.Request, params Params) *wire.Response

// route is one entry of the routing table. Segments starting with ':'
// capture the corresponding path segment.
type route struct {
	method   wire.Method
	segments []string
	handler  HandlerFunc
}

// Router dispatches requests by method and path template. Routes are
// tried in registration order, so literal paths must be registered
// before overlapping placeholder paths.
type Router struct {
	routes []route
	logger *slog.Logger
}

// NewRouter creates an empty router. A nil logger falls back to the
// default logger.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{logger: logger}
}

// Handle registers a handler for a method and path template.
func (r *Router) Handle(method wire.Method, pattern string, handler HandlerFunc) {
	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(pattern),
		handler:  handler,
	})
}

// Dispatch matches the request against the routing table and invokes
// the bound handler. An unmatched path yields a not-found signal.
func (r *Router) Dispatch(req *wire.Request) *wire.Response {
	segments := splitPath(req.Path)

	for _, rt := range r.routes {
		if rt.method != req.Method {
			continue
		}
		params, ok := match(rt.segments, segments)
		if !ok {
			continue
		}

		r.logger.Debug("dispatching request",
			"method", req.Method.String(),
			"path", req.Path,
		)
		return rt.handler(req, params)
	}

	r.logger.Debug("no route", "method", req.Method.String(), "path", req.Path)
	return &wire.Response{Status: wire.StatusNotFound}
}

// splitPath splits a path into segments, stripping a trailing
// separator. The root path yields no segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// match compares a path against a template, collecting captures.
func match(template, segments []string) (Params, bool) {
	if len(template) != len(segments) {
		return nil, false
	}

	params := Params{}
	for i, t := range template {
		if strings.HasPrefix(t, ":") {
			params[t[1:]] = segments[i]
			continue
		}
		if t != segments[i] {
			return nil, false
		}
	}
	return params, true
}
