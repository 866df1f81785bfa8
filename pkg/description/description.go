// Package description renders Things into structured description
// documents and link-format discovery payloads.
package description

import (
	"strings"

	"github.com/coapthing/coapthing-go/pkg/model"
)

// Link is one relation/href pair in a description.
type Link struct {
	Rel  string
	Href string
}

// Resource is one named sub-resource (a property, action kind or event
// kind) together with the attributes the discovery encoder needs.
type Resource struct {
	Links []Link

	// RT is the resource-type tag: the space-joined @type list for
	// properties, the link relation otherwise.
	RT string

	// Title is the metadata title; only rendered for properties.
	Title string

	// Property marks a property resource, which carries title in its
	// discovery entry.
	Property bool
}

// Group is one resource group, in the fixed discovery order
// properties, actions, events.
type Group struct {
	Name      string
	Resources []Resource
}

// Description is a rendered Thing description: the serializable body
// plus the ordered link structure the discovery encoder walks. Maps
// lose registration order, so the encoder never reads the body.
type Description struct {
	body   map[string]any
	href   string
	links  []Link
	groups []Group
}

// Body returns the serializable description document.
func (d *Description) Body() map[string]any {
	return d.body
}

// Render produces the description of a Thing for one request context.
// scheme and host are how the client addressed the server; they feed
// the base URI only.
func Render(t *model.Thing, scheme, host string) *Description {
	prefix := t.HrefPrefix()

	d := &Description{
		body: map[string]any{
			"id":          t.ID(),
			"title":       t.Title(),
			"@context":    t.Context(),
			"@type":       t.Types(),
			"description": t.Description(),
			"securityDefinitions": map[string]any{
				"nosec_sc": map[string]any{"scheme": "nosec"},
			},
			"security": "nosec_sc",
		},
	}

	d.links = []Link{
		{Rel: "self", Href: t.Href()},
		{Rel: "properties", Href: prefix + "/properties"},
		{Rel: "actions", Href: prefix + "/actions"},
		{Rel: "events", Href: prefix + "/events"},
	}
	if ui := t.UIHref(); ui != "" {
		d.links = append(d.links, Link{Rel: "alternate", Href: ui})
	}

	if t.Href() != "/" {
		d.href = t.Href()
		d.body["href"] = d.href
	}
	if scheme != "" && host != "" {
		d.body["base"] = scheme + "://" + host + t.Href()
	}

	properties, propertyBodies := renderProperties(t, prefix)
	actions, actionBodies := renderActions(t, prefix)
	events, eventBodies := renderEvents(t, prefix)
	d.groups = []Group{properties, actions, events}
	d.body["properties"] = propertyBodies
	d.body["actions"] = actionBodies
	d.body["events"] = eventBodies

	linkBodies := make([]map[string]any, 0, len(d.links))
	for _, l := range d.links {
		linkBodies = append(linkBodies, map[string]any{"rel": l.Rel, "href": l.Href})
	}
	d.body["links"] = linkBodies

	return d
}

// renderProperties builds the discovery resources and body entries of
// the property group from one name snapshot. A name whose property has
// been removed since the snapshot is skipped, so both outputs stay
// consistent with each other.
func renderProperties(t *model.Thing, prefix string) (Group, map[string]any) {
	g := Group{Name: "properties"}
	bodies := make(map[string]any)
	for _, name := range t.PropertyNames() {
		p := t.Property(name)
		if p == nil {
			continue
		}
		r := Resource{
			Links:    []Link{{Rel: "property", Href: prefix + p.Href()}},
			RT:       typeTag(p.Metadata()["@type"]),
			Title:    stringOr(p.Metadata()["title"], name),
			Property: true,
		}
		g.Resources = append(g.Resources, r)
		bodies[name] = propertyBody(p, r)
	}
	return g, bodies
}

func renderActions(t *model.Thing, prefix string) (Group, map[string]any) {
	g := Group{Name: "actions"}
	bodies := make(map[string]any)
	for _, name := range t.ActionNames() {
		r := Resource{
			Links: []Link{{Rel: "action", Href: prefix + "/actions/" + name}},
			RT:    "action",
		}
		g.Resources = append(g.Resources, r)
		bodies[name] = catalogBody(t.ActionMetadata(name), r)
	}
	return g, bodies
}

func renderEvents(t *model.Thing, prefix string) (Group, map[string]any) {
	g := Group{Name: "events"}
	bodies := make(map[string]any)
	for _, name := range t.EventNames() {
		r := Resource{
			Links: []Link{{Rel: "event", Href: prefix + "/events/" + name}},
			RT:    "event",
		}
		g.Resources = append(g.Resources, r)
		bodies[name] = catalogBody(t.EventMetadata(name), r)
	}
	return g, bodies
}

// propertyBody is the property's metadata plus current value and links.
func propertyBody(p *model.Property, r Resource) map[string]any {
	body := make(map[string]any, len(p.Metadata())+2)
	for k, v := range p.Metadata() {
		body[k] = v
	}
	body["value"] = p.Value()
	body["links"] = linkBodies(r.Links)
	return body
}

// catalogBody is an action/event catalog entry's metadata plus links.
func catalogBody(metadata map[string]any, r Resource) map[string]any {
	body := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		body[k] = v
	}
	body["links"] = linkBodies(r.Links)
	return body
}

func linkBodies(links []Link) []map[string]any {
	out := make([]map[string]any, 0, len(links))
	for _, l := range links {
		out = append(out, map[string]any{"rel": l.Rel, "href": l.Href})
	}
	return out
}

// typeTag flattens an @type declaration (scalar or list) into the
// space-joined resource-type tag.
func typeTag(v any) string {
	switch tag := v.(type) {
	case string:
		return tag
	case []string:
		return strings.Join(tag, " ")
	case []any:
		parts := make([]string, 0, len(tag))
		for _, e := range tag {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
