package description

import (
	"fmt"
	"strings"
)

// linkFormatCT is the content-type hint attached to every typed entry.
const linkFormatCT = 50

// EncodeLinkFormat flattens one rendered description into a
// comma-joined link-format sequence: the Thing's own href (when not at
// the registry root) as a bare link, each top-level link with its
// relation, then the resources of each group in the fixed order
// properties, actions, events. Entries keep registration order; the
// caller appends the `</>` and `</.well-known/core>` trailer.
func EncodeLinkFormat(d *Description) string {
	var entries []string

	if d.href != "" {
		entries = append(entries, fmt.Sprintf("<%s>", d.href))
	}

	for _, l := range d.links {
		entries = append(entries, fmt.Sprintf("<%s>;rt=%q;ct=%d", l.Href, l.Rel, linkFormatCT))
	}

	for _, g := range d.groups {
		for _, r := range g.Resources {
			for _, l := range r.Links {
				if r.Property {
					entries = append(entries,
						fmt.Sprintf("<%s>;rt=%q;ct=%d;title=%q", l.Href, r.RT, linkFormatCT, r.Title))
				} else {
					entries = append(entries,
						fmt.Sprintf("<%s>;rt=%q;ct=%d", l.Href, l.Rel, linkFormatCT))
				}
			}
		}
	}

	return strings.Join(entries, ",")
}
