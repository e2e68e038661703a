package interaction

import (
	"net/url"

	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
)

// View names a graph view composition
type View string

const (
	ViewExplore View = "explore"
	ViewMap     View = "map"
	ViewMedia   View = "media"
	ViewPath    View = "path"
)

// ParseView maps a name to a view, defaulting to Explore
func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewExplore, ViewMap, ViewMedia, ViewPath:
		return View(s), true
	default:
		return ViewExplore, false
	}
}

// NativePath resolves the route of a node's own page. Entities and unknown
// types have none.
func NativePath(n entities.Node) (string, bool) {
	local := n.ID().Local()
	switch n.Type() {
	case valueobjects.NodeTypeNote:
		return "/notes/" + url.PathEscape(local), true
	case valueobjects.NodeTypeImage:
		return "/gallery?image=" + url.QueryEscape(local), true
	case valueobjects.NodeTypeTag:
		name, ok := n.Metadata().String(entities.MetaName)
		if !ok || name == "" {
			name = n.RawTitle()
		}
		if name == "" {
			name = local
		}
		return "/tags/" + url.PathEscape(name), true
	case valueobjects.NodeTypeDocument:
		return "/documents/" + url.PathEscape(local), true
	default:
		return "", false
	}
}
