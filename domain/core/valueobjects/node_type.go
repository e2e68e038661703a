package valueobjects

// NodeType is the kind of a graph node
type NodeType string

const (
	NodeTypeNote     NodeType = "note"
	NodeTypeTag      NodeType = "tag"
	NodeTypeImage    NodeType = "image"
	NodeTypeEntity   NodeType = "entity"
	NodeTypeDocument NodeType = "document"
	NodeTypeUnknown  NodeType = "unknown"
)

// Layer is the plural name used by layer toggles ("notes", "tags", ...)
type Layer string

const (
	LayerNotes     Layer = "notes"
	LayerTags      Layer = "tags"
	LayerImages    Layer = "images"
	LayerEntities  Layer = "entities"
	LayerDocuments Layer = "documents"
)

var layerByType = map[NodeType]Layer{
	NodeTypeNote:     LayerNotes,
	NodeTypeTag:      LayerTags,
	NodeTypeImage:    LayerImages,
	NodeTypeEntity:   LayerEntities,
	NodeTypeDocument: LayerDocuments,
}

// KnownNodeTypes lists every type with a native layer
func KnownNodeTypes() []NodeType {
	return []NodeType{NodeTypeNote, NodeTypeTag, NodeTypeImage, NodeTypeEntity, NodeTypeDocument}
}

// AllLayers lists every node layer in display order
func AllLayers() []Layer {
	return []Layer{LayerNotes, LayerTags, LayerImages, LayerEntities, LayerDocuments}
}

// ParseNodeType maps an id prefix to a type. Anything unrecognised is NodeTypeUnknown.
func ParseNodeType(prefix string) NodeType {
	t := NodeType(prefix)
	if _, ok := layerByType[t]; ok {
		return t
	}
	return NodeTypeUnknown
}

// Layer returns the plural layer for t, or "" for unknown types
func (t NodeType) Layer() Layer {
	return layerByType[t]
}

// IsKnown reports whether t is one of the five wire types
func (t NodeType) IsKnown() bool {
	_, ok := layerByType[t]
	return ok
}
