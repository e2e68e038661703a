package valueobjects

// EdgeType defines the kind of relationship between two nodes
type EdgeType string

const (
	EdgeTypeWikilink EdgeType = "wikilink"
	EdgeTypeTag      EdgeType = "tag"
	EdgeTypeImage    EdgeType = "image"
	EdgeTypeSource   EdgeType = "source"
	EdgeTypeSemantic EdgeType = "semantic"
	EdgeTypeMentions EdgeType = "mentions"
	EdgeTypeSession  EdgeType = "session"
)

// AllEdgeTypes lists the edge layers in display order
func AllEdgeTypes() []EdgeType {
	return []EdgeType{
		EdgeTypeWikilink,
		EdgeTypeTag,
		EdgeTypeImage,
		EdgeTypeSource,
		EdgeTypeSemantic,
		EdgeTypeMentions,
		EdgeTypeSession,
	}
}

// IsKnown reports whether t is a recognised edge type
func (t EdgeType) IsKnown() bool {
	for _, known := range AllEdgeTypes() {
		if t == known {
			return true
		}
	}
	return false
}
