package entities

import (
	"strings"

	"braingraph/domain/core/valueobjects"
	pkgerrors "braingraph/pkg/errors"
)

// Node is an immutable graph vertex as fetched from the backend. The derived
// fields (connections, depth, hub, focus) live on aggregates.AnnotatedNode.
type Node struct {
	id       valueobjects.NodeID
	title    string
	metadata Metadata
	val      float64
	position *valueobjects.Point
	fixed    *valueobjects.Point
}

// NodeProps carries the fields needed to build a Node
type NodeProps struct {
	ID       string
	Title    string
	Metadata map[string]interface{}
	Val      float64
	Position *valueobjects.Point
	Fixed    *valueobjects.Point
}

// NewNode creates a node from wire properties
func NewNode(props NodeProps) (Node, error) {
	id, err := valueobjects.NewNodeIDFromString(props.ID)
	if err != nil {
		return Node{}, pkgerrors.NewValidationError(err.Error())
	}

	node := Node{
		id:       id,
		title:    strings.TrimSpace(props.Title),
		metadata: NewMetadata(props.Metadata),
		val:      props.Val,
	}
	if props.Position != nil {
		p := *props.Position
		node.position = &p
	}
	if props.Fixed != nil {
		f := *props.Fixed
		node.fixed = &f
	}
	return node, nil
}

// MustNode builds a node and panics on an empty id. Test and fixture helper.
func MustNode(id, title string) Node {
	n, err := NewNode(NodeProps{ID: id, Title: title})
	if err != nil {
		panic(err)
	}
	return n
}

// ID returns the node's identifier
func (n Node) ID() valueobjects.NodeID {
	return n.id
}

// Type returns the node kind
func (n Node) Type() valueobjects.NodeType {
	return n.id.Type()
}

// Title returns the display title, falling back to the id
func (n Node) Title() string {
	if n.title == "" {
		return n.id.String()
	}
	return n.title
}

// RawTitle returns the title as received, possibly empty
func (n Node) RawTitle() string {
	return n.title
}

// Metadata returns the node metadata
func (n Node) Metadata() Metadata {
	return n.metadata
}

// Val returns the backend-assigned size hint
func (n Node) Val() float64 {
	return n.val
}

// Position returns the backend- or layout-assigned position, if any
func (n Node) Position() (valueobjects.Point, bool) {
	if n.position == nil {
		return valueobjects.Point{}, false
	}
	return *n.position, true
}

// Fixed returns the pinned position, if any
func (n Node) Fixed() (valueobjects.Point, bool) {
	if n.fixed == nil {
		return valueobjects.Point{}, false
	}
	return *n.fixed, true
}

// IsPinned reports whether the node carries a fixed position
func (n Node) IsPinned() bool {
	return n.fixed != nil
}

// WithPosition returns a copy placed at p
func (n Node) WithPosition(p valueobjects.Point) Node {
	n.position = &p
	return n
}

// WithFixed returns a copy pinned at p
func (n Node) WithFixed(p valueobjects.Point) Node {
	n.fixed = &p
	n.position = &p
	return n
}

// Unfixed returns a copy with the pin cleared
func (n Node) Unfixed() Node {
	n.fixed = nil
	return n
}
