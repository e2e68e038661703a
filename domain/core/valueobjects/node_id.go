package valueobjects

import (
	"encoding/json"
	"errors"
	"strings"
)

// NodeID is a value object for the composite "<type>-<numericId>" identifier the
// graph backend uses on the wire. The hyphenated string stays the identity; the
// type is parsed once and carried alongside it.
type NodeID struct {
	value    string
	nodeType NodeType
	local    string
}

// NewNodeIDFromString parses a wire id. Unknown type prefixes are not an error:
// they resolve to NodeTypeUnknown and the whole string is kept as the identity.
func NewNodeIDFromString(id string) (NodeID, error) {
	if strings.TrimSpace(id) == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	return ParseNodeID(id), nil
}

// ParseNodeID splits id on the first hyphen. It never fails.
func ParseNodeID(id string) NodeID {
	prefix, local, found := strings.Cut(id, "-")
	if !found {
		return NodeID{value: id, nodeType: NodeTypeUnknown, local: id}
	}
	return NodeID{value: id, nodeType: ParseNodeType(prefix), local: local}
}

// ComposeNodeID builds the wire form for a typed local id
func ComposeNodeID(t NodeType, local string) NodeID {
	return NodeID{value: string(t) + "-" + local, nodeType: t, local: local}
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Type returns the node kind encoded in the id prefix
func (id NodeID) Type() NodeType {
	if id.nodeType == "" {
		return NodeTypeUnknown
	}
	return id.nodeType
}

// Local returns the part after the first hyphen
func (id NodeID) Local() string {
	return id.local
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("NodeID must be a string")
	}
	*id = ParseNodeID(s)
	return nil
}
