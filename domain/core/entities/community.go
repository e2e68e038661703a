package entities

// Community is a backend-detected cluster, joined to nodes by metadata.communityId
type Community struct {
	ID        string
	Label     string
	NodeCount int
	TopTerms  []string
}

// DisplayLabel returns the label, falling back to the leading top terms
func (c Community) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	switch len(c.TopTerms) {
	case 0:
		return "Community " + c.ID
	case 1:
		return c.TopTerms[0]
	default:
		return c.TopTerms[0] + ", " + c.TopTerms[1]
	}
}
