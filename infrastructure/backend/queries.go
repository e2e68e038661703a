package backend

import (
	"bytes"
	"context"
	"image"
	"net/url"
	"strconv"
	"strings"

	// image formats served by the thumbnail endpoint
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/domain/core/aggregates"
	"braingraph/domain/core/entities"
	"braingraph/domain/core/valueobjects"
	pkgerrors "braingraph/pkg/errors"
)

// Endpoint paths of the graph API
const (
	PathLocal  = "/graph/local"
	PathMap    = "/graph/map"
	PathPath   = "/graph/path"
	PathSearch = "/graph/search"
	PathStats  = "/graph/stats"
	PathImages = "/images/"
)

// LocalNeighborhood fetches the subgraph within depth hops of nodeID
func (c *Client) LocalNeighborhood(ctx context.Context, nodeID string, depth int, layers []string, minWeight float64) (*aggregates.Graph, error) {
	q := url.Values{}
	q.Set("nodeId", nodeID)
	q.Set("depth", strconv.Itoa(depth))
	if len(layers) > 0 {
		q.Set("layers", strings.Join(layers, ","))
	}
	q.Set("minWeight", strconv.FormatFloat(minWeight, 'f', -1, 64))

	body, err := c.get(ctx, "local", PathLocal, q)
	if err != nil {
		return nil, err
	}
	g, _, err := decodeGraph(body)
	if err != nil {
		return nil, pkgerrors.NewDecodeError("local", err)
	}
	if g.Duplicates() > 0 {
		c.logger.Warn("neighborhood contained duplicate node ids",
			zap.String("node_id", nodeID),
			zap.Int("duplicates", g.Duplicates()),
		)
	}
	return g, nil
}

// Map fetches the clustered overview for scope
func (c *Client) Map(ctx context.Context, scope string) (*ports.MapData, error) {
	var q url.Values
	if scope != "" {
		q = url.Values{"scope": {scope}}
	}
	body, err := c.get(ctx, "map", PathMap, q)
	if err != nil {
		return nil, err
	}
	g, communities, err := decodeGraph(body)
	if err != nil {
		return nil, pkgerrors.NewDecodeError("map", err)
	}
	return &ports.MapData{Graph: g, Communities: communities}, nil
}

// Path fetches the ordered path between from and to
func (c *Client) Path(ctx context.Context, from, to string, limit int) (*ports.PathData, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "path", PathPath, q)
	if err != nil {
		return nil, err
	}
	data, err := decodePath(body)
	if err != nil {
		return nil, pkgerrors.NewDecodeError("path", err)
	}
	return data, nil
}

// Search fetches nodes matching query
func (c *Client) Search(ctx context.Context, query string, limit int) ([]entities.Node, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "search", PathSearch, q)
	if err != nil {
		return nil, err
	}
	nodes, err := decodeSearch(body)
	if err != nil {
		return nil, pkgerrors.NewDecodeError("search", err)
	}
	return nodes, nil
}

// Stats fetches graph-wide counts
func (c *Client) Stats(ctx context.Context) (*ports.GraphStats, error) {
	body, err := c.get(ctx, "stats", PathStats, nil)
	if err != nil {
		return nil, err
	}
	stats, err := decodeStats(body)
	if err != nil {
		return nil, pkgerrors.NewDecodeError("stats", err)
	}
	return stats, nil
}

// FetchThumbnail downloads and decodes the thumbnail of an image node
func (c *Client) FetchThumbnail(ctx context.Context, id valueobjects.NodeID) (image.Image, error) {
	body, err := c.get(ctx, "thumbnail", PathImages+id.Local(), url.Values{"thumbnail": {"true"}})
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.NewDecodeError("thumbnail", err)
	}
	c.logger.Debug("thumbnail decoded",
		zap.String("node_id", id.String()),
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return img, nil
}
