package config

import (
	"fmt"
	"time"
)

// DomainConfig holds the tunable rules of the graph engine
type DomainConfig struct {
	// Neighborhood
	DefaultDepth      int
	MaxDepth          int
	DefaultLayers     []string
	DefaultMinWeight  float64
	HubMinConnections int

	// Interaction timing
	DoubleClickWindow time.Duration
	RecenterDelay     time.Duration
	SearchDebounce    time.Duration
	SearchMinLength   int
	SearchLimit       int
	PathLimit         int

	// Rendering
	NodeMinRadius       float64
	NodeMaxRadius       float64
	NodeRadiusScale     float64
	LODNodeMinRadius    float64
	BadgeThreshold      int
	LODHighZoom         float64
	LODMediumZoom       float64
	EdgeCurvature       float64
	EdgeMaxCurveOffset  float64
	PulsePeriod         time.Duration
	ThumbnailCapacity   int
	ThumbnailMinZoom    float64
	TooltipTitleMaxRune int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		DefaultDepth:      2,
		MaxDepth:          3,
		DefaultLayers:     []string{"notes", "tags", "images", "entities", "documents"},
		DefaultMinWeight:  0,
		HubMinConnections: 5,

		DoubleClickWindow: 350 * time.Millisecond,
		RecenterDelay:     500 * time.Millisecond,
		SearchDebounce:    300 * time.Millisecond,
		SearchMinLength:   2,
		SearchLimit:       20,
		PathLimit:         10,

		NodeMinRadius:       4,
		NodeMaxRadius:       18,
		NodeRadiusScale:     2.5,
		LODNodeMinRadius:    2,
		BadgeThreshold:      8,
		LODHighZoom:         1.5,
		LODMediumZoom:       0.6,
		EdgeCurvature:       0.2,
		EdgeMaxCurveOffset:  40,
		PulsePeriod:         1500 * time.Millisecond,
		ThumbnailCapacity:   200,
		ThumbnailMinZoom:    0.8,
		TooltipTitleMaxRune: 60,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Larger graphs in production: keep frames cheap
	config.LODMediumZoom = 0.8
	config.ThumbnailCapacity = 150

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.ThumbnailCapacity = 500
	config.SearchLimit = 50
	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max depth must be at least 1")
	}
	if c.DefaultDepth < 1 || c.DefaultDepth > c.MaxDepth {
		return fmt.Errorf("default depth %d outside [1,%d]", c.DefaultDepth, c.MaxDepth)
	}
	if c.NodeMinRadius <= 0 || c.NodeMaxRadius < c.NodeMinRadius {
		return fmt.Errorf("invalid node radius range [%v,%v]", c.NodeMinRadius, c.NodeMaxRadius)
	}
	if c.LODMediumZoom >= c.LODHighZoom {
		return fmt.Errorf("LOD medium zoom (%v) must be below high zoom (%v)", c.LODMediumZoom, c.LODHighZoom)
	}
	if c.ThumbnailCapacity < 1 {
		return fmt.Errorf("thumbnail capacity must be positive")
	}
	if c.DoubleClickWindow <= 0 {
		return fmt.Errorf("double-click window must be positive")
	}
	return nil
}
