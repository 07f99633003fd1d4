package osm

import (
	"fmt"

	"github.com/paulmach/osm"
)

// NetworkType selects which ways are kept and how oneway tags apply.
type NetworkType string

const (
	Drive        NetworkType = "drive"
	DriveService NetworkType = "drive_service"
	Walk         NetworkType = "walk"
	Bike         NetworkType = "bike"
)

// ParseNetworkType validates a network type name.
func ParseNetworkType(s string) (NetworkType, error) {
	switch nt := NetworkType(s); nt {
	case Drive, DriveService, Walk, Bike:
		return nt, nil
	}
	return "", fmt.Errorf("unknown network type %q (want drive, drive_service, walk or bike)", s)
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
}

// excludedServices are service=* values dropped from drive_service networks.
var excludedServices = map[string]bool{
	"parking":          true,
	"parking_aisle":    true,
	"driveway":         true,
	"private":          true,
	"emergency_access": true,
	"alley":            true,
}

// noFootHighways are excluded from walking networks.
var noFootHighways = map[string]bool{
	"motorway":      true,
	"motorway_link": true,
	"trunk":         true,
	"trunk_link":    true,
	"cycleway":      true,
	"bus_guideway":  true,
	"raceway":       true,
	"proposed":      true,
	"construction":  true,
	"abandoned":     true,
	"platform":      true,
}

// noBikeHighways are excluded from cycling networks.
var noBikeHighways = map[string]bool{
	"motorway":      true,
	"motorway_link": true,
	"footway":       true,
	"steps":         true,
	"corridor":      true,
	"elevator":      true,
	"escalator":     true,
	"bus_guideway":  true,
	"raceway":       true,
	"proposed":      true,
	"construction":  true,
	"abandoned":     true,
	"platform":      true,
	"bridleway":     true,
}

// accepts returns true if the way belongs to the network.
func (nt NetworkType) accepts(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if hw == "" {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}

	switch nt {
	case Drive, DriveService:
		switch {
		case carHighways[hw]:
		case hw == "service" && nt == DriveService:
			if excludedServices[tags.Find("service")] {
				return false
			}
		default:
			return false
		}
		if tags.Find("motor_vehicle") == "no" || tags.Find("motorcar") == "no" {
			return false
		}
		return true
	case Walk:
		if noFootHighways[hw] {
			return false
		}
		return tags.Find("foot") != "no"
	case Bike:
		if noBikeHighways[hw] && tags.Find("bicycle") != "yes" && tags.Find("bicycle") != "designated" {
			return false
		}
		return tags.Find("bicycle") != "no"
	}
	return false
}

// directionFlags returns (forward, backward) based on network type,
// highway type and oneway tags.
func (nt NetworkType) directionFlags(tags osm.Tags) (forward, backward bool) {
	// Pedestrians may walk against traffic.
	if nt == Walk {
		return true, true
	}

	forward = true
	backward = true

	hw := tags.Find("highway")

	// Implied oneway for motorways and roundabouts.
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	// Explicit oneway tag overrides.
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		// Time-dependent — skip entirely.
		forward = false
		backward = false
	}

	if nt == Bike && tags.Find("oneway:bicycle") == "no" && (forward || backward) {
		forward = true
		backward = true
	}

	return forward, backward
}
