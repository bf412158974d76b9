package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/pkg/geospatial"
)

// ListBlockagesHandler returns the current blockage set. The default
// projection is the name/description list; ?format=geojson returns the raw
// feature collection for map clients.
func ListBlockagesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc, err := deps.Routing.Blockages(c.UserContext())
		if err != nil {
			return errUnavailable(c, "routing service unreachable")
		}

		if c.Query("format") == "geojson" {
			return c.JSON(fc)
		}
		return c.JSON(fiber.Map{
			"blockages": domain.BlockageList(fc),
		})
	}
}

// blockageWithDistance is the nearby-projection of one blockage.
type blockageWithDistance struct {
	domain.BlockageInfo
	Lat      float64 `json:"lat"`
	Long     float64 `json:"long"`
	Distance float64 `json:"distance_m"`
}

// NearbyBlockagesHandler lists blockages within a radius of a point,
// nearest first. Feature centers stand in for the blockage location
// whatever geometry the service attached.
func NearbyBlockagesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
		lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
		if err1 != nil || err2 != nil {
			return errBadRequest(c, "lat and lon query parameters are required")
		}
		radius, err := strconv.ParseFloat(c.Query("radius", "1000"), 64)
		if err != nil || radius <= 0 {
			return errBadRequest(c, "radius must be a positive number of meters")
		}

		fc, err := deps.Routing.Blockages(c.UserContext())
		if err != nil {
			return errUnavailable(c, "routing service unreachable")
		}

		origin := domain.Point{Lat: lat, Long: lon}

		var nearby []blockageWithDistance
		for _, f := range fc.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			center := f.Geometry.Bound().Center()
			loc := domain.Point{Lat: center.Lat(), Long: center.Lon()}
			dist, ok := geospatial.WithinRadius(origin, loc, radius)
			if !ok {
				continue
			}
			name, _ := f.Properties["name"].(string)
			desc, _ := f.Properties["description"].(string)
			nearby = append(nearby, blockageWithDistance{
				BlockageInfo: domain.BlockageInfo{Name: name, Description: desc},
				Lat:          center.Lat(),
				Long:         center.Lon(),
				Distance:     dist,
			})
		}
		sortByDistance(nearby)

		return c.JSON(fiber.Map{"blockages": nearby})
	}
}

func sortByDistance(items []blockageWithDistance) {
	// Insertion sort; nearby lists are small.
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Distance < items[j-1].Distance; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// RoadTypesHandler returns the full catalog and the active subset.
func RoadTypesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		all, err := deps.Routing.AllRoadTypes(ctx)
		if err != nil {
			return errUnavailable(c, "routing service unreachable")
		}
		valid, err := deps.Routing.ValidRoadTypes(ctx)
		if err != nil {
			return errUnavailable(c, "routing service unreachable")
		}
		return c.JSON(fiber.Map{
			"all":   all,
			"valid": valid,
		})
	}
}

// RoadTypeGeometryHandler returns the geometry for one road type as a
// feature collection, normalized from whatever shape the service produced.
func RoadTypeGeometryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		norm, err := deps.Routing.RoadTypeGeometry(c.UserContext(), name)
		if err != nil {
			return errUnavailable(c, "routing service unreachable")
		}
		if norm.Kind != domain.GeometryCollectionKind {
			return errNotFound(c, "no geometry for road type "+name)
		}
		return c.JSON(norm.Collection)
	}
}

// SearchHandler resolves a free-text place query.
func SearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		results, err := deps.Search.Search(c.UserContext(), q)
		if err != nil {
			return errUnavailable(c, "geocoding service unreachable")
		}
		if results == nil {
			results = []domain.GeocodeResult{}
		}
		return c.JSON(fiber.Map{"results": results})
	}
}

// HistoryHandler lists recent route computations with offset pagination.
func HistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.History == nil {
			return errNotFound(c, "route history is not enabled")
		}

		offset, _ := strconv.Atoi(c.Query("offset", "0"))
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		entries, err := deps.History.Recent(c.UserContext(), offset+limit)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("history query failed", "error", err)
			return errInternal(c, "history query failed")
		}

		total := len(entries)
		if offset < len(entries) {
			entries = entries[offset:]
		} else {
			entries = nil
		}
		if entries == nil {
			entries = []domain.RouteHistoryEntry{}
		}

		p := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, p)
		return c.JSON(PaginatedResponse{Data: entries, Pagination: p})
	}
}

// StatusHandler reports the routing collaborator's readiness as last seen
// by the probe.
func StatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ready := false
		if deps.Readiness != nil {
			ready = deps.Readiness.Current()
		}
		return c.JSON(fiber.Map{
			"routing_ready": ready,
			"map_center": fiber.Map{
				"lat":  domain.DefaultCenterLat,
				"long": domain.DefaultCenterLon,
				"zoom": domain.DefaultZoom,
			},
		})
	}
}
