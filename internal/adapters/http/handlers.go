package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	rgeojson "github.com/samirrijal/railmap/internal/adapters/geojson"
	"github.com/samirrijal/railmap/internal/core/domain"
)

// computeLayoutBody is the POST /v1/layouts payload: what to lay out and the
// exported network to lay it out from.
type computeLayoutBody struct {
	Request  domain.LayoutRequest `json:"request"`
	Features json.RawMessage      `json:"features"`
}

// ComputeLayoutHandler computes, stores and returns a layout.
func ComputeLayoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body computeLayoutBody
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if len(body.Features) == 0 {
			return errBadRequest(c, "features is required")
		}
		src, err := rgeojson.Parse(body.Features)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		layout, err := deps.Layouts.Compute(c.UserContext(), src, body.Request)
		if err != nil {
			return errFromService(c, err)
		}

		c.Location("/v1/layouts/" + layout.ID)
		return c.Status(fiber.StatusCreated).JSON(layout)
	}
}

// ListLayoutsHandler returns layout summaries, newest first.
func ListLayoutsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		items, total, err := deps.Layouts.List(c.UserContext(), offset, limit)
		if err != nil {
			return errFromService(c, err)
		}
		if items == nil {
			items = []domain.LayoutSummary{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: items, Pagination: pg})
	}
}

// GetLayoutHandler returns a whole layout.
func GetLayoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		layout, err := deps.Layouts.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(layout)
	}
}

// DeleteLayoutHandler removes a layout.
func DeleteLayoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Layouts.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromService(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// LayoutMarkersHandler returns the markers of a layout, optionally only
// those of ?route=.
func LayoutMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		layout, err := deps.Layouts.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		route := c.Query("route")
		out := make([]domain.MarkerPlacement, 0, len(layout.Markers))
		for _, m := range layout.Markers {
			if route == "" || m.RouteRef == route {
				out = append(out, m)
			}
		}
		return c.JSON(out)
	}
}

// LayoutStationsHandler returns the placed stations, optionally only those
// assigned to ?route=.
func LayoutStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		layout, err := deps.Layouts.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		route := c.Query("route")
		out := make([]domain.StationPlacement, 0, len(layout.Stations))
		for _, st := range layout.Stations {
			if route == "" || st.RouteRef == route {
				out = append(out, st)
			}
		}
		return c.JSON(out)
	}
}

// LayoutFootprintsHandler returns board placements in millimetres.
func LayoutFootprintsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		layout, err := deps.Layouts.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		out := layout.Footprints
		if out == nil {
			out = []domain.FootprintPlacement{}
		}
		return c.JSON(out)
	}
}

// LayoutGeoJSONHandler renders a layout back into lon/lat for map viewers.
func LayoutGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		layout, err := deps.Layouts.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		data, err := rgeojson.LayoutFeatureCollection(layout).MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

type computeOutlineBody struct {
	Origin   *domain.GeoPoint `json:"origin,omitempty"`
	Features json.RawMessage  `json:"features"`
}

// ComputeOutlineHandler merges background lines. ?format=geojson returns
// the merged paths in lon/lat instead of planar metres.
func ComputeOutlineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body computeOutlineBody
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if len(body.Features) == 0 {
			return errBadRequest(c, "features is required")
		}
		src, err := rgeojson.Parse(body.Features)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		outline, err := deps.Outlines.Compute(c.UserContext(), src, body.Origin)
		if err != nil {
			return errFromService(c, err)
		}

		if c.Query("format") == "geojson" {
			data, err := rgeojson.OutlineFeatureCollection(outline).MarshalJSON()
			if err != nil {
				return errInternal(c, err.Error())
			}
			c.Set(fiber.HeaderContentType, "application/geo+json")
			return c.Send(data)
		}
		return c.JSON(outline)
	}
}

// SegmentHandler segments a planar path at its stations without storing
// anything.
func SegmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.SegmentRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if len(req.Path) < 2 {
			return errBadRequest(c, "path needs at least two points")
		}
		if req.MarkerSpacing < 0 {
			return errBadRequest(c, "marker_spacing must not be negative")
		}

		res, err := deps.Geometry.Segment(c.UserContext(), req)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(res)
	}
}
