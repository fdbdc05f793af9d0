package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// buildSchema creates the read-only GraphQL schema over stored layouts.
// Field names follow the JSON tags so the default resolver can read the
// domain structs directly.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RoutePath",
		Fields: graphql.Fields{
			"ref":    &graphql.Field{Type: graphql.String},
			"length": &graphql.Field{Type: graphql.Float, Description: "Planar length in metres"},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"ref":         &graphql.Field{Type: graphql.String},
			"x":           &graphql.Field{Type: graphql.Float},
			"y":           &graphql.Field{Type: graphql.Float},
			"orientation": &graphql.Field{Type: graphql.Float},
			"route_ref":   &graphql.Field{Type: graphql.String},
			"segment":     &graphql.Field{Type: graphql.String},
			"label":       &graphql.Field{Type: graphql.String},
		},
	})

	stationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Station",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"route_ref":   &graphql.Field{Type: graphql.String},
			"x":           &graphql.Field{Type: graphql.Float},
			"y":           &graphql.Field{Type: graphql.Float},
			"orientation": &graphql.Field{Type: graphql.Float},
			"distance":    &graphql.Field{Type: graphql.Float},
		},
	})

	footprintType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Footprint",
		Fields: graphql.Fields{
			"ref":      &graphql.Field{Type: graphql.String},
			"x":        &graphql.Field{Type: graphql.Float},
			"y":        &graphql.Field{Type: graphql.Float},
			"rotation": &graphql.Field{Type: graphql.Float},
		},
	})

	routeArg := graphql.FieldConfigArgument{
		"route": &graphql.ArgumentConfig{Type: graphql.String, Description: "Only placements on this route"},
	}

	layoutType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Layout",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"origin":     &graphql.Field{Type: geoPointType},
			"created_at": &graphql.Field{Type: graphql.DateTime},
			"routes":     &graphql.Field{Type: graphql.NewList(routeType)},
			"markers": &graphql.Field{
				Type: graphql.NewList(markerType),
				Args: routeArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					l, ok := p.Source.(*domain.Layout)
					if !ok {
						return nil, errors.New("markers: unexpected source")
					}
					route, _ := p.Args["route"].(string)
					var out []domain.MarkerPlacement
					for _, m := range l.Markers {
						if route == "" || m.RouteRef == route {
							out = append(out, m)
						}
					}
					return out, nil
				},
			},
			"stations": &graphql.Field{
				Type: graphql.NewList(stationType),
				Args: routeArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					l, ok := p.Source.(*domain.Layout)
					if !ok {
						return nil, errors.New("stations: unexpected source")
					}
					route, _ := p.Args["route"].(string)
					var out []domain.StationPlacement
					for _, st := range l.Stations {
						if route == "" || st.RouteRef == route {
							out = append(out, st)
						}
					}
					return out, nil
				},
			},
			"footprints": &graphql.Field{Type: graphql.NewList(footprintType)},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LayoutSummary",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"name":         &graphql.Field{Type: graphql.String},
			"origin":       &graphql.Field{Type: geoPointType},
			"route_refs":   &graphql.Field{Type: graphql.NewList(graphql.String)},
			"marker_count": &graphql.Field{Type: graphql.Int},
			"created_at":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	pageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LayoutPage",
		Fields: graphql.Fields{
			"items": &graphql.Field{Type: graphql.NewList(summaryType)},
			"total": &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"layout": &graphql.Field{
				Type:        layoutType,
				Description: "Get a stored layout by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Layouts.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"layouts": &graphql.Field{
				Type:        pageType,
				Description: "List stored layouts, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					items, total, err := deps.Layouts.List(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					return map[string]any{"items": items, "total": total}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
