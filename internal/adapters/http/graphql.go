package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/routelab/routeboard/internal/core/domain"
)

// buildSchema creates the read-only GraphQL schema wired to our services.
// Mutations stay on the WebSocket session protocol; this surface exists for
// dashboards and ad hoc queries.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	blockageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Blockage",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
		},
	})

	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"lat":         &graphql.Field{Type: graphql.Float},
			"long":        &graphql.Field{Type: graphql.Float},
			"description": &graphql.Field{Type: graphql.String},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"display_name": &graphql.Field{Type: graphql.String},
			"lat":          &graphql.Field{Type: graphql.Float},
			"lon":          &graphql.Field{Type: graphql.Float},
			"place_id":     &graphql.Field{Type: graphql.Int},
			"type":         &graphql.Field{Type: graphql.String},
		},
	})

	historyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteComputation",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"session_id": &graphql.Field{Type: graphql.String},
			"start":      &graphql.Field{Type: pointType},
			"end":        &graphql.Field{Type: pointType},
			"travel":     &graphql.Field{Type: graphql.String},
			"succeeded":  &graphql.Field{Type: graphql.Boolean},
			"features":   &graphql.Field{Type: graphql.Int},
		},
	})

	roadTypesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RoadTypes",
		Fields: graphql.Fields{
			"all":   &graphql.Field{Type: graphql.NewList(graphql.String)},
			"valid": &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"routingReady": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Routing collaborator readiness as last probed",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Readiness == nil {
						return false, nil
					}
					return deps.Readiness.Current(), nil
				},
			},
			"blockages": &graphql.Field{
				Type:        graphql.NewList(blockageType),
				Description: "Current blockage set",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					fc, err := deps.Routing.Blockages(p.Context)
					if err != nil {
						return nil, err
					}
					return domain.BlockageList(fc), nil
				},
			},
			"roadTypes": &graphql.Field{
				Type:        roadTypesType,
				Description: "Road-type catalog and active subset",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					all, err := deps.Routing.AllRoadTypes(p.Context)
					if err != nil {
						return nil, err
					}
					valid, err := deps.Routing.ValidRoadTypes(p.Context)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"all": all, "valid": valid}, nil
				},
			},
			"searchPlaces": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Geocode a free-text place query",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					return deps.Search.Search(p.Context, q)
				},
			},
			"routeHistory": &graphql.Field{
				Type:        graphql.NewList(historyType),
				Description: "Recent route computations",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.History == nil {
						return nil, nil
					}
					limit := p.Args["limit"].(int)
					return deps.History.Recent(p.Context, limit)
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
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
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
