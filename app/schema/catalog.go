// Package schema exposes the catalog as a read-only GraphQL query.
package schema

import (
	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/furnivision/app/services"
	gql "github.com/shashiranjanraj/furnivision/pkg/graphql"
)

var dimensionsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dimensions",
	Fields: graphql.Fields{
		"width":  &graphql.Field{Type: graphql.Float},
		"height": &graphql.Field{Type: graphql.Float},
		"depth":  &graphql.Field{Type: graphql.Float},
		"unit":   &graphql.Field{Type: graphql.String},
	},
})

var hotspotType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Hotspot",
	Fields: graphql.Fields{
		"position": &graphql.Field{Type: graphql.String},
		"normal":   &graphql.Field{Type: graphql.String},
		"text":     &graphql.Field{Type: graphql.String},
	},
})

// productType fields resolve through the product's json tags.
var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"dimensions":  &graphql.Field{Type: dimensionsType},
		"image":       &graphql.Field{Type: graphql.String},
		"model3d":     &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"style":       &graphql.Field{Type: graphql.String},
		"material":    &graphql.Field{Type: graphql.NewList(graphql.String)},
		"colors":      &graphql.Field{Type: graphql.NewList(graphql.String)},
		"vendorId":    &graphql.Field{Type: graphql.String},
		"vendorName":  &graphql.Field{Type: graphql.String},
		"hotspots":    &graphql.Field{Type: graphql.NewList(hotspotType)},
	},
})

// Catalog builds the schema over catalog:
//
//	{ products(category: "Sofas", query: "linear") { id name price } }
//	{ product(id: "p1") { name hotspots { text } } }
//	{ categories }
func Catalog(catalog *services.CatalogService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"query":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category, _ := p.Args["category"].(string)
					q, _ := p.Args["query"].(string)
					return catalog.List(services.ProductFilter{Category: category, Query: q}), nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					prod, err := catalog.Get(id)
					if err != nil {
						return nil, nil
					}
					return prod, nil
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return catalog.Categories(), nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}
