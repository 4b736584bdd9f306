package api

import (
	"inventory-system/api/routegroups"

	"github.com/go-chi/chi/v5"
)

func (s *Server) registerInventoryRoutes(apiRouter chi.Router, h routeHandlers) {
	routegroups.RegisterIngredients(apiRouter, h.ingredients)
	routegroups.RegisterProducts(apiRouter, h.products, h.groups)
	routegroups.RegisterGroups(apiRouter, h.groups)
	routegroups.RegisterEvents(apiRouter, h.products)
}

func (s *Server) registerSchemaRoutes(apiRouter chi.Router, h routeHandlers) {
	routegroups.RegisterSchema(apiRouter, h.schema)
}
