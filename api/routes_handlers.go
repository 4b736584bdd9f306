package api

import "inventory-system/api/handlers"

type routeHandlers struct {
	ingredients *handlers.IngredientsHandler
	products    *handlers.ProductsHandler
	groups      *handlers.GroupsHandler
	schema      *handlers.SchemaHandler
	health      *handlers.HealthHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		ingredients: handlers.NewIngredientsHandler(s.ingredients, s.logger),
		products:    handlers.NewProductsHandler(s.products, s.groups, s.events, s.logger),
		groups:      handlers.NewGroupsHandler(s.groups, s.logger),
		schema:      handlers.NewSchemaHandler(s.db, s.descriptor, s.report, s.backups, s.logger),
		health:      handlers.NewHealthHandler(s.cfg.AppVersion),
	}
}
