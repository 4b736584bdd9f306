package routegroups

import (
	"inventory-system/api/handlers"

	"github.com/go-chi/chi/v5"
)

func RegisterSchema(apiRouter chi.Router, schema *handlers.SchemaHandler) {
	apiRouter.Route("/schema", func(schemaRouter chi.Router) {
		schemaRouter.MethodFunc("GET", "/", schema.Report)
		schemaRouter.MethodFunc("GET", "/plan", schema.Plan)
		schemaRouter.MethodFunc("GET", "/backups", schema.Backups)
	})
}

func RegisterEvents(apiRouter chi.Router, products *handlers.ProductsHandler) {
	apiRouter.MethodFunc("GET", "/events", products.RecentEvents)
}
