package routegroups

import (
	"inventory-system/api/handlers"

	"github.com/go-chi/chi/v5"
)

func RegisterIngredients(apiRouter chi.Router, ingredients *handlers.IngredientsHandler) {
	apiRouter.Route("/ingredients", func(ingredientsRouter chi.Router) {
		ingredientsRouter.MethodFunc("GET", "/", ingredients.List)
		ingredientsRouter.MethodFunc("POST", "/", ingredients.Create)
		ingredientsRouter.MethodFunc("GET", "/barcode/{code}", ingredients.GetByBarcode)
		ingredientsRouter.MethodFunc("GET", "/{id:[0-9]+}", ingredients.Get)
		ingredientsRouter.MethodFunc("PUT", "/{id:[0-9]+}", ingredients.Update)
		ingredientsRouter.MethodFunc("DELETE", "/{id:[0-9]+}", ingredients.Delete)
		ingredientsRouter.MethodFunc("POST", "/{id:[0-9]+}/flag", ingredients.Flag)
		ingredientsRouter.MethodFunc("POST", "/{id:[0-9]+}/unflag", ingredients.Unflag)
	})
}

func RegisterProducts(apiRouter chi.Router, products *handlers.ProductsHandler, groups *handlers.GroupsHandler) {
	apiRouter.Route("/products", func(productsRouter chi.Router) {
		productsRouter.MethodFunc("GET", "/", products.List)
		productsRouter.MethodFunc("POST", "/", products.Create)
		productsRouter.MethodFunc("GET", "/{id:[0-9]+}", products.Get)
		productsRouter.MethodFunc("PUT", "/{id:[0-9]+}", products.Update)
		productsRouter.MethodFunc("DELETE", "/{id:[0-9]+}", products.Delete)
		productsRouter.MethodFunc("POST", "/{id:[0-9]+}/amount", products.UpdateAmount)
		productsRouter.MethodFunc("GET", "/{id:[0-9]+}/events", products.Events)
		productsRouter.MethodFunc("PUT", "/{id:[0-9]+}/parameters/{param_id:[0-9]+}", groups.SetParameterValue)
	})
}

func RegisterGroups(apiRouter chi.Router, groups *handlers.GroupsHandler) {
	apiRouter.Route("/groups", func(groupsRouter chi.Router) {
		groupsRouter.MethodFunc("GET", "/", groups.List)
		groupsRouter.MethodFunc("POST", "/", groups.Create)
		groupsRouter.MethodFunc("GET", "/{id:[0-9]+}", groups.Get)
		groupsRouter.MethodFunc("PUT", "/{id:[0-9]+}", groups.Update)
		groupsRouter.MethodFunc("DELETE", "/{id:[0-9]+}", groups.Delete)
		groupsRouter.MethodFunc("POST", "/{id:[0-9]+}/products/{product_id:[0-9]+}", groups.AddProduct)
		groupsRouter.MethodFunc("DELETE", "/{id:[0-9]+}/products/{product_id:[0-9]+}", groups.RemoveProduct)
		groupsRouter.MethodFunc("POST", "/{id:[0-9]+}/parameters", groups.AddParameter)
		groupsRouter.MethodFunc("DELETE", "/{id:[0-9]+}/parameters/{param_id:[0-9]+}", groups.DeleteParameter)
	})
}
