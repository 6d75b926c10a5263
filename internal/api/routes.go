package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerPublicRoutes(app, handler)
	registerAdminRoutes(app, handler)
	app.Use(handler.NotFound)
}

func registerPublicRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	app.Get("/lang/:lang", handler.SetLanguage)

	app.Get("/", handler.CurrentUserMiddleware, handler.ShowHome)
	app.Post("/login", handler.Login)
	app.Get("/logout", handler.Logout)
	app.Post("/product/:id", handler.CurrentUserMiddleware, handler.RecordConsumption)
}

func registerAdminRoutes(app *fiber.App, handler *Handler) {
	guards := []fiber.Handler{handler.adminBasicAuth(), handler.adminAuthenticated}

	app.Get("/metrics", append(guards, handler.Metrics())...)

	admin := app.Group("/admin", guards...)
	admin.Get("", handler.ShowAdmin)
	admin.Post("/users/add", handler.AddUser)
	admin.Get("/user/:id", handler.ShowUser)
	admin.Post("/user/:id/remove", handler.RemoveUser)
	admin.Post("/products/add", handler.AddProduct)
	admin.Get("/product/:id", handler.ShowProduct)
	admin.Post("/product/:id/remove", handler.RemoveProduct)
	admin.Post("/product/:id/edit", handler.EditProduct)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
