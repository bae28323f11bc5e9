package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brainrot-market/market-service/internal/api/http/handlers"
	"github.com/brainrot-market/market-service/internal/auth"
	"github.com/brainrot-market/market-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Checkout       *handlers.CheckoutHandler
	Users          *handlers.UsersHandler
	Admin          *handlers.AdminHandler
	Tickets        *handlers.TicketsHandler
	Threads        *handlers.ThreadsHandler
	Products       *handlers.ProductsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Checkout endpoints are called by the storefront before login.
	api.Post("/stripe/create-checkout-session", cfg.Checkout.CreateStripeSession)
	api.Get("/stripe/verify-session", cfg.Checkout.VerifyStripeSession)
	api.Post("/stripe/verify-session", cfg.Checkout.VerifyStripeSession)
	api.Post("/paypal/create-order", cfg.Checkout.CreatePayPalOrder)
	api.Get("/paypal/orders/:id", cfg.Checkout.GetPayPalOrder)

	api.Post("/auth/register", cfg.Users.Register)
	api.Post("/auth/login", cfg.Users.Login)
	api.Get("/maintenance", cfg.Admin.GetMaintenance)
	api.Get("/products", cfg.Products.ListProducts)
	api.Get("/products/:id", cfg.Products.GetProduct)

	authed := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	authed.Get("/users/me", cfg.Users.Me)
	authed.Patch("/users/me", cfg.Users.UpdateMe)
	authed.Get("/users/me/wallet", cfg.Users.Wallet)

	authed.Post("/products", cfg.Products.CreateProduct)
	authed.Post("/products/:id/purchase", cfg.Products.PurchaseProduct)
	authed.Delete("/products/:id", cfg.Products.RemoveProduct)

	authed.Post("/tickets", cfg.Tickets.CreateTicket)
	authed.Get("/tickets", cfg.Tickets.ListTickets)
	authed.Get("/tickets/:id", cfg.Tickets.GetTicket)
	authed.Post("/tickets/:id/messages", cfg.Tickets.Reply)
	authed.Post("/tickets/:id/close", cfg.Tickets.CloseTicket)

	authed.Post("/threads", cfg.Threads.CreateThread)
	authed.Get("/threads", cfg.Threads.ListThreads)
	authed.Get("/threads/:id", cfg.Threads.GetThread)
	authed.Post("/threads/:id/messages", cfg.Threads.SendMessage)

	authed.Get("/notifications", cfg.Notifications.Inbox)
	authed.Post("/notifications/read", cfg.Notifications.MarkRead)

	// Staff surface. Mutating user and site operations require the
	// moderator tier or above; helpers handle the ticket queue.
	staff := authed.Group("/admin", auth.RequireStaff())
	staff.Get("/overview", cfg.Admin.Overview)
	staff.Get("/tickets", cfg.Tickets.Queue)
	staff.Get("/users", cfg.Admin.ListUsers)
	staff.Get("/users/find", cfg.Admin.FindUser)
	staff.Get("/announcements", cfg.Admin.ListAnnouncements)

	mods := staff.Group("", auth.RequireRole(domain.RoleModerator, domain.RoleFounder))
	mods.Post("/users/:id/role", cfg.Admin.SetRole)
	mods.Post("/users/:id/tempban", cfg.Admin.TempBan)
	mods.Post("/users/:id/ban", cfg.Admin.PermBan)
	mods.Post("/users/:id/unban", cfg.Admin.Unban)
	mods.Post("/users/:id/warn", cfg.Admin.Warn)
	mods.Post("/users/:id/credit", cfg.Admin.Credit)
	mods.Post("/announcements", cfg.Admin.Announce)
	mods.Put("/promotion", cfg.Admin.SetPromotion)
	mods.Get("/promotion", cfg.Admin.GetPromotion)
	mods.Put("/maintenance", cfg.Admin.SetMaintenance)
	mods.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)
}
