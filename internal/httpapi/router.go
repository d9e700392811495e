package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/cart"
	"github.com/fashionmart/storefront/internal/catalog"
	"github.com/fashionmart/storefront/internal/checkout"
	"github.com/fashionmart/storefront/internal/orders"
	"github.com/fashionmart/storefront/internal/payment"
	"github.com/fashionmart/storefront/internal/subscribers"
	"github.com/fashionmart/storefront/internal/users"
)

// Deps bundles everything the router needs.
type Deps struct {
	Carts       *cart.Service
	Catalog     *catalog.Service
	Checkouts   *checkout.Service
	Orders      *orders.Service
	Users       *users.Service
	Subscribers *subscribers.Service
	Charger     payment.Charger
	Tokens      *users.TokenIssuer
	Log         *zap.Logger
}

func NewRouter(deps Deps) http.Handler {
	cartHandler := NewCartHandler(deps.Carts, deps.Log)
	productHandler := NewProductHandler(deps.Catalog, deps.Log)
	checkoutHandler := NewCheckoutHandler(deps.Checkouts, deps.Carts, deps.Charger, deps.Log)
	orderHandler := NewOrderHandler(deps.Orders, deps.Log)
	userHandler := NewUserHandler(deps.Users, deps.Tokens, deps.Log)
	subscriberHandler := NewSubscriberHandler(deps.Subscribers, deps.Log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(deps.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(chimiddleware.Compress(5))
	r.Use(Authenticate(deps.Tokens))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/", cartHandler.AddItem)
			r.Put("/", cartHandler.UpdateQuantity)
			r.Delete("/", cartHandler.RemoveItem)
			r.With(RequireAuth).Post("/merge", cartHandler.Merge)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(RequireAuth)
			r.Post("/", checkoutHandler.Create)
			r.Put("/pay", checkoutHandler.Pay)
			r.Get("/{id}", checkoutHandler.Get)
			r.Post("/{id}/finalize", checkoutHandler.Finalize)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.With(RequireAuth).Get("/profile", userHandler.Profile)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/my-orders", orderHandler.ListMine)
			r.Get("/{id}", orderHandler.Get)
		})

		r.Post("/subscribe", subscriberHandler.Subscribe)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Route("/products", func(r chi.Router) {
				r.Post("/", productHandler.Create)
				r.Put("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})
			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.ListAll)
				r.Post("/", userHandler.Create)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListAll)
				r.Put("/{id}", orderHandler.UpdateStatus)
				r.Delete("/{id}", orderHandler.Delete)
			})
		})
	})

	return r
}
