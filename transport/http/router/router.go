package router

import (
	"natours/internal/handlers/auth"
	"natours/internal/handlers/booking"
	"natours/internal/handlers/review"
	"natours/internal/handlers/tour"
	"natours/internal/handlers/user"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth    auth.Handler
	User    user.Handler
	Tour    tour.Handler
	Review  review.Handler
	Booking booking.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Route("/users", func(users chi.Router) {
			r.DomainHandlers.Auth.Router(users)
			r.DomainHandlers.User.Router(users)
		})

		routerGroup.Route("/tours", func(tours chi.Router) {
			r.DomainHandlers.Tour.Router(tours)
			tours.Route("/{id}/reviews", r.DomainHandlers.Review.Router)
			tours.Route("/{id}/bookings", r.DomainHandlers.Booking.TourRouter)
		})

		routerGroup.Route("/reviews", r.DomainHandlers.Review.Router)
		routerGroup.Route("/bookings", r.DomainHandlers.Booking.Router)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
