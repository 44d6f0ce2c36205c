// Package http exposes the partner client over a small REST surface: the
// ranked live feed, the order detail view, the lifecycle operations and the
// session controls that drive the identity resolver.
package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"partnerfeed/internal/adapters/out/envsession"
	"partnerfeed/internal/adapters/out/weblauncher"
	"partnerfeed/internal/core/application/feed"
	"partnerfeed/internal/core/application/identity"
	"partnerfeed/internal/core/application/tracking"
	"partnerfeed/internal/core/application/usecases/commands"
	"partnerfeed/internal/core/application/usecases/queries"
	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/domain/services"
	"partnerfeed/internal/pkg/errs"
)

// CompleteHandlerFactory builds a complete-order handler bound to the
// request's confirmation decision.
type CompleteHandlerFactory func(confirmed bool) commands.CompleteOrderCommandHandler

// Server wires HTTP requests to the application components and use cases.
type Server struct {
	resolver *identity.Resolver
	feed     *feed.Synchronizer
	tracker  *tracking.Tracker
	ranker   services.GeoRanker
	sessions *envsession.Provider

	beginTransitHandler commands.BeginTransitCommandHandler
	completeFactory     CompleteHandlerFactory
	detailsHandler      queries.GetOrderDetailsQueryHandler
}

// NewServer creates the HTTP server over the running application components.
func NewServer(
	resolver *identity.Resolver,
	synchronizer *feed.Synchronizer,
	tracker *tracking.Tracker,
	ranker services.GeoRanker,
	sessions *envsession.Provider,
	beginTransitHandler commands.BeginTransitCommandHandler,
	completeFactory CompleteHandlerFactory,
	detailsHandler queries.GetOrderDetailsQueryHandler,
) *Server {
	return &Server{
		resolver:            resolver,
		feed:                synchronizer,
		tracker:             tracker,
		ranker:              ranker,
		sessions:            sessions,
		beginTransitHandler: beginTransitHandler,
		completeFactory:     completeFactory,
		detailsHandler:      detailsHandler,
	}
}

// MountRoutes registers all routes on the echo instance.
func (s *Server) MountRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)
	e.GET("/api/v1/feed", s.GetFeed)
	e.GET("/api/v1/orders/:id", s.GetOrderDetails)
	e.POST("/api/v1/orders/:id/transit", s.BeginTransit)
	e.POST("/api/v1/orders/:id/complete", s.CompleteOrder)
	e.POST("/api/v1/session/signin", s.SignIn)
	e.POST("/api/v1/session/signout", s.SignOut)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type feedResponse struct {
	Partner *partnerJSON    `json:"partner"`
	Ranked  bool            `json:"ranked"`
	Orders  []feedOrderJSON `json:"orders"`
}

type partnerJSON struct {
	Name string `json:"name"`
}

type feedOrderJSON struct {
	ID          string       `json:"id"`
	Destination geoPointJSON `json:"destination"`
	Total       float64      `json:"total"`
	Status      string       `json:"status"`
	DistanceKm  *float64     `json:"distanceKm,omitempty"`
}

type geoPointJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type orderDetailsResponse struct {
	ID            string        `json:"id"`
	Destination   geoPointJSON  `json:"destination"`
	Items         []itemJSON    `json:"items"`
	Total         float64       `json:"total"`
	Status        string        `json:"status"`
	Customer      *customerJSON `json:"customer,omitempty"`
	DirectionsURL string        `json:"directionsUrl"`
}

type itemJSON struct {
	ProductName string  `json:"productName"`
	WeightKg    float64 `json:"weightKg"`
	Amount      float64 `json:"amount"`
}

type customerJSON struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	DialURL     string `json:"dialUrl"`
	FlatNo      string `json:"flatNo"`
	Street      string `json:"street"`
	Landmark    string `json:"landmark"`
	Pincode     string `json:"pincode"`
}

type completeOrderResponse struct {
	Completed bool   `json:"completed"`
	Status    string `json:"status"`
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetFeed handles GET /api/v1/feed - the live order set ranked by distance
// from the partner's last known position.
func (s *Server) GetFeed(ctx echo.Context) error {
	response := feedResponse{Orders: []feedOrderJSON{}}

	if profile, ok := s.resolver.Current(); ok {
		response.Partner = &partnerJSON{Name: profile.Name()}
	}

	ranked := s.ranker.Rank(s.feed.Snapshot(), s.tracker.LastPoint())
	for _, entry := range ranked {
		orderJSON := feedOrderJSON{
			ID: entry.Order.ID().String(),
			Destination: geoPointJSON{
				Latitude:  entry.Order.Destination().Latitude(),
				Longitude: entry.Order.Destination().Longitude(),
			},
			Total:  entry.Order.Total(),
			Status: entry.Order.Status().String(),
		}
		if entry.Ranked {
			distance := entry.DistanceKm
			orderJSON.DistanceKm = &distance
			response.Ranked = true
		}
		response.Orders = append(response.Orders, orderJSON)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrderDetails handles GET /api/v1/orders/:id.
func (s *Server) GetOrderDetails(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	query, err := queries.NewGetOrderDetailsQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	details, err := s.detailsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err, "Failed to retrieve order")
	}

	aggregate := details.Order
	response := orderDetailsResponse{
		ID: aggregate.ID().String(),
		Destination: geoPointJSON{
			Latitude:  aggregate.Destination().Latitude(),
			Longitude: aggregate.Destination().Longitude(),
		},
		Items:         []itemJSON{},
		Total:         aggregate.Total(),
		Status:        aggregate.Status().String(),
		DirectionsURL: weblauncher.DirectionsURL(aggregate.Destination()),
	}
	for _, item := range aggregate.Items() {
		response.Items = append(response.Items, itemJSON{
			ProductName: item.ProductName(),
			WeightKg:    item.WeightKg(),
			Amount:      item.Amount(),
		})
	}
	if details.Customer != nil {
		address := details.Customer.Address()
		response.Customer = &customerJSON{
			Name:        details.Customer.Name(),
			PhoneNumber: details.Customer.PhoneNumber(),
			DialURL:     weblauncher.DialURL(details.Customer.PhoneNumber()),
			FlatNo:      address.FlatNo,
			Street:      address.Street,
			Landmark:    address.Landmark,
			Pincode:     address.Pincode,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// BeginTransit handles POST /api/v1/orders/:id/transit.
func (s *Server) BeginTransit(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	cmd, err := commands.NewBeginTransitCommand(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	aggregate, err := s.beginTransitHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err, "Failed to begin transit")
	}

	return ctx.JSON(http.StatusOK, map[string]string{"status": aggregate.Status().String()})
}

// CompleteOrder handles POST /api/v1/orders/:id/complete. The confirm query
// parameter carries the user's decision; anything but "true" is a decline.
func (s *Server) CompleteOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	cmd, err := commands.NewCompleteOrderCommand(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	confirmed := ctx.QueryParam("confirm") == "true"
	handler := s.completeFactory(confirmed)

	result, err := handler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err, "Failed to complete order")
	}

	response := completeOrderResponse{Completed: result.Completed}
	if result.Order != nil {
		response.Status = result.Order.Status().String()
	}
	return ctx.JSON(http.StatusOK, response)
}

// SignIn handles POST /api/v1/session/signin.
func (s *Server) SignIn(ctx echo.Context) error {
	s.sessions.SignIn()
	return ctx.NoContent(http.StatusNoContent)
}

// SignOut handles POST /api/v1/session/signout.
func (s *Server) SignOut(ctx echo.Context) error {
	s.sessions.SignOut()
	return ctx.NoContent(http.StatusNoContent)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// domainError maps core errors to HTTP statuses: missing records become 404,
// rejected transitions and invalid values become 409/400, the rest 500.
func domainError(ctx echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrValueIsInvalid), errors.Is(err, errs.ErrValueIsOutOfRange):
		return ctx.JSON(http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrValueIsRequired):
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: fallback,
		})
	}
}
