package transport

import (
	"errors"
	"net/http"
	"time"

	"reservas-api/internal/domain"
	"reservas-api/internal/middleware"
	"reservas-api/internal/repository"
	"reservas-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateReservationRequest books a product or a custom package. Exactly
// one of the two references must be present.
type CreateReservationRequest struct {
	ProductID       *string   `json:"product_id" validate:"omitempty,uuid"`
	CustomPackageID *string   `json:"custom_package_id" validate:"omitempty,uuid"`
	Quantity        int       `json:"quantity" validate:"required,gte=1"`
	ReservationDate time.Time `json:"reservation_date" validate:"required"`
}

// UpdateReservationRequest changes a reservation. A missing product_id
// keeps the current product.
type UpdateReservationRequest struct {
	ProductID       *string   `json:"product_id" validate:"omitempty,uuid"`
	Quantity        int       `json:"quantity" validate:"required,gte=1"`
	ReservationDate time.Time `json:"reservation_date" validate:"required"`
	Status          string    `json:"status" validate:"required"`
}

// DirectSaleRequest is a point-of-sale booking with immediate payment
type DirectSaleRequest struct {
	ProductID     string  `json:"product_id" validate:"required,uuid"`
	ClientName    string  `json:"client_name" validate:"required,max=255"`
	ClientPhone   string  `json:"client_phone" validate:"required,max=15"`
	ClientEmail   *string `json:"client_email" validate:"omitempty,email"`
	Quantity      int     `json:"quantity" validate:"required,gte=1"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	OperationCode *string `json:"operation_code"`
	Note          *string `json:"note"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url"`
}

// ReservationHandler handles HTTP requests for reservations
type ReservationHandler struct {
	reservations service.ReservationService
	payments     service.PaymentRecorder
	logger       *zap.Logger
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservations service.ReservationService, payments service.PaymentRecorder, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		reservations: reservations,
		payments:     payments,
		logger:       logger,
	}
}

// RegisterRoutes registers all reservation routes. Every route requires
// an authenticated identity; direct sales and entrepreneur listings
// additionally require the entrepreneur or admin role.
func (h *ReservationHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Get("/reservations", h.ListMine)
			r.Post("/reservations", h.Create)
			r.Get("/reservations/{id}", h.Show)
			r.Put("/reservations/{id}", h.Update)
			r.Delete("/reservations/{id}", h.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(h.logger, domain.RoleEntrepreneur, domain.RoleAdmin))
				r.Post("/reservations/direct-sale", h.DirectSale)
				r.Post("/reservations/{id}/payment/confirm", h.ConfirmPayment)
				r.Get("/entrepreneurs/{id}/reservations", h.ListForEntrepreneur)
			})
		})
	})
}

// identity extracts the authenticated user ID set by the auth middleware
func identity(r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// respondServiceError maps lifecycle errors onto HTTP statuses
func (h *ReservationHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusBadRequest, "insufficient stock")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrPackageNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "custom package not found")
	case errors.Is(err, repository.ErrReservationNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "reservation not found")
	case errors.Is(err, repository.ErrPaymentNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "payment not found")
	case errors.Is(err, service.ErrNotOwner):
		middleware.RespondWithError(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrPackageImmutable):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidTarget), errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrInvalidStatus):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("Reservation operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ListMine returns the caller's ten most recent reservations
func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	views, err := h.reservations.ListForUser(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, views)
}

// ListForEntrepreneur returns reservations touching an entrepreneur's
// products. Entrepreneurs may only list their own; admins may list anyone's.
func (h *ReservationHandler) ListForEntrepreneur(w http.ResponseWriter, r *http.Request) {
	callerID, ok := identity(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entrepreneurID, err := pathID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid entrepreneur ID")
		return
	}

	role, _ := middleware.GetUserRole(r.Context())
	if callerID != entrepreneurID && role != domain.RoleAdmin {
		middleware.RespondWithError(w, http.StatusForbidden, "not authorized")
		return
	}

	views, err := h.reservations.ListForEntrepreneur(r.Context(), entrepreneurID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, views)
}

// Create books a reservation for the authenticated customer
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateReservationRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Reservation validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, http.StatusUnprocessableEntity, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := targetFromRequest(req.ProductID, req.CustomPackageID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	reservation, err := h.reservations.Create(r.Context(), userID, service.CreateReservationInput{
		Target:          target,
		Quantity:        req.Quantity,
		ReservationDate: req.ReservationDate,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.logger.Info("Reservation created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("user_id", userID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, reservation)
}

// targetFromRequest builds the tagged target from the two optional
// references, rejecting both-set and neither-set
func targetFromRequest(productID, packageID *string) (domain.ReservationTarget, error) {
	if (productID == nil) == (packageID == nil) {
		return domain.ReservationTarget{}, service.ErrInvalidTarget
	}

	if productID != nil {
		id, err := uuid.Parse(*productID)
		if err != nil {
			return domain.ReservationTarget{}, service.ErrInvalidTarget
		}
		return domain.TargetProduct(id), nil
	}

	id, err := uuid.Parse(*packageID)
	if err != nil {
		return domain.ReservationTarget{}, service.ErrInvalidTarget
	}
	return domain.TargetPackage(id), nil
}

// Update changes a reservation's product, quantity, date or status
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid reservation ID")
		return
	}

	var req UpdateReservationRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Reservation update validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, http.StatusBadRequest, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.UpdateReservationInput{
		Quantity:        req.Quantity,
		ReservationDate: req.ReservationDate,
		Status:          req.Status,
	}
	if req.ProductID != nil {
		productID, err := uuid.Parse(*req.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
			return
		}
		in.ProductID = &productID
	}

	reservation, err := h.reservations.Update(r.Context(), id, in)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, reservation)
}

// Show returns the full nested view of a reservation, payment included
func (h *ReservationHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid reservation ID")
		return
	}

	view, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Delete removes a reservation; only the owning customer may do so
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := pathID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid reservation ID")
		return
	}

	if err := h.reservations.Delete(r.Context(), id, userID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.logger.Info("Reservation deleted",
		zap.String("reservation_id", id.String()),
		zap.String("user_id", userID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "reservation deleted"})
}

// ConfirmPayment marks the pending payment of a reservation as confirmed
// by the acting staff member
func (h *ReservationHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	staffID, ok := identity(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	reservationID, err := pathID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid reservation ID")
		return
	}

	payment, err := h.payments.Confirm(r.Context(), reservationID, staffID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.logger.Info("Payment confirmed",
		zap.String("reservation_id", reservationID.String()),
		zap.String("staff_id", staffID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, payment)
}

// DirectSale books and pays a reservation for a walk-in customer
func (h *ReservationHandler) DirectSale(w http.ResponseWriter, r *http.Request) {
	staffID, ok := identity(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req DirectSaleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Direct sale validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, http.StatusBadRequest, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	result, err := h.reservations.DirectSale(r.Context(), staffID, service.DirectSaleInput{
		ProductID: productID,
		Contact: service.CustomerContact{
			Name:  req.ClientName,
			Phone: req.ClientPhone,
			Email: req.ClientEmail,
		},
		Quantity:      req.Quantity,
		PaymentMethod: req.PaymentMethod,
		OperationCode: req.OperationCode,
		Note:          req.Note,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.logger.Info("Direct sale completed",
		zap.String("reservation_id", result.Reservation.ID.String()),
		zap.String("staff_id", staffID.String()),
		zap.Bool("client_created", result.ClientCreated),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, result)
}
