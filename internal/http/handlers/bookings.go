package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/herdirudian/thelodgemember-sub002/internal/http/middleware"
	"github.com/herdirudian/thelodgemember-sub002/internal/http/validation"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/bookings"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/payments"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/vouchers"
	"github.com/herdirudian/thelodgemember-sub002/internal/shared/apperr"
)

type BookingHandler struct {
	Logger   *slog.Logger
	Repo     *bookings.Repo
	Payments *payments.Service
}

func NewBookingHandler(logger *slog.Logger, repo *bookings.Repo, svc *payments.Service) *BookingHandler {
	return &BookingHandler{Logger: logger, Repo: repo, Payments: svc}
}

type createTicketBookingRequest struct {
	TicketID      string `json:"ticket_id" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerPhone string `json:"customer_phone"`
	Quantity      int    `json:"quantity" binding:"required,min=1,max=50"`
	VisitDate     string `json:"visit_date" binding:"required,datetime=2006-01-02"`
}

// POST /api/bookings/tickets
func (h *BookingHandler) CreateTicketBooking(c *gin.Context) {
	var req createTicketBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields := validation.FromBindError(err, &req)
		middleware.Fail(c, apperr.InvalidErr("Invalid booking request.", fields))
		return
	}

	ctx := c.Request.Context()

	ticket, err := h.Repo.FindTicket(ctx, req.TicketID)
	if err != nil {
		if errors.Is(err, bookings.ErrNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Ticket not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	visitDate, _ := time.Parse("2006-01-02", req.VisitDate)
	total := ticket.Price * int64(req.Quantity)

	// Invoices expire at end of visit day at the latest.
	expiry := visitDate.Add(24 * time.Hour)
	inv, err := h.Payments.CreateInvoice(ctx, payments.CreateInvoiceInput{
		Amount:        total,
		Description:   ticket.Name,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		ExpiryDate:    &expiry,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	now := time.Now()
	b := bookings.TicketBooking{
		ID:            uuid.NewString(),
		TicketID:      ticket.ID,
		PaymentID:     inv.Payment.ID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Quantity:      req.Quantity,
		VisitDate:     visitDate,
		TotalAmount:   total,
		Status:        bookings.StatusPending,
		FriendlyCode:  vouchers.NewFriendlyCode(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.QRPayload = vouchers.NewPayloadHash(b.ID, inv.Payment.ExternalID)

	// Friendly codes are short; regenerate on the rare unique-key collision.
	err = h.Repo.CreateTicketBooking(ctx, &b)
	for attempt := 0; err != nil && bookings.IsDuplicateKey(err) && attempt < 3; attempt++ {
		b.FriendlyCode = vouchers.NewFriendlyCode()
		err = h.Repo.CreateTicketBooking(ctx, &b)
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	h.Logger.InfoContext(ctx, "ticket booking created",
		"booking_id", b.ID, "external_id", inv.Payment.ExternalID, "total", total)

	c.JSON(http.StatusCreated, gin.H{
		"booking_id":  b.ID,
		"external_id": inv.Payment.ExternalID,
		"invoice_url": inv.InvoiceURL,
		"total":       total,
		"status":      b.Status,
	})
}

type createAccommodationBookingRequest struct {
	AccommodationID string `json:"accommodation_id" binding:"required"`
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerEmail   string `json:"customer_email" binding:"required,email"`
	CustomerPhone   string `json:"customer_phone"`
	CheckIn         string `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut        string `json:"check_out" binding:"required,datetime=2006-01-02"`
	Guests          int    `json:"guests" binding:"required,min=1"`
}

// POST /api/bookings/accommodations
func (h *BookingHandler) CreateAccommodationBooking(c *gin.Context) {
	var req createAccommodationBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields := validation.FromBindError(err, &req)
		middleware.Fail(c, apperr.InvalidErr("Invalid booking request.", fields))
		return
	}

	ctx := c.Request.Context()

	acc, err := h.Repo.FindAccommodation(ctx, req.AccommodationID)
	if err != nil {
		if errors.Is(err, bookings.ErrNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Accommodation not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	checkIn, _ := time.Parse("2006-01-02", req.CheckIn)
	checkOut, _ := time.Parse("2006-01-02", req.CheckOut)
	nights := int64(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		middleware.Fail(c, apperr.InvalidErr("Check-out must be after check-in.", map[string]string{
			"check_out": "Must be after check_in.",
		}))
		return
	}
	if req.Guests > acc.MaxGuests {
		middleware.Fail(c, apperr.InvalidErr("Too many guests for this unit.", map[string]string{
			"guests": "Exceeds the unit capacity.",
		}))
		return
	}

	total := acc.PricePerNight * nights

	inv, err := h.Payments.CreateInvoice(ctx, payments.CreateInvoiceInput{
		Amount:        total,
		Description:   acc.Name,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	now := time.Now()
	b := bookings.AccommodationBooking{
		ID:              uuid.NewString(),
		AccommodationID: acc.ID,
		PaymentID:       inv.Payment.ID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Guests,
		TotalAmount:     total,
		Status:          bookings.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.Repo.CreateAccommodationBooking(ctx, &b); err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	h.Logger.InfoContext(ctx, "accommodation booking created",
		"booking_id", b.ID, "external_id", inv.Payment.ExternalID, "nights", nights, "total", total)

	c.JSON(http.StatusCreated, gin.H{
		"booking_id":  b.ID,
		"external_id": inv.Payment.ExternalID,
		"invoice_url": inv.InvoiceURL,
		"total":       total,
		"status":      b.Status,
	})
}
