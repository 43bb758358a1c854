package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/herdirudian/thelodgemember-sub002/internal/config"
	"github.com/herdirudian/thelodgemember-sub002/internal/http/handlers"
	"github.com/herdirudian/thelodgemember-sub002/internal/http/middleware"
	"github.com/herdirudian/thelodgemember-sub002/internal/mailer"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/bookings"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/notifications"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/payments"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/vouchers"
	"github.com/herdirudian/thelodgemember-sub002/internal/storage"
)

// Deps are the process-wide collaborators, constructed once in main and
// injected here (no module-level singletons).
type Deps struct {
	Logger  *slog.Logger
	DB      *gorm.DB
	Cfg     config.Config
	Gateway payments.Gateway
	Mailer  mailer.Service
	Assets  storage.Storage
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.ErrorHandler(d.Logger))

	store := payments.NewGormStore(d.DB)
	repo := bookings.NewRepo(d.DB)

	sender := notifications.NewMailerAdapter(d.Mailer, d.Cfg.SMTP.FromAddr, d.Cfg.SMTP.FromName)
	builder := vouchers.NewBuilder(d.Cfg.App.BaseURL, d.Assets, d.Logger)
	issuer := vouchers.NewIssuer(builder, sender)

	reconciler := payments.NewReconciler(store, issuer, d.Logger)
	invoiceSvc := payments.NewService(d.DB, d.Gateway, d.Cfg.Gateway, d.Logger)

	webhookH := handlers.NewWebhookHandler(d.Logger, reconciler, d.Cfg.Gateway.CallbackSecret)
	bookingH := handlers.NewBookingHandler(d.Logger, repo, invoiceSvc)
	paymentH := handlers.NewPaymentHandler(d.Logger, store, d.Gateway, reconciler)
	voucherH := handlers.NewVoucherHandler(d.Logger, repo)

	r.POST("/webhooks/payments", webhookH.Handle)

	api := r.Group("/api")
	{
		api.POST("/bookings/tickets", bookingH.CreateTicketBooking)
		api.POST("/bookings/accommodations", bookingH.CreateAccommodationBooking)
		api.GET("/payments/:externalID", paymentH.GetByExternalID)
		api.POST("/payments/:externalID/resync", paymentH.Resync)
		api.POST("/payments/:externalID/expire", paymentH.Expire)
		api.GET("/vouchers/:code/verify", voucherH.Verify)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}
