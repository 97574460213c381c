package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucasmoraes/clinicore-backend/api/controllers"
	"github.com/lucasmoraes/clinicore-backend/api/middleware"
	"github.com/lucasmoraes/clinicore-backend/internal/pricing"
	"github.com/lucasmoraes/clinicore-backend/internal/quotations"
	"github.com/lucasmoraes/clinicore-backend/pkg/config"
	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
	pkgredis "github.com/lucasmoraes/clinicore-backend/pkg/redis"
)

// NewRouter wires every HTTP surface of the API. All business routes sit
// behind ClinicContext; repositories additionally filter by clinic_id.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *pkgredis.Client,
	pubsubP controllers.Pinger,
	pricingService pricing.Service,
	quotationService quotations.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisPinger controllers.Pinger
	var idempotencyStore pkgredis.IdempotencyStore
	if redisClient != nil {
		redisPinger = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger, pubsubP))
	})

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ClinicContext(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.ClinicPing())

		r.Route("/price-tables", func(r chi.Router) {
			r.Post("/", controllers.PriceTableCreate(pricingService, logg))
			r.Get("/", controllers.PriceTableList(pricingService, logg))
			r.Get("/{tableId}", controllers.PriceTableGet(pricingService, logg))
			r.Patch("/{tableId}", controllers.PriceTableUpdate(pricingService, logg))
			r.Post("/{tableId}/default", controllers.PriceTableSetDefault(pricingService, logg))
			r.Post("/{tableId}/entries", controllers.PriceEntryCreate(pricingService, logg))
			r.Get("/{tableId}/entries", controllers.PriceEntryList(pricingService, logg))
		})
		r.Delete("/price-entries/{entryId}", controllers.PriceEntryDeactivate(pricingService, logg))

		r.Get("/items/{itemId}/price", controllers.PriceResolve(pricingService, logg))

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", controllers.CampaignCreate(pricingService, logg))
			r.Get("/", controllers.CampaignList(pricingService, logg))
			r.Get("/{campaignId}", controllers.CampaignGet(pricingService, logg))
			r.Patch("/{campaignId}", controllers.CampaignUpdate(pricingService, logg))
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Post("/calculate", controllers.QuotationCalculate(quotationService, logg))
			r.Post("/", controllers.QuotationCreate(quotationService, logg))
			r.Get("/", controllers.QuotationList(quotationService, logg))
			r.Get("/{quotationId}", controllers.QuotationGet(quotationService, logg))
			r.Post("/{quotationId}/approve", controllers.QuotationApprove(quotationService, logg))
			r.Post("/{quotationId}/reject", controllers.QuotationReject(quotationService, logg))
			r.Post("/{quotationId}/convert", controllers.QuotationConvert(quotationService, logg))
			r.Post("/{quotationId}/cancel", controllers.QuotationCancel(quotationService, logg))
		})
	})

	return r
}
