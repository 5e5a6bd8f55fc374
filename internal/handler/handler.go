package handler

import (
	"context"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/carelink-ndis/care-roster/backend/internal/calendar"
	"github.com/carelink-ndis/care-roster/backend/internal/config"
	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/carelink-ndis/care-roster/backend/internal/invoice"
	"github.com/carelink-ndis/care-roster/backend/internal/ratecard"
	"github.com/carelink-ndis/care-roster/backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type rateCardReader interface {
	Items(ctx context.Context, category string) ([]billing.LineItem, error)
	Invalidate(ctx context.Context, categories ...string)
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	shifts      shiftStore
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	rateCards   rateCardReader
	invoices    *invoice.Renderer
	calendar    *calendar.Syncer
	location    *time.Location

	Mux *chi.Mux
}

// NewHandler wires the API. syncer may be nil when calendar sync is not
// configured.
func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client, syncer *calendar.Syncer) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		shifts:      repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		rateCards:   ratecard.NewCache(rdb, repo, time.Duration(cfg.Redis.RateCardTTL)*time.Second),
		invoices:    invoice.NewRenderer(cfg.Invoice.TemplatePath),
		calendar:    syncer,
		location:    loc,

		Mux: chi.NewRouter(),
	}, nil
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}
	return validate, trans, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	adminOnly := h.RequiredRole([]domain.Role{domain.RoleAdmin})

	// everything below needs a session
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(adminOnly).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(adminOnly).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(adminOnly).Delete("/", h.DeleteUser)
				r.With(adminOnly).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/carers", func(r chi.Router) {
			r.Post("/", h.CreateCarer)
			r.Get("/", h.GetAllCarers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.carer)
				r.Get("/", h.GetCarer)
				r.Patch("/", h.UpdateCarer)
				r.With(adminOnly).Delete("/", h.DeleteCarer)
			})
		})

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", h.CreateClient)
			r.Get("/", h.GetAllClients)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.client)
				r.Get("/", h.GetClient)
				r.Patch("/", h.UpdateClient)
				r.With(adminOnly).Delete("/", h.DeleteClient)
			})
		})

		r.Route("/line-items", func(r chi.Router) {
			r.With(adminOnly).Post("/", h.CreateLineItem)
			r.Get("/", h.GetLineItems)
			r.Get("/categories", h.GetLineItemCategories)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.lineItem)
				r.Get("/", h.GetLineItem)
				r.With(adminOnly).Patch("/", h.UpdateLineItem)
				r.With(adminOnly).Delete("/", h.DeleteLineItem)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Post("/cost-preview", h.PreviewShiftCost)
			r.Post("/", h.CreateShift)
			r.Get("/", h.GetShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shift)
				r.Get("/", h.GetShift)
				r.Patch("/", h.UpdateShift)
				r.Delete("/", h.DeleteShift)
				r.Post("/calendar-sync", h.SyncShiftToCalendar)
			})
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", h.GenerateInvoice)
			r.Get("/", h.GetInvoices)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.invoice)
				r.Get("/", h.GetInvoice)
				r.Get("/download", h.DownloadInvoice)
				r.Post("/send", h.SendInvoice)
				r.With(adminOnly).Delete("/", h.DeleteInvoice)
			})
		})
	})
}
