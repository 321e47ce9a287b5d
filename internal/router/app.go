package router

import (
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/billing"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/config"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/notify"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/repository"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/worker"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App is the composition root shared by the HTTP router and the background
// goroutines started in main.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Clock  service.Clock
	Mailer *infra.Mailer

	NotificationsHub *notify.Hub
	RegistrationsHub *notify.Hub

	Auth      service.AuthService
	BoxLists  service.BoxListService
	Tickets   service.TicketService
	Customers service.CustomerService
	Receipts  service.ReceiptService
	Interests service.InterestService
	Notes     service.NoteService
}

// NewApp builds repositories and services from the loaded configuration.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock := service.NewClock(loc)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	boxRepo := repository.NewBoxListRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	interestRepo := repository.NewInterestRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	// ── Async plumbing ───────────────────────────────────────────────────────
	publisher := notify.NewPublisher(rdb)
	dispatcher := worker.NewDispatcher(rdb)

	shift := billing.Shift{DayStartHour: cfg.DayStartHour, NightStartHour: cfg.NightStartHour}

	return &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Clock:  clock,
		Mailer: infra.NewMailer(cfg),

		NotificationsHub: notify.NewHub(notify.ChannelNotifications),
		RegistrationsHub: notify.NewHub(notify.ChannelRegistrations),

		Auth:      service.NewAuthService(userRepo, cfg),
		BoxLists:  service.NewBoxListService(boxRepo, clock),
		Tickets:   service.NewTicketService(ticketRepo, boxRepo, publisher, clock, service.TicketConfig{Shift: shift}),
		Customers: service.NewCustomerService(customerRepo, receiptRepo, interestRepo, clock),
		Receipts:  service.NewReceiptService(receiptRepo, customerRepo, boxRepo, dispatcher, clock),
		Interests: service.NewInterestService(interestRepo, customerRepo, receiptRepo),
		Notes:     service.NewNoteService(noteRepo, publisher, clock),
	}, nil
}
