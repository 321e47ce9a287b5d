package service

import (
	"context"
	"sync"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Clock ────────────────────────────────────────────────────────────────────

var argentina = time.FixedZone("ART", -3*60*60)

// fixedClock returns a Clock frozen at the given local wall time; the
// pointer lets tests move time forward.
func fixedClock(y int, m time.Month, d, hh, mm int) (Clock, *time.Time) {
	now := time.Date(y, m, d, hh, mm, 0, 0, argentina)
	return Clock{Now: func() time.Time { return now }, Loc: argentina}, &now
}

// ── Box lists ────────────────────────────────────────────────────────────────

type fakeBoxRepo struct {
	mu       sync.Mutex
	lists    map[uuid.UUID]*model.BoxList
	payments map[uuid.UUID]*model.OtherPayment
	totals   repository.BoxListTotals
	next     int
	// calls records the order of the reconcile steps.
	calls []string
}

var _ repository.BoxListRepository = (*fakeBoxRepo)(nil)

func newFakeBoxRepo() *fakeBoxRepo {
	return &fakeBoxRepo{
		lists:    make(map[uuid.UUID]*model.BoxList),
		payments: make(map[uuid.UUID]*model.OtherPayment),
	}
}

func (r *fakeBoxRepo) DB() *gorm.DB { return nil }

func (r *fakeBoxRepo) FindOrCreate(_ context.Context, _ *gorm.DB, date time.Time) (*model.BoxList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bl := range r.lists {
		if bl.Date.Equal(date) {
			cp := *bl
			return &cp, nil
		}
	}
	r.next++
	bl := &model.BoxList{ID: uuid.New(), Date: date, BoxNumber: r.next, TotalPrice: decimal.Zero}
	r.lists[bl.ID] = bl
	cp := *bl
	return &cp, nil
}

func (r *fakeBoxRepo) FindByID(_ context.Context, id uuid.UUID) (*model.BoxList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bl, ok := r.lists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *bl
	return &cp, nil
}

func (r *fakeBoxRepo) FindByIDWithChildren(ctx context.Context, id uuid.UUID) (*model.BoxList, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBoxRepo) FindByDate(_ context.Context, date time.Time) (*model.BoxList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bl := range r.lists {
		if bl.Date.Equal(date) {
			cp := *bl
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBoxRepo) List(_ context.Context, _, _ *time.Time, _ dto.PageQuery) ([]model.BoxList, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.BoxList, 0, len(r.lists))
	for _, bl := range r.lists {
		out = append(out, *bl)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBoxRepo) Increment(_ context.Context, _ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bl, ok := r.lists[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	bl.TotalPrice = bl.TotalPrice.Add(delta)
	return nil
}

func (r *fakeBoxRepo) FindForUpdate(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.BoxList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "lock")
	bl, ok := r.lists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *bl
	return &cp, nil
}

func (r *fakeBoxRepo) SetTotal(_ context.Context, _ *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "set")
	bl, ok := r.lists[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	bl.TotalPrice = total
	return nil
}

func (r *fakeBoxRepo) Totals(_ context.Context, _ *gorm.DB, _ uuid.UUID) (repository.BoxListTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "totals")
	return r.totals, nil
}

func (r *fakeBoxRepo) CreateOtherPayment(_ context.Context, _ *gorm.DB, p *model.OtherPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakeBoxRepo) FindOtherPayment(_ context.Context, id uuid.UUID) (*model.OtherPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeBoxRepo) DeleteOtherPayment(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.payments, id)
	return nil
}

func (r *fakeBoxRepo) ListOtherPayments(_ context.Context, boxListID uuid.UUID) ([]model.OtherPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.OtherPayment
	for _, p := range r.payments {
		if p.BoxListID == boxListID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// total returns the running total of the box list of date.
func (r *fakeBoxRepo) total(date time.Time) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bl := range r.lists {
		if bl.Date.Equal(date) {
			return bl.TotalPrice
		}
	}
	return decimal.Zero
}

// ── Tickets ──────────────────────────────────────────────────────────────────

type fakeTicketRepo struct {
	tickets map[uuid.UUID]*model.Ticket
	regs    map[uuid.UUID]*model.TicketRegistration
	forDay  map[uuid.UUID]*model.TicketRegistrationForDay
}

var _ repository.TicketRepository = (*fakeTicketRepo)(nil)

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[uuid.UUID]*model.Ticket),
		regs:    make(map[uuid.UUID]*model.TicketRegistration),
		forDay:  make(map[uuid.UUID]*model.TicketRegistrationForDay),
	}
}

func (r *fakeTicketRepo) DB() *gorm.DB { return nil }

func (r *fakeTicketRepo) Create(_ context.Context, t *model.Ticket) error {
	for _, existing := range r.tickets {
		if existing.Barcode == t.Barcode {
			return gorm.ErrDuplicatedKey
		}
	}
	t.ID = uuid.New()
	cp := *t
	r.tickets[t.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTicketRepo) FindByBarcode(_ context.Context, barcode string) (*model.Ticket, error) {
	for _, t := range r.tickets {
		if t.Barcode == barcode {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTicketRepo) List(_ context.Context, _ dto.TicketFilter) ([]model.Ticket, int64, error) {
	out := make([]model.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTicketRepo) Update(_ context.Context, t *model.Ticket) error {
	cp := *t
	r.tickets[t.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) FindOpenRegistration(_ context.Context, _ *gorm.DB, ticketID uuid.UUID) (*model.TicketRegistration, error) {
	for _, reg := range r.regs {
		if reg.TicketID != nil && *reg.TicketID == ticketID && reg.Open() {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTicketRepo) FindRegistration(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.TicketRegistration, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *reg
	return &cp, nil
}

// CreateRegistration mimics the one-open-registration unique index.
func (r *fakeTicketRepo) CreateRegistration(ctx context.Context, tx *gorm.DB, reg *model.TicketRegistration) error {
	if reg.TicketID != nil {
		if _, err := r.FindOpenRegistration(ctx, tx, *reg.TicketID); err == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	reg.ID = uuid.New()
	cp := *reg
	r.regs[reg.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) CloseRegistration(_ context.Context, _ *gorm.DB, reg *model.TicketRegistration) error {
	stored, ok := r.regs[reg.ID]
	if !ok || !stored.Open() {
		return gorm.ErrRecordNotFound
	}
	stored.TicketID = nil
	stored.DepartureDay = reg.DepartureDay
	stored.DepartureTime = reg.DepartureTime
	stored.Price = reg.Price
	stored.BoxListID = reg.BoxListID
	return nil
}

func (r *fakeTicketRepo) ListRegistrations(_ context.Context, _ *time.Time, _ *bool, _ dto.PageQuery) ([]model.TicketRegistration, int64, error) {
	out := make([]model.TicketRegistration, 0, len(r.regs))
	for _, reg := range r.regs {
		out = append(out, *reg)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTicketRepo) CreateForDay(_ context.Context, _ *gorm.DB, reg *model.TicketRegistrationForDay) error {
	reg.ID = uuid.New()
	cp := *reg
	r.forDay[reg.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) FindForDay(_ context.Context, id uuid.UUID) (*model.TicketRegistrationForDay, error) {
	reg, ok := r.forDay[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *reg
	return &cp, nil
}

func (r *fakeTicketRepo) UpdateForDayFlags(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	reg, ok := r.forDay[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["paid"].(bool); ok {
		reg.Paid = v
	}
	if v, ok := fields["retired"].(bool); ok {
		reg.Retired = v
	}
	return nil
}

func (r *fakeTicketRepo) ListForDay(_ context.Context, _ *time.Time, _ dto.PageQuery) ([]model.TicketRegistrationForDay, int64, error) {
	out := make([]model.TicketRegistrationForDay, 0, len(r.forDay))
	for _, reg := range r.forDay {
		out = append(out, *reg)
	}
	return out, int64(len(out)), nil
}

// ── Customers ────────────────────────────────────────────────────────────────

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
	deleted   map[uuid.UUID]bool
}

var _ repository.CustomerRepository = (*fakeCustomerRepo)(nil)

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		customers: make(map[uuid.UUID]*model.Customer),
		deleted:   make(map[uuid.UUID]bool),
	}
}

func (r *fakeCustomerRepo) DB() *gorm.DB { return nil }

func (r *fakeCustomerRepo) Create(_ context.Context, _ *gorm.DB, c *model.Customer) error {
	c.ID = uuid.New()
	for i := range c.Vehicles {
		c.Vehicles[i].ID = uuid.New()
		c.Vehicles[i].CustomerID = c.ID
	}
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok || r.deleted[id] {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) FindDeletedByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok || !r.deleted[id] {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) List(_ context.Context, _ dto.CustomerFilter) ([]model.Customer, int64, error) {
	var out []model.Customer
	for id, c := range r.customers {
		if !r.deleted[id] {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCustomerRepo) ListForInterest(_ context.Context) ([]model.Customer, error) {
	var out []model.Customer
	for id, c := range r.customers {
		if !r.deleted[id] && billable(c.CustomerType) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) SetHasDebt(_ context.Context, _ *gorm.DB, id uuid.UUID, hasDebt bool) error {
	c, ok := r.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.HasDebt = hasDebt
	return nil
}

func (r *fakeCustomerRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.customers[id]; !ok || r.deleted[id] {
		return gorm.ErrRecordNotFound
	}
	r.deleted[id] = true
	return nil
}

func (r *fakeCustomerRepo) Restore(_ context.Context, id uuid.UUID) error {
	if !r.deleted[id] {
		return gorm.ErrRecordNotFound
	}
	delete(r.deleted, id)
	return nil
}

func (r *fakeCustomerRepo) AddVehicle(_ context.Context, v *model.Vehicle) error {
	c, ok := r.customers[v.CustomerID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.ID = uuid.New()
	c.Vehicles = append(c.Vehicles, *v)
	return nil
}

func (r *fakeCustomerRepo) DeleteVehicle(_ context.Context, customerID, vehicleID uuid.UUID) error {
	c, ok := r.customers[customerID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i, v := range c.Vehicles {
		if v.ID == vehicleID {
			c.Vehicles = append(c.Vehicles[:i], c.Vehicles[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) PlateExists(_ context.Context, plate string) (bool, error) {
	for _, c := range r.customers {
		for _, v := range c.Vehicles {
			if v.Plate == plate {
				return true, nil
			}
		}
	}
	return false, nil
}

// ── Receipts ─────────────────────────────────────────────────────────────────

type fakeReceiptRepo struct {
	receipts map[uuid.UUID]*model.Receipt
	next     int
	// saveErr fails Save for the receipts of the given customers.
	saveErr map[uuid.UUID]error
}

var _ repository.ReceiptRepository = (*fakeReceiptRepo)(nil)

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: make(map[uuid.UUID]*model.Receipt)}
}

func (r *fakeReceiptRepo) DB() *gorm.DB { return nil }

// Create mimics the one-pending-receipt unique index.
func (r *fakeReceiptRepo) Create(_ context.Context, _ *gorm.DB, rc *model.Receipt) error {
	if rc.Status == model.ReceiptPending {
		for _, existing := range r.receipts {
			if existing.CustomerID == rc.CustomerID && existing.Status == model.ReceiptPending {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.next++
	rc.ID = uuid.New()
	rc.ReceiptNumber = r.next
	cp := *rc
	r.receipts[rc.ID] = &cp
	return nil
}

func (r *fakeReceiptRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Receipt, error) {
	rc, ok := r.receipts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rc
	return &cp, nil
}

func (r *fakeReceiptRepo) FindPendingByCustomer(_ context.Context, _ *gorm.DB, customerID uuid.UUID) (*model.Receipt, error) {
	for _, rc := range r.receipts {
		if rc.CustomerID == customerID && rc.Status == model.ReceiptPending {
			cp := *rc
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeReceiptRepo) List(_ context.Context, _ dto.ReceiptFilter) ([]model.Receipt, int64, error) {
	out := make([]model.Receipt, 0, len(r.receipts))
	for _, rc := range r.receipts {
		out = append(out, *rc)
	}
	return out, int64(len(out)), nil
}

func (r *fakeReceiptRepo) Save(_ context.Context, _ *gorm.DB, rc *model.Receipt) error {
	if err := r.saveErr[rc.CustomerID]; err != nil {
		return err
	}
	if _, ok := r.receipts[rc.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *rc
	r.receipts[rc.ID] = &cp
	return nil
}

func (r *fakeReceiptRepo) byCustomer(customerID uuid.UUID, status string) []*model.Receipt {
	var out []*model.Receipt
	for _, rc := range r.receipts {
		if rc.CustomerID == customerID && rc.Status == status {
			out = append(out, rc)
		}
	}
	return out
}

// ── Interest ─────────────────────────────────────────────────────────────────

type fakeInterestRepo struct {
	settings  []*model.InterestSettings
	customers map[uuid.UUID]*model.InterestCustomer
}

var _ repository.InterestRepository = (*fakeInterestRepo)(nil)

func newFakeInterestRepo() *fakeInterestRepo {
	return &fakeInterestRepo{customers: make(map[uuid.UUID]*model.InterestCustomer)}
}

func (r *fakeInterestRepo) LatestSettings(_ context.Context) (*model.InterestSettings, error) {
	if len(r.settings) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r.settings[len(r.settings)-1]
	return &cp, nil
}

func (r *fakeInterestRepo) CreateSettings(_ context.Context, s *model.InterestSettings) error {
	s.ID = uuid.New()
	s.UpdatedAt = time.Now()
	cp := *s
	r.settings = append(r.settings, &cp)
	return nil
}

func (r *fakeInterestRepo) FindOrCreateCustomer(_ context.Context, _ *gorm.DB, customerID uuid.UUID) (*model.InterestCustomer, error) {
	ic, ok := r.customers[customerID]
	if !ok {
		ic = &model.InterestCustomer{ID: uuid.New(), CustomerID: customerID, Interest: decimal.Zero}
		r.customers[customerID] = ic
	}
	cp := *ic
	return &cp, nil
}

func (r *fakeInterestRepo) FindCustomer(_ context.Context, customerID uuid.UUID) (*model.InterestCustomer, error) {
	ic, ok := r.customers[customerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ic
	return &cp, nil
}

func (r *fakeInterestRepo) SaveCustomer(_ context.Context, _ *gorm.DB, ic *model.InterestCustomer) error {
	cp := *ic
	r.customers[ic.CustomerID] = &cp
	return nil
}

// ── Users ────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = uuid.New()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Active && (u.Username == username || (u.Email != nil && *u.Email == username)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ExistsUsername(_ context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = false
	return nil
}

// ── Events ───────────────────────────────────────────────────────────────────

type publishedEvent struct {
	Channel, Type string
	Payload       interface{}
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, channel, eventType string, payload interface{}) error {
	p.events = append(p.events, publishedEvent{Channel: channel, Type: eventType, Payload: payload})
	return nil
}

type recordingEnqueuer struct {
	jobs []interface{}
}

func (e *recordingEnqueuer) EnqueueEmail(_ context.Context, payload interface{}) error {
	e.jobs = append(e.jobs, payload)
	return nil
}
