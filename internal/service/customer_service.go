package service

import (
	"context"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	// Get returns a live customer. A non-empty customerType restricts the
	// lookup to that type (the /owners and /renters views).
	Get(ctx context.Context, id uuid.UUID, customerType string) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter dto.CustomerFilter) (*dto.ListResponse[dto.CustomerResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)

	AddVehicle(ctx context.Context, customerID uuid.UUID, req dto.VehicleRequest) (*dto.CustomerResponse, error)
	RemoveVehicle(ctx context.Context, customerID, vehicleID uuid.UUID) error

	GetInterestSettings(ctx context.Context) (*dto.InterestSettingsResponse, error)
	UpdateInterestSettings(ctx context.Context, req dto.InterestSettingsRequest) (*dto.InterestSettingsResponse, error)
	GetCustomerInterest(ctx context.Context, customerID uuid.UUID) (*dto.InterestCustomerResponse, error)
}

type customerService struct {
	repo      repository.CustomerRepository
	receipts  repository.ReceiptRepository
	interests repository.InterestRepository
	clock     Clock
}

func NewCustomerService(
	repo repository.CustomerRepository,
	receipts repository.ReceiptRepository,
	interests repository.InterestRepository,
	clock Clock,
) CustomerService {
	return &customerService{repo: repo, receipts: receipts, interests: interests, clock: clock}
}

// billable reports whether the customer type is charged monthly.
func billable(customerType string) bool {
	return customerType == model.CustomerOwner || customerType == model.CustomerRenter
}

// monthlyFee is the sum of the customer's vehicle amounts.
func monthlyFee(vehicles []model.Vehicle) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vehicles {
		total = total.Add(v.Amount)
	}
	return total
}

// Create stores the customer with its vehicles. OWNER and RENTER customers
// start with a PENDING receipt for the sum of their vehicle fees. Billing
// starts on the first day of the following month.
func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	c := &model.Customer{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		DocumentNumber: req.DocumentNumber,
		CustomerType:   req.CustomerType,
		StartDate:      DayOf(model.FirstDayOfNextMonth(s.clock.Local())),
	}
	for _, v := range req.Vehicles {
		c.Vehicles = append(c.Vehicles, model.Vehicle{Plate: v.Plate, Brand: v.Brand, Amount: v.Amount})
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, c); err != nil {
			return err
		}
		if !billable(c.CustomerType) {
			return nil
		}
		fee := monthlyFee(c.Vehicles)
		return s.receipts.Create(ctx, tx, &model.Receipt{
			CustomerID:         c.ID,
			Status:             model.ReceiptPending,
			StartAmount:        fee,
			Price:              fee,
			InterestPercentage: decimal.Zero,
			DateNow:            s.clock.Today(),
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("la patente ya esta registrada")
		}
		return nil, repoErr(err, "cliente")
	}
	resp := toCustomerResponse(c)
	return &resp, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID, customerType string) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "cliente")
	}
	if customerType != "" && c.CustomerType != customerType {
		return nil, notFound("cliente")
	}
	resp := toCustomerResponse(c)
	return &resp, nil
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) (*dto.ListResponse[dto.CustomerResponse], error) {
	filter.Normalize()
	customers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "listar clientes")
	}
	data := make([]dto.CustomerResponse, len(customers))
	for i := range customers {
		data[i] = toCustomerResponse(&customers[i])
	}
	resp := dto.NewListResponse(data, total, filter.PageQuery)
	return &resp, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "cliente")
	}
	if req.FirstName != "" {
		c.FirstName = req.FirstName
	}
	if req.LastName != "" {
		c.LastName = req.LastName
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.DocumentNumber != nil {
		c.DocumentNumber = req.DocumentNumber
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, errors.Wrap(err, "actualizar cliente")
	}
	resp := toCustomerResponse(c)
	return &resp, nil
}

func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	return repoErr(s.repo.SoftDelete(ctx, id), "cliente")
}

func (s *customerService) Restore(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, repoErr(err, "cliente eliminado")
	}
	return s.Get(ctx, id, "")
}

func (s *customerService) AddVehicle(ctx context.Context, customerID uuid.UUID, req dto.VehicleRequest) (*dto.CustomerResponse, error) {
	if _, err := s.repo.FindByID(ctx, customerID); err != nil {
		return nil, repoErr(err, "cliente")
	}
	exists, err := s.repo.PlateExists(ctx, req.Plate)
	if err != nil {
		return nil, errors.Wrap(err, "verificar patente")
	}
	if exists {
		return nil, conflict("la patente ya esta registrada")
	}
	v := &model.Vehicle{Plate: req.Plate, Brand: req.Brand, Amount: req.Amount, CustomerID: customerID}
	if err := s.repo.AddVehicle(ctx, v); err != nil {
		return nil, repoErr(err, "vehiculo")
	}
	return s.Get(ctx, customerID, "")
}

func (s *customerService) RemoveVehicle(ctx context.Context, customerID, vehicleID uuid.UUID) error {
	return repoErr(s.repo.DeleteVehicle(ctx, customerID, vehicleID), "vehiculo")
}

// ── Interest settings ────────────────────────────────────────────────────────

func (s *customerService) GetInterestSettings(ctx context.Context) (*dto.InterestSettingsResponse, error) {
	st, err := s.interests.LatestSettings(ctx)
	if err != nil {
		return nil, repoErr(err, "configuracion de intereses")
	}
	return toSettingsResponse(st), nil
}

// UpdateInterestSettings appends a new settings row; the newest one wins.
func (s *customerService) UpdateInterestSettings(ctx context.Context, req dto.InterestSettingsRequest) (*dto.InterestSettingsResponse, error) {
	st := &model.InterestSettings{InterestOwner: req.InterestOwner, InterestRenter: req.InterestRenter}
	if err := s.interests.CreateSettings(ctx, st); err != nil {
		return nil, errors.Wrap(err, "guardar configuracion de intereses")
	}
	return toSettingsResponse(st), nil
}

func (s *customerService) GetCustomerInterest(ctx context.Context, customerID uuid.UUID) (*dto.InterestCustomerResponse, error) {
	ic, err := s.interests.FindCustomer(ctx, customerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.InterestCustomerResponse{CustomerID: customerID.String(), Interest: decimal.Zero}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "interes del cliente")
	}
	resp := &dto.InterestCustomerResponse{CustomerID: ic.CustomerID.String(), Interest: ic.Interest}
	if ic.LastAppliedOn != nil {
		d := ic.LastAppliedOn.Format(dto.DateLayout)
		resp.LastAppliedOn = &d
	}
	return resp, nil
}

func toSettingsResponse(st *model.InterestSettings) *dto.InterestSettingsResponse {
	return &dto.InterestSettingsResponse{
		ID:             st.ID.String(),
		InterestOwner:  st.InterestOwner,
		InterestRenter: st.InterestRenter,
		UpdatedAt:      st.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
