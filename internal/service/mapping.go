package service

import (
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"

	"github.com/google/uuid"
)

func optUUID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toBoxListResponse(bl *model.BoxList) dto.BoxListResponse {
	return dto.BoxListResponse{
		ID:         bl.ID.String(),
		Date:       bl.Date.Format(dto.DateLayout),
		BoxNumber:  bl.BoxNumber,
		TotalPrice: bl.TotalPrice,
	}
}

func toOtherPaymentResponse(p *model.OtherPayment) dto.OtherPaymentResponse {
	return dto.OtherPaymentResponse{
		ID:          p.ID.String(),
		Description: p.Description,
		Price:       p.Price,
		Type:        p.Type,
		DateNow:     p.DateNow.Format(dto.DateLayout),
		BoxListID:   p.BoxListID.String(),
	}
}

func toTicketResponse(t *model.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          t.ID.String(),
		Barcode:     t.Barcode,
		VehicleType: t.VehicleType,
		DayPrice:    t.DayPrice,
		NightPrice:  t.NightPrice,
		Active:      t.Active,
	}
}

func toRegistrationResponse(r *model.TicketRegistration) dto.TicketRegistrationResponse {
	resp := dto.TicketRegistrationResponse{
		ID:            r.ID.String(),
		TicketID:      optUUID(r.TicketID),
		VehicleType:   r.VehicleType,
		EntryDay:      r.EntryDay.Format(dto.DateLayout),
		EntryTime:     r.EntryTime,
		DepartureTime: r.DepartureTime,
		Price:         r.Price,
		Description:   r.Description,
		BoxListID:     optUUID(r.BoxListID),
		State:         "OPEN",
	}
	if r.DepartureDay != nil {
		d := r.DepartureDay.Format(dto.DateLayout)
		resp.DepartureDay = &d
		resp.State = "CLOSED"
	}
	return resp
}

func toForDayResponse(r *model.TicketRegistrationForDay) dto.TicketRegistrationForDayResponse {
	return dto.TicketRegistrationForDayResponse{
		ID:          r.ID.String(),
		Description: r.Description,
		VehicleType: r.VehicleType,
		Price:       r.Price,
		Days:        r.Days,
		Weeks:       r.Weeks,
		Paid:        r.Paid,
		Retired:     r.Retired,
		DateNow:     r.DateNow.Format(dto.DateLayout),
		BoxListID:   r.BoxListID.String(),
	}
}

func toReceiptResponse(r *model.Receipt) dto.ReceiptResponse {
	resp := dto.ReceiptResponse{
		ID:                 r.ID.String(),
		ReceiptNumber:      r.ReceiptNumber,
		CustomerID:         r.CustomerID.String(),
		BoxListID:          optUUID(r.BoxListID),
		Status:             r.Status,
		StartAmount:        r.StartAmount,
		Price:              r.Price,
		InterestPercentage: r.InterestPercentage,
		DateNow:            r.DateNow.Format(dto.DateLayout),
	}
	if r.PaymentDate != nil {
		d := r.PaymentDate.Format(dto.DateLayout)
		resp.PaymentDate = &d
	}
	return resp
}

func toCustomerResponse(c *model.Customer) dto.CustomerResponse {
	vehicles := make([]dto.VehicleResponse, len(c.Vehicles))
	for i, v := range c.Vehicles {
		vehicles[i] = dto.VehicleResponse{ID: v.ID.String(), Plate: v.Plate, Brand: v.Brand, Amount: v.Amount}
	}
	return dto.CustomerResponse{
		ID:             c.ID.String(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		DocumentNumber: c.DocumentNumber,
		CustomerType:   c.CustomerType,
		StartDate:      c.StartDate.Format(dto.DateLayout),
		HasDebt:        c.HasDebt,
		Vehicles:       vehicles,
	}
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		Active:   u.Active,
	}
}

func toNoteResponse(n *model.Note) dto.NoteResponse {
	resp := dto.NoteResponse{
		ID:          n.ID.String(),
		Description: n.Description,
		UserID:      n.UserID.String(),
		Date:        n.Date.Format(dto.DateLayout),
		CreatedAt:   n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if n.User != nil {
		resp.Username = n.User.Username
	}
	return resp
}
