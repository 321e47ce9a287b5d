package service

import (
	"context"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/notify"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type NoteService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error)
	List(ctx context.Context, filter dto.NoteFilter) (*dto.ListResponse[dto.NoteResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type noteService struct {
	repo      repository.NoteRepository
	publisher EventPublisher
	clock     Clock
}

func NewNoteService(repo repository.NoteRepository, publisher EventPublisher, clock Clock) NoteService {
	return &noteService{repo: repo, publisher: publisher, clock: clock}
}

func (s *noteService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	n := &model.Note{Description: req.Description, UserID: userID, Date: s.clock.Today()}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, errors.Wrap(err, "crear nota")
	}
	resp := toNoteResponse(n)
	publish(ctx, s.publisher, notify.ChannelNotifications, "note.created", resp)
	return &resp, nil
}

func (s *noteService) Get(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "nota")
	}
	resp := toNoteResponse(n)
	return &resp, nil
}

func (s *noteService) List(ctx context.Context, filter dto.NoteFilter) (*dto.ListResponse[dto.NoteResponse], error) {
	filter.Normalize()
	day, err := parseDay(filter.Date)
	if err != nil {
		return nil, err
	}
	notes, total, err := s.repo.List(ctx, day, filter.PageQuery)
	if err != nil {
		return nil, errors.Wrap(err, "listar notas")
	}
	data := make([]dto.NoteResponse, len(notes))
	for i := range notes {
		data[i] = toNoteResponse(&notes[i])
	}
	resp := dto.NewListResponse(data, total, filter.PageQuery)
	return &resp, nil
}

func (s *noteService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "nota")
	}
	n.Description = req.Description
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, errors.Wrap(err, "actualizar nota")
	}
	resp := toNoteResponse(n)
	return &resp, nil
}

func (s *noteService) Delete(ctx context.Context, id uuid.UUID) error {
	return repoErr(s.repo.Delete(ctx, id), "nota")
}
