package service

import (
	"context"
	"testing"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/notify"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeNoteRepo struct {
	notes map[uuid.UUID]*model.Note
	order []uuid.UUID
}

var _ repository.NoteRepository = (*fakeNoteRepo)(nil)

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[uuid.UUID]*model.Note)}
}

func (r *fakeNoteRepo) Create(_ context.Context, n *model.Note) error {
	n.ID = uuid.New()
	cp := *n
	r.notes[n.ID] = &cp
	r.order = append(r.order, n.ID)
	return nil
}

func (r *fakeNoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Note, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNoteRepo) List(_ context.Context, day *time.Time, _ dto.PageQuery) ([]model.Note, int64, error) {
	var out []model.Note
	for _, id := range r.order {
		n, ok := r.notes[id]
		if !ok || (day != nil && !n.Date.Equal(*day)) {
			continue
		}
		out = append(out, *n)
	}
	return out, int64(len(out)), nil
}

func (r *fakeNoteRepo) Update(_ context.Context, n *model.Note) error {
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r *fakeNoteRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.notes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.notes, id)
	return nil
}

func TestNotes_Lifecycle(t *testing.T) {
	clock, now := fixedClock(2026, 10, 19, 0, 30)
	repo := newFakeNoteRepo()
	pub := &recordingPublisher{}
	svc := NewNoteService(repo, pub, clock)
	ctx := context.Background()
	author := uuid.New()

	created, err := svc.Create(ctx, author, dto.CreateNoteRequest{Description: "Portón trabado, avisar a mantenimiento"})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", created.Date, "business day, not the UTC day")
	assert.Equal(t, author.String(), created.UserID)
	require.Len(t, pub.events, 1)
	assert.Equal(t, notify.ChannelNotifications, pub.events[0].Channel)
	assert.Equal(t, "note.created", pub.events[0].Type)

	*now = now.Add(24 * time.Hour)
	_, err = svc.Create(ctx, author, dto.CreateNoteRequest{Description: "Cambio de turno sin novedades"})
	require.NoError(t, err)

	page, err := svc.List(ctx, dto.NoteFilter{Date: "2026-10-19"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, created.ID, page.Data[0].ID)

	all, err := svc.List(ctx, dto.NoteFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	id := uuid.MustParse(created.ID)
	updated, err := svc.Update(ctx, id, dto.UpdateNoteRequest{Description: "Portón reparado"})
	require.NoError(t, err)
	assert.Equal(t, "Portón reparado", updated.Description)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, id), ErrNotFound)

	_, err = svc.List(ctx, dto.NoteFilter{Date: "19/10/2026"})
	assert.ErrorIs(t, err, ErrInvalidState)
}
