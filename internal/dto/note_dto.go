package dto

type CreateNoteRequest struct {
	Description string `json:"description" validate:"required,min=1,max=2000"`
}

type UpdateNoteRequest struct {
	Description string `json:"description" validate:"required,min=1,max=2000"`
}

type NoteFilter struct {
	PageQuery
	Date string `form:"date" validate:"omitempty,datetime=2006-01-02"`
}

type NoteResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
	Username    string `json:"username,omitempty"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
}
