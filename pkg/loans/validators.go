package loans

import "time"

type ListLoansQuery struct {
	Active   *bool  `query:"active" json:"active,omitempty"`
	Overdue  bool   `query:"overdue" json:"overdue,omitempty"`
	ReaderID int    `query:"reader_id" json:"reader_id,omitempty" validate:"min=0"`
	BookID   int    `query:"book_id" json:"book_id,omitempty" validate:"min=0"`
	Sort     string `query:"sort" json:"sort,omitempty" validate:"max=50"`
	Page     int    `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	PageSize int    `query:"page_size" json:"page_size,omitempty" validate:"min=0"`
}

type CreateLoanPayload struct {
	BookID      int    `json:"book_id" validate:"required,min=1"`
	ReaderID    int    `json:"reader_id" validate:"required,min=1"`
	LibrarianID *int   `json:"librarian_id" validate:"omitempty,min=1"`
	DueDate     string `json:"due_date" validate:"date,future"`
}

type UpdateLoanPayload struct {
	DueDate    string     `json:"due_date" validate:"required,date"`
	ReturnedAt *time.Time `json:"returned_at"`
}
