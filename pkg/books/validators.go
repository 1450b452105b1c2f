package books

type ListBooksQuery struct {
	Search    string `query:"q" json:"q,omitempty" mod:"trim" validate:"max=100"`
	Sort      string `query:"sort" json:"sort,omitempty" validate:"max=50"`
	Available bool   `query:"available" json:"available,omitempty"`
	AuthorID  int    `query:"author_id" json:"author_id,omitempty" validate:"min=0"`
	Page      int    `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	PageSize  int    `query:"page_size" json:"page_size,omitempty" validate:"min=0"`
}

type CreateBookPayload struct {
	AuthorID       int    `json:"author_id" validate:"required,min=1"`
	Name           string `json:"name" mod:"trim" validate:"required,max=200"`
	Description    string `json:"description" mod:"trim" validate:"max=5000"`
	AvailableCount int    `json:"available_count" validate:"min=0,max=10000"`
	CoverURL       string `json:"cover_url" mod:"trim" validate:"max=500,url"`
}
