package readers

type ListReadersQuery struct {
	Search   string `query:"q" json:"q,omitempty" mod:"trim" validate:"max=100"`
	Sort     string `query:"sort" json:"sort,omitempty" validate:"max=50"`
	Page     int    `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	PageSize int    `query:"page_size" json:"page_size,omitempty" validate:"min=0"`
}

type CreateReaderPayload struct {
	FirstName string `json:"first_name" mod:"trim" validate:"required,max=100"`
	LastName  string `json:"last_name" mod:"trim" validate:"required,max=100"`
	Email     string `json:"email" mod:"trim,lcase" validate:"required,email,max=254"`
	Phone     string `json:"phone" mod:"trim" validate:"phone"`
	CoverURL  string `json:"cover_url" mod:"trim" validate:"max=500,url"`
}

type UpdateTicketPayload struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
