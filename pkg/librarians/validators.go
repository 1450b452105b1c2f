package librarians

type CreateLibrarianPayload struct {
	FirstName string `json:"first_name" mod:"trim" validate:"required,max=100"`
	LastName  string `json:"last_name" mod:"trim" validate:"required,max=100"`
	HiredAt   string `json:"hired_at" validate:"date"`
}
