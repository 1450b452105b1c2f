package authors

type CreateAuthorPayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=200"`
}
