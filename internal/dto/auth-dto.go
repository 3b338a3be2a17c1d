package dto

type LoginDTO struct {
	Login    string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokensDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponseDTO struct {
	TokensDTO
	User WhoAmIDTO `json:"user"`
}

// WhoAmIDTO описывает текущего пользователя, его роль и организацию.
type WhoAmIDTO struct {
	User         int64   `json:"user"`
	Username     string  `json:"username"`
	LastName     string  `json:"last_name"`
	FirstName    string  `json:"first_name"`
	Role         string  `json:"role"`
	Organization *int64  `json:"organization"`
	OrgName      *string `json:"organization_name"`
}

// CountsDTO содержит количество живых записей, видимых пользователю.
type CountsDTO map[string]uint64
