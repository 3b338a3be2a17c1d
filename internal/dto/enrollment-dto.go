package dto

// EnrollDTO задаёт регистрацию биометрии сотрудника на устройстве.
// Для face нужен photo (base64 JPEG), для card, card, для finger, template.
type EnrollDTO struct {
	Device   int64  `json:"device" validate:"required,gt=0"`
	Kind     string `json:"kind" validate:"required,oneof=face card finger"`
	Photo    string `json:"photo" validate:"omitempty,base64"`
	Card     string `json:"card" validate:"omitempty,max=64"`
	Template string `json:"template" validate:"omitempty,base64"`
}

type EnrollResultDTO struct {
	Success  bool   `json:"success"`
	Employee int64  `json:"employee,omitempty"`
	Comment  string `json:"comment"`
}

// SearchDTO задаёт поиск сотрудника по фото на устройстве.
type SearchDTO struct {
	Device int64  `json:"device" validate:"required,gt=0"`
	Photo  string `json:"photo" validate:"required,base64"`
}

type SearchResultDTO struct {
	Success  bool         `json:"success"`
	Employee *EmployeeDTO `json:"employee"`
	Comment  string       `json:"comment"`
}
