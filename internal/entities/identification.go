package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"access-control/pkg/types"
)

type AlgorithmType int

const (
	AlgorithmUnknown AlgorithmType = 0
	AlgorithmFinger3 AlgorithmType = 1
	AlgorithmFinger1 AlgorithmType = 2
	AlgorithmFinger2 AlgorithmType = 3
	AlgorithmFace    AlgorithmType = 4
	AlgorithmCard    AlgorithmType = 5
	AlgorithmAvatar  AlgorithmType = 10
)

type IdentificationTemplate struct {
	ID               int64         `json:"id"`
	EmployeeID       int64         `json:"employee"`
	AlgorithmType    AlgorithmType `json:"algorithm_type"`
	AlgorithmVersion int           `json:"algorithm_version"`
	Template         []byte        `json:"-"`
	Quality          null.Int      `json:"quality"`
	Config           string        `json:"config"`
	CreatedAt        time.Time     `json:"created_at"`

	types.SoftDelete
}

// IdentificationEvent: запись журнала идентификаций; только добавление.
type IdentificationEvent struct {
	ID            int64      `json:"id"`
	Moment        time.Time  `json:"moment"`
	RequestType   int        `json:"request_type"`
	ResponseType  int        `json:"response_type"`
	AlgorithmType int        `json:"algorithm_type"`
	Description   string     `json:"description"`
	EmployeeID    null.Int64 `json:"employee"`
	DeviceID      null.Int64 `json:"device"`
	TemplateRef   null.Int64 `json:"template_ref"`
}
