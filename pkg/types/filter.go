package types

// Visibility: режим видимости мягко удалённых записей.
type Visibility int

const (
	VisibilityLive Visibility = iota
	VisibilityDeletedOnly
	VisibilityAll
)

func (v Visibility) String() string {
	switch v {
	case VisibilityDeletedOnly:
		return "DELETED_ONLY"
	case VisibilityAll:
		return "ALL"
	default:
		return "LIVE"
	}
}

// Filter represents query parameters for filtering and pagination.
// Search: пользовательские фильтры, Base, их форма с префиксом "_",
// по которой считается baseCount.
type Filter struct {
	Search         map[string]string `json:"search,omitempty"`
	Base           map[string]string `json:"base,omitempty"`
	Page           int               `json:"page"`
	PerPage        int               `json:"per_page"`
	WithPagination bool              `json:"with_pagination"`
	Visibility     Visibility        `json:"visibility"`
	Full           bool              `json:"full"`
}

func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}

// ListResult: результат выборки движка запросов.
type ListResult[T any] struct {
	Data          []T    `json:"data"`
	BaseCount     uint64 `json:"baseCount"`
	FilteredCount uint64 `json:"filteredCount"`
}
