package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	apperrors "access-control/pkg/errors"
	"access-control/pkg/types"
)

const (
	DefaultPerPage = 50
	MaxPerPage     = 1000
)

// служебные параметры, которые не являются фильтрами
var reservedParams = map[string]bool{
	"page": true, "perPage": true, "deletedOnly": true, "withDeleted": true, "full": true,
}

// ParseFilterFromQuery разбирает общие параметры списков.
// Параметр с префиксом "_" попадает в Base, остальные, в Search.
func ParseFilterFromQuery(values url.Values) types.Filter {
	f := types.Filter{
		Search:         make(map[string]string),
		Base:           make(map[string]string),
		Page:           1,
		PerPage:        DefaultPerPage,
		WithPagination: true,
	}

	if p, err := strconv.Atoi(values.Get("page")); err == nil && p > 0 {
		f.Page = p
	}
	if pp, err := strconv.Atoi(values.Get("perPage")); err == nil && pp > 0 {
		if pp > MaxPerPage {
			pp = MaxPerPage
		}
		f.PerPage = pp
	}

	switch {
	case IsTruthy(values.Get("deletedOnly")):
		f.Visibility = types.VisibilityDeletedOnly
	case IsTruthy(values.Get("withDeleted")):
		f.Visibility = types.VisibilityAll
	}

	if IsTruthy(values.Get("full")) {
		f.Full = true
		f.WithPagination = false
	}

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" || reservedParams[key] {
			continue
		}
		if strings.HasPrefix(key, "_") {
			f.Base[strings.TrimPrefix(key, "_")] = vals[0]
			continue
		}
		f.Search[key] = vals[0]
	}

	return f
}

// IsTruthy принимает "1", "true", "yes", "on" в любом регистре.
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ParseIDList разбирает "1,2, 3" в список идентификаторов без повторов.
func ParseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, apperrors.NewValidationError("Ids", "список пуст")
	}
	seen := make(map[int64]bool)
	ids := make([]int64, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperrors.NewValidationError("Ids", fmt.Sprintf("неверный идентификатор %q", part))
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ParseInt64Param читает положительный целый параметр пути или запроса.
func ParseInt64Param(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Id", "неверный формат ID")
	}
	return id, nil
}
