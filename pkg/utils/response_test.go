package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "access-control/pkg/errors"
)

func runErrorResponse(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, ErrorResponse(c, err, zap.NewNop()))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorResponseNeedsLoginIsLegacy500(t *testing.T) {
	code, body := runErrorResponse(t, apperrors.ErrNeedsLogin)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, true, body["redirect2Login"])

	code, body = runErrorResponse(t, fmt.Errorf("обёртка: %w", apperrors.ErrForbidden))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, true, body["redirect2Login"])
}

func TestErrorResponseValidation(t *testing.T) {
	vErr := &apperrors.ValidationError{Fields: []apperrors.FieldError{
		{Field: "Name", Reason: "обязательное поле"},
		{Field: "Timesheet start", Reason: "ожидается ЧЧ:ММ"},
	}}
	code, body := runErrorResponse(t, vErr)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Name: обязательное поле\nTimesheet start: ожидается ЧЧ:ММ", body["message"])
}

func TestErrorResponseSoftDeleteKinds(t *testing.T) {
	code, body := runErrorResponse(t, apperrors.ErrExpiredTime)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "EXPIRED_TIME", body["status"])

	code, _ = runErrorResponse(t, apperrors.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList("10, 11,12,10")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, ids)

	_, err = ParseIDList("1,x")
	assert.Error(t, err)
}
