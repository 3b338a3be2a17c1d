package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"access-control/internal/entities"
	"access-control/internal/repositories"
	"access-control/pkg/config"
	"access-control/pkg/database/postgresql"
	"access-control/pkg/service"
	"access-control/pkg/utils"
	"access-control/pkg/validation"
)

func newTestEcho(db *pgxpool.Pool, jwtSvc service.JWTService) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	InitRouter(e, Deps{
		DB:     db,
		JWT:    jwtSvc,
		Config: config.New(),
		Logger: zap.NewNop(),
	})
	return e
}

func doJSON(e *echo.Echo, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func testJWT() service.JWTService {
	return service.NewJWTService("test-secret", time.Hour, 24*time.Hour, zap.NewNop())
}

func TestAuthFailuresUseLegacyEnvelope(t *testing.T) {
	jwtSvc := testJWT()
	e := newTestEcho(nil, jwtSvc)

	rec, body := doJSON(e, http.MethodGet, "/api/v0/whoami", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, true, body["redirect2Login"])

	_, refresh, err := jwtSvc.GenerateTokens(1)
	require.NoError(t, err)
	rec, body = doJSON(e, http.MethodGet, "/api/v0/counts", refresh, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, true, body["redirect2Login"])

	rec, body = doJSON(e, http.MethodGet, "/api/v0/report", "garbage", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, true, body["redirect2Login"])
}

func TestLoginValidation(t *testing.T) {
	e := newTestEcho(nil, testJWT())

	rec, body := doJSON(e, http.MethodPost, "/api/v0/auth/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", body["status"])
	assert.Contains(t, body["message"], "Password")
}

// APITestSuite гоняет сквозные сценарии на реальной базе из TEST_DATABASE_URL.
type APITestSuite struct {
	suite.Suite
	Echo       *echo.Echo
	DB         *pgxpool.Pool
	AdminToken string
}

func TestAPISuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL не задан")
	}
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupSuite() {
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := postgresql.ConnectDB(ctx, os.Getenv("TEST_DATABASE_URL"), logger)
	s.Require().NoError(err)
	s.Require().NoError(postgresql.Migrate(ctx, db, "", logger))
	s.DB = db

	jwtSvc := testJWT()
	s.Echo = newTestEcho(db, jwtSvc)

	hash, err := utils.HashPassword("secret-password")
	s.Require().NoError(err)
	loginRepo := repositories.NewLoginRepository(db, logger)
	var userID int64
	err = repositories.NewTxManager(db).RunInTransaction(ctx, func(tx pgx.Tx) error {
		userID, err = loginRepo.CreateUser(ctx, tx, entities.User{
			Username:     "admin-" + uuid.NewString()[:8],
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		_, err = loginRepo.CreateLogin(ctx, tx, entities.Login{GUID: uuid.New(), UserID: userID, Role: entities.RoleAdmin, OrganizationID: null.Int64{}})
		return err
	})
	s.Require().NoError(err)

	s.AdminToken, _, err = jwtSvc.GenerateTokens(userID)
	s.Require().NoError(err)
}

func (s *APITestSuite) TearDownSuite() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func (s *APITestSuite) TestOrganizationLifecycle() {
	name := "Организация " + uuid.NewString()[:8]
	rec, body := doJSON(s.Echo, http.MethodPost, "/api/v0/organizations", s.AdminToken, map[string]string{
		"name": name, "timezone": "+03:00", "timesheet_start": "09:00", "timesheet_end": "18:00",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	data := body["data"].(map[string]interface{})
	s.Equal("09:00", data["timesheet_count"])
	s.Equal("+03:00", data["timezone"])
	path := fmt.Sprintf("/api/v0/organizations/%d", int64(data["id"].(float64)))

	rec, _ = doJSON(s.Echo, http.MethodPost, "/api/v0/organizations", s.AdminToken, map[string]string{"name": name})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec, body = doJSON(s.Echo, http.MethodPatch, path, s.AdminToken, map[string]interface{}{"delete": 1})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("DELETABLE", body["data"].(map[string]interface{})["status"])

	rec, body = doJSON(s.Echo, http.MethodPatch, path, s.AdminToken, map[string]interface{}{"delete": "1"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("ALREADY_DELETED", body["status"])

	rec, body = doJSON(s.Echo, http.MethodPatch, path, s.AdminToken, map[string]interface{}{"restore": true})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("RESTORABLE", body["data"].(map[string]interface{})["status"])
}

func (s *APITestSuite) TestReportOutsideAnyData() {
	rec, body := doJSON(s.Echo, http.MethodGet, "/api/v0/report?start=19000101&end=19000102", s.AdminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(float64(0), body["count"])
	s.Empty(body["data"])
}

func (s *APITestSuite) TestWhoAmIAndCounts() {
	rec, body := doJSON(s.Echo, http.MethodGet, "/api/v0/whoami", s.AdminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("admin", body["data"].(map[string]interface{})["role"])

	rec, body = doJSON(s.Echo, http.MethodGet, "/api/v0/counts", s.AdminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	counts := body["data"].(map[string]interface{})
	s.Contains(counts, repositories.EntityOrganizations)
	s.NotContains(counts, repositories.EntityDepartments)
}
