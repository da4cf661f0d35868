package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcbot/internal/domain/auth"
	"vcbot/internal/domain/reference"
	"vcbot/internal/infrastructure/storage/refstore"
	"vcbot/pkg/logger"
)

type testAPI struct {
	router     http.Handler
	clerkToken string
	userToken  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := logger.Default()

	store, err := refstore.NewFileStore(filepath.Join(t.TempDir(), "refs.json"), log)
	require.NoError(t, err)
	refs := reference.NewService(store, log)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	clerk, err := auth.NewOperator("clerk", "pw", []string{"clerk"}, false)
	require.NoError(t, err)
	authService := auth.NewService([]auth.Operator{clerk}, jwtService, log)

	clerkToken, _, err := jwtService.GenerateAccessToken("u-clerk", "clerk", []string{"clerk"}, false)
	require.NoError(t, err)
	userToken, _, err := jwtService.GenerateAccessToken("u-plain", "plain", nil, false)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		AuthService:  authService,
		References:   refs,
	})

	return &testAPI{router: router, clerkToken: clerkToken, userToken: userToken}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestAllocateEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/references/hr/allocate", api.clerkToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hr", body["bill_type"])
	assert.Equal(t, float64(1), body["reference_number"])
	assert.Equal(t, "HR 1", body["display"])

	rec = api.do(t, http.MethodPost, "/api/v1/references/hr/allocate", api.clerkToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["reference_number"])
}

func TestAllocateRejectsUnknownType(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/references/bogus/allocate", api.clerkToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_BILL_TYPE", body["code"])
}

func TestOverrideRequiresClerkRole(t *testing.T) {
	api := newTestAPI(t)
	payload := map[string]any{"reference_number": 40}

	rec := api.do(t, http.MethodPost, "/api/v1/references/hr/override", api.userToken, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/references/hr/override", api.clerkToken, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/references/hr/allocate", api.clerkToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(41), body["reference_number"])
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/references", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/references", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginAndQueryFlow(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"name": "clerk", "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	token, _ := login["access_token"].(string)
	require.NotEmpty(t, token)

	rec = api.do(t, http.MethodPost, "/api/v1/references/s/allocate", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/references/s", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["reference_number"])

	rec = api.do(t, http.MethodGet, "/api/v1/references/hjres", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
