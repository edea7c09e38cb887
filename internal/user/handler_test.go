package user_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/user-location-api/internal/location"
	"github.com/redmonkez12/user-location-api/internal/logging"
	"github.com/redmonkez12/user-location-api/internal/user"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(repo *fakeRepo, resolver *fakeResolver) *chi.Mux {
	logger := logging.NewLogger(true)
	service := user.NewService(repo, resolver, logger)
	handler := user.NewHandler(service, logger)

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		r.Get("/", handler.GetAll)
		r.Get("/{id}", handler.GetByID)
		r.Post("/", handler.Create)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
	return r
}

func doRequest(t *testing.T, router *chi.Mux, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestHandler_GetAll_EmptyStore(t *testing.T) {
	router := newTestRouter(newFakeRepo(), &fakeResolver{})

	rec, env := doRequest(t, router, http.MethodGet, "/users", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestHandler_CreateAndGet(t *testing.T) {
	repo := newFakeRepo()
	resolver := &fakeResolver{results: map[string]*location.Location{
		"10001": {Latitude: 40.75, Longitude: -73.99, Timezone: "UTC-05:00"},
	}}
	router := newTestRouter(repo, resolver)

	rec, env := doRequest(t, router, http.MethodPost, "/users", `{"name":"Ann","zipCode":"10001"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)

	var created user.User
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Ann", created.Name)
	require.NotNil(t, created.ZipCode)
	assert.Equal(t, "10001", *created.ZipCode)
	require.NotNil(t, created.Latitude)
	assert.Equal(t, 40.75, *created.Latitude)
	require.NotNil(t, created.Timezone)
	assert.Equal(t, "UTC-05:00", *created.Timezone)

	rec, env = doRequest(t, router, http.MethodGet, "/users/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var fetched user.User
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, created, fetched)
}

func TestHandler_Create_InvalidBody(t *testing.T) {
	router := newTestRouter(newFakeRepo(), &fakeResolver{})

	rec, env := doRequest(t, router, http.MethodPost, "/users", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid request body", env.Message)
}

func TestHandler_Create_MissingName(t *testing.T) {
	router := newTestRouter(newFakeRepo(), &fakeResolver{})

	rec, env := doRequest(t, router, http.MethodPost, "/users", `{"zipCode":"10001"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)
}

func TestHandler_Create_NameTooLong(t *testing.T) {
	router := newTestRouter(newFakeRepo(), &fakeResolver{})

	body := `{"name":"` + strings.Repeat("a", 256) + `"}`
	rec, env := doRequest(t, router, http.MethodPost, "/users", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name must be between 1 and 255 characters", env.Message)
}

func TestHandler_Create_ZipTooShort(t *testing.T) {
	router := newTestRouter(newFakeRepo(), &fakeResolver{})

	rec, env := doRequest(t, router, http.MethodPost, "/users", `{"name":"Ann","zipCode":"12"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Zip code must be between 3 and 20 characters", env.Message)
}

func TestHandler_Create_UnknownZip(t *testing.T) {
	router := newTestRouter(newFakeRepo(), &fakeResolver{})

	rec, env := doRequest(t, router, http.MethodPost, "/users", `{"name":"Ann","zipCode":"00000"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "zip code not found", env.Message)
}

func TestHandler_Create_UpstreamFailureIsOpaque(t *testing.T) {
	resolver := &fakeResolver{err: &location.UpstreamError{Reason: "unexpected status 502"}}
	router := newTestRouter(newFakeRepo(), resolver)

	rec, env := doRequest(t, router, http.MethodPost, "/users", `{"name":"Ann","zipCode":"10001"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
	// upstream details stay out of the response
	assert.Equal(t, "internal server error", env.Message)
	assert.Empty(t, env.Data)
}

func TestHandler_GetByID_NotFound(t *testing.T) {
	router := newTestRouter(newFakeRepo(), &fakeResolver{})

	rec, env := doRequest(t, router, http.MethodGet, "/users/nonexistent", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "user not found", env.Message)
}

func TestHandler_Update_NullZipClears(t *testing.T) {
	repo := newFakeRepo()
	ann := seedAnn(t, repo)
	router := newTestRouter(repo, &fakeResolver{})

	rec, env := doRequest(t, router, http.MethodPut, "/users/"+ann.ID, `{"zipCode":null}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated user.User
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Nil(t, updated.ZipCode)
	assert.Nil(t, updated.Latitude)
	assert.Nil(t, updated.Longitude)
	assert.Nil(t, updated.Timezone)
}

func TestHandler_Update_OmittedZipKeepsLocation(t *testing.T) {
	repo := newFakeRepo()
	ann := seedAnn(t, repo)
	resolver := &fakeResolver{}
	router := newTestRouter(repo, resolver)

	rec, env := doRequest(t, router, http.MethodPut, "/users/"+ann.ID, `{"name":"Annie"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated user.User
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Annie", updated.Name)
	require.NotNil(t, updated.ZipCode)
	assert.Equal(t, "10001", *updated.ZipCode)
	require.NotNil(t, updated.Latitude)
	assert.Empty(t, resolver.calls)
}

func TestHandler_Update_NotFound(t *testing.T) {
	router := newTestRouter(newFakeRepo(), &fakeResolver{})

	rec, env := doRequest(t, router, http.MethodPut, "/users/nonexistent", `{"name":"Ann"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", env.Message)
}

func TestHandler_Delete(t *testing.T) {
	repo := newFakeRepo()
	ann := seedAnn(t, repo)
	router := newTestRouter(repo, &fakeResolver{})

	rec, env := doRequest(t, router, http.MethodDelete, "/users/"+ann.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = doRequest(t, router, http.MethodDelete, "/users/"+ann.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "user not found", env.Message)
}
