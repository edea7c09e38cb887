package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/redmonkez12/user-location-api/internal/httputil"
)

func TestRespondSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	httputil.RespondSuccess(rec, map[string]string{"id": "user-1"}, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":"user-1"}}`, rec.Body.String())
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()

	httputil.RespondError(rec, "user not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"user not found"}`, rec.Body.String())
}

func TestRespondErrorWithCode(t *testing.T) {
	rec := httptest.NewRecorder()

	httputil.RespondErrorWithCode(rec, "too many requests, please try again later",
		httputil.CodeTooManyRequests, http.StatusTooManyRequests)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"message":"too many requests, please try again later","code":"TOO_MANY_REQUESTS"}`,
		rec.Body.String())
}
