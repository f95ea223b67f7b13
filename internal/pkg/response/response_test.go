package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, "Usuário criado com sucesso.", map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"message":"Usuário criado com sucesso.","data":{"id":"1"}}`, rec.Body.String())
}

func TestError_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		category string
	}{
		{"not found", apperror.NewNotFoundError("User", "id", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate", apperror.NewDuplicateResourceError("User", "email", "a@b.com"), http.StatusConflict, "DUPLICATE_RESOURCE"},
		{"storage", apperror.NewStorageError("users.find", errors.New("pq: conexão recusada")), http.StatusInternalServerError, "STORAGE_FAILURE"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), logger.NewNop(), tt.err)

			var body domain.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, body.Success)
			assert.Equal(t, tt.status, body.Code)
			assert.Equal(t, tt.category, body.Category)
			assert.NotContains(t, body.Message, "pq:")
			assert.False(t, body.Timestamp.IsZero())
		})
	}
}

func TestError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperror.NewValidationErrors(map[string]string{"email": "deve ser um email válido"})
	Error(rec, httptest.NewRequest(http.MethodPost, "/", nil), logger.NewNop(), err)

	var body domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"email": "deve ser um email válido"}, body.ValidationErrors)
}

func TestDecode(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "Ana", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	err := Decode(req, &dst)
	var vErr *apperror.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "body")
}
