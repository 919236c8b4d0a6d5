package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wip-dashboard/internal/service/project"
	"wip-dashboard/internal/storage"
)

type MockProjectWriter struct {
	mock.Mock
}

func (m *MockProjectWriter) Create(ctx context.Context, rec storage.ProjectRecord) (*storage.ProjectRecord, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProjectRecord), args.Error(1)
}

func (m *MockProjectWriter) Update(ctx context.Context, id string, rec storage.ProjectRecord) (*storage.ProjectRecord, error) {
	args := m.Called(ctx, id, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProjectRecord), args.Error(1)
}

func newRouter(m *MockProjectWriter) *chi.Mux {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Post("/api/projects", CreateProject(log, m))
	r.Put("/api/projects/{id}", UpdateProject(log, m))
	return r
}

func TestCreateProject_Success(t *testing.T) {
	m := new(MockProjectWriter)
	m.On("Create", mock.Anything, mock.MatchedBy(func(rec storage.ProjectRecord) bool {
		return rec.ProjectNumber == "P-1" && rec.Sales == 100
	})).Return(&storage.ProjectRecord{ID: "new-id", ProjectNumber: "P-1", Sales: 100}, nil)

	body := `{"projectNumber":"P-1","customer":"Acme","sales":100,"dateCreated":1772323200000}`
	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	newRouter(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "new-id", resp.Project.ID)

	m.AssertExpectations(t)
}

func TestCreateProject_InvalidJSON(t *testing.T) {
	m := new(MockProjectWriter)

	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"projectNumber":`))
	rr := httptest.NewRecorder()

	newRouter(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	m.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaveProject_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "invalid", err: fmt.Errorf("service: %w", project.ErrInvalidProject), wantCode: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("service: %w", storage.ErrProjectNotFound), wantCode: http.StatusNotFound},
		{name: "taken id", err: fmt.Errorf("service: %w", storage.ErrProjectExists), wantCode: http.StatusConflict},
		{name: "storage failure", err: errors.New("db down"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockProjectWriter)
			m.On("Update", mock.Anything, "p1", mock.Anything).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPut, "/api/projects/p1", strings.NewReader(`{"customer":"Acme"}`))
			rr := httptest.NewRecorder()

			newRouter(m).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			m.AssertExpectations(t)
		})
	}
}

func TestCreateProject_TakenID(t *testing.T) {
	m := new(MockProjectWriter)
	m.On("Create", mock.Anything, mock.MatchedBy(func(rec storage.ProjectRecord) bool {
		return rec.ID == "p1"
	})).Return(nil, fmt.Errorf("service.project.Create: %w", storage.ErrProjectExists))

	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"id":"p1","projectNumber":"P-1"}`))
	rr := httptest.NewRecorder()

	newRouter(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	m.AssertExpectations(t)
}

func TestUpdateProject_Success(t *testing.T) {
	m := new(MockProjectWriter)
	m.On("Update", mock.Anything, "p1", mock.Anything).Return(&storage.ProjectRecord{ID: "p1", Sales: 200}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/projects/p1", strings.NewReader(`{"projectNumber":"P-1","sales":200}`))
	rr := httptest.NewRecorder()

	newRouter(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 200.0, resp.Project.Sales)
}
