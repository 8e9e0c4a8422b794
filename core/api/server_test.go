package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/api"
	"github.com/gaurav-prasanna/recipepipe/core/extract"
	"github.com/gaurav-prasanna/recipepipe/core/fetch"
	"github.com/gaurav-prasanna/recipepipe/core/importer"
	"github.com/gaurav-prasanna/recipepipe/core/logger"
	"github.com/gaurav-prasanna/recipepipe/core/store"
)

const owner = "local"

type mockImporter struct {
	mock.Mock
}

func (m *mockImporter) Import(ctx context.Context, ownerID, rawURL string) (*store.Record, error) {
	args := m.Called(ctx, ownerID, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Record), args.Error(1)
}

type mockRecipes struct {
	mock.Mock
}

func (m *mockRecipes) Get(ctx context.Context, ownerID, id string) (*store.Record, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Record), args.Error(1)
}

func (m *mockRecipes) List(ctx context.Context, ownerID string) ([]*store.Record, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Record), args.Error(1)
}

func (m *mockRecipes) Search(ctx context.Context, ownerID, query string) ([]*store.Record, error) {
	args := m.Called(ctx, ownerID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Record), args.Error(1)
}

func (m *mockRecipes) Update(ctx context.Context, ownerID, id string, patch store.Patch) (*store.Record, error) {
	args := m.Called(ctx, ownerID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Record), args.Error(1)
}

func (m *mockRecipes) Delete(ctx context.Context, ownerID, id string) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *mockRecipes) TopCategories(ctx context.Context, ownerID string, n int) ([]store.CategoryCount, error) {
	args := m.Called(ctx, ownerID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.CategoryCount), args.Error(1)
}

func (m *mockRecipes) Tags(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func setup(t *testing.T) (*gin.Engine, *mockImporter, *mockRecipes) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	imp := &mockImporter{}
	recipes := &mockRecipes{}
	reg := prometheus.NewRegistry()
	srv := api.NewServer(api.Config{OwnerID: owner}, imp, recipes, reg, logger.NewNop())
	t.Cleanup(func() {
		imp.AssertExpectations(t)
		recipes.AssertExpectations(t)
	})
	return srv.Router(), imp, recipes
}

func do(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func record(id, title string) *store.Record {
	return &store.Record{Recipe: core.Recipe{ID: id, Title: title}}
}

func TestImportRecipe(t *testing.T) {
	router, imp, _ := setup(t)

	imp.On("Import", mock.Anything, owner, "https://food.example/soup").Return(record("r1", "Soup"), nil)

	w := do(router, http.MethodPost, "/api/v1/recipes", map[string]string{"url": "https://food.example/soup"})
	require.Equal(t, http.StatusCreated, w.Code)

	var got store.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, "Soup", got.Title)
}

func TestImportRecipeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid url", fmt.Errorf("%w: %q", importer.ErrInvalidURL, "x"), http.StatusBadRequest, "invalid recipe URL"},
		{"extraction", fmt.Errorf("%w: parsing HTML", extract.ErrExtractionFailed), http.StatusUnprocessableEntity, "please try another recipe site"},
		{"upstream", fmt.Errorf("%w: unexpected status 503", fetch.ErrUpstream), http.StatusBadGateway, "failed to fetch URL"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, imp, _ := setup(t)
			imp.On("Import", mock.Anything, owner, "x").Return(nil, tt.err)

			w := do(router, http.MethodPost, "/api/v1/recipes", map[string]string{"url": "x"})
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.msg)
		})
	}
}

func TestImportRecipeRequiresURL(t *testing.T) {
	router, _, _ := setup(t)

	w := do(router, http.MethodPost, "/api/v1/recipes", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndSearch(t *testing.T) {
	router, _, recipes := setup(t)

	recipes.On("List", mock.Anything, owner).Return([]*store.Record{record("a", "A"), record("b", "B")}, nil)
	recipes.On("Search", mock.Anything, owner, "soup").Return(nil, nil)

	w := do(router, http.MethodGet, "/api/v1/recipes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Recipes []store.Record `json:"recipes"`
		Count   int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)

	w = do(router, http.MethodGet, "/api/v1/recipes?q=soup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"recipes":[],"count":0}`, w.Body.String())
}

func TestGetUpdateDelete(t *testing.T) {
	router, _, recipes := setup(t)

	rating := 5
	recipes.On("Get", mock.Anything, owner, "r1").Return(record("r1", "Soup"), nil)
	recipes.On("Get", mock.Anything, owner, "nope").Return(nil, fmt.Errorf("%w: nope", store.ErrNotFound))
	recipes.On("Update", mock.Anything, owner, "r1", store.Patch{Rating: &rating}).Return(record("r1", "Soup"), nil)
	recipes.On("Update", mock.Anything, owner, "r2", mock.Anything).Return(nil, fmt.Errorf("%w: rating", store.ErrInvalid))
	recipes.On("Delete", mock.Anything, owner, "r1").Return(nil)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/recipes/r1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/v1/recipes/nope", nil).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodPatch, "/api/v1/recipes/r1", map[string]int{"rating": 5}).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPatch, "/api/v1/recipes/r2", map[string]int{"rating": 9}).Code)
	assert.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, "/api/v1/recipes/r1", nil).Code)
}

func TestCategoriesAndTags(t *testing.T) {
	router, _, recipes := setup(t)

	recipes.On("TopCategories", mock.Anything, owner, 5).Return([]store.CategoryCount{{Name: "dinner", Count: 2}}, nil)
	recipes.On("TopCategories", mock.Anything, owner, 2).Return([]store.CategoryCount{}, nil)
	recipes.On("Tags", mock.Anything, owner).Return([]string{"dinner"}, nil)

	w := do(router, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":[{"name":"dinner","count":2}]}`, w.Body.String())

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/categories?limit=2", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/v1/categories?limit=zero", nil).Code)

	w = do(router, http.MethodGet, "/api/v1/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tags":["dinner"]}`, w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	router, _, _ := setup(t)

	w := do(router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/metrics", nil).Code)
}

type captureLogger struct {
	logger.NoOpLogger
	warnings []string
}

func (l *captureLogger) Warn(msg string, _ ...logger.Field) { l.warnings = append(l.warnings, msg) }
func (l *captureLogger) With(...logger.Field) logger.Logger { return l }

func TestMappedErrorsAreLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)

	imp := &mockImporter{}
	imp.On("Import", mock.Anything, owner, "https://down.example/r").
		Return(nil, fmt.Errorf("%w: unexpected status 503", fetch.ErrUpstream))
	log := &captureLogger{}
	srv := api.NewServer(api.Config{OwnerID: owner}, imp, &mockRecipes{}, prometheus.NewRegistry(), log)

	w := do(srv.Router(), http.MethodPost, "/api/v1/recipes", map[string]string{"url": "https://down.example/r"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, []string{"Request failed"}, log.warnings)
	imp.AssertExpectations(t)
}
