package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/duca-customs-backend/internal/domain/audit"
	"github.com/duca-customs-backend/internal/domain/partner"
	"github.com/duca-customs-backend/internal/domain/user"
)

type MockPartnerService struct {
	mock.Mock
}

func (m *MockPartnerService) Upsert(ctx context.Context, actor user.Identity, id, nombre string, estado partner.Status, meta audit.RequestMeta) (*partner.Partner, error) {
	args := m.Called(ctx, actor, id, nombre, estado, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerService) List(ctx context.Context, f partner.Filter) ([]partner.Partner, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Partner), args.Error(1)
}

func (m *MockPartnerService) SetStatus(ctx context.Context, actor user.Identity, id string, estado partner.Status, meta audit.RequestMeta) error {
	args := m.Called(ctx, actor, id, estado, meta)
	return args.Error(0)
}

func TestPartnerHandler_Upsert(t *testing.T) {
	admin := user.Identity{UserID: uuid.New(), Role: user.RoleAdmin}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockPartnerService)
		h := NewPartnerHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.PUT("/admin/importers/:id", withIdentity(admin), h.Upsert)

		record := &partner.Partner{
			ID:        "IMP-001",
			Nombre:    "Importadora del Norte",
			Estado:    partner.StatusActivo,
			CreatedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		}
		mockService.On("Upsert", mock.Anything, admin,
			"IMP-001", "Importadora del Norte", partner.StatusActivo, mock.Anything).
			Return(record, nil).Once()

		body, err := json.Marshal(map[string]string{"nombre": "Importadora del Norte", "estado": "ACTIVO"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPut, "/admin/importers/IMP-001", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp partner.Partner
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "IMP-001", resp.ID)
		assert.Equal(t, partner.StatusActivo, resp.Estado)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		mockService := new(MockPartnerService)
		h := NewPartnerHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.PUT("/admin/importers/:id", withIdentity(admin), h.Upsert)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPut, "/admin/importers/IMP-001", bytes.NewBufferString(`{"nombre":"Importadora"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Upsert")
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		mockService := new(MockPartnerService)
		h := NewPartnerHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.PUT("/admin/importers/:id", withIdentity(admin), h.Upsert)

		mockService.On("Upsert", mock.Anything, admin,
			"IMP-001", "Importadora del Norte", partner.Status("SUSPENDIDO"), mock.Anything).
			Return(nil, partner.ErrInvalidPartner{Reason: "estado must be ACTIVO or INACTIVO"}).Once()

		body, _ := json.Marshal(map[string]string{"nombre": "Importadora del Norte", "estado": "SUSPENDIDO"})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPut, "/admin/importers/IMP-001", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestPartnerHandler_List(t *testing.T) {
	caller := user.Identity{UserID: uuid.New(), Role: user.RoleTransportista}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockPartnerService)
		h := NewPartnerHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.GET("/catalogs/importers", withIdentity(caller), h.List)

		records := []partner.Partner{
			{ID: "IMP-001", Nombre: "Importadora del Norte", Estado: partner.StatusActivo},
			{ID: "IMP-002", Nombre: "Importadora del Sur", Estado: partner.StatusInactivo},
		}
		mockService.On("List", mock.Anything, partner.Filter{Query: "importadora", Estado: partner.StatusActivo}).
			Return(records, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/catalogs/importers?q=importadora&status=ACTIVO", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp []partner.Partner
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidStatusFilter", func(t *testing.T) {
		mockService := new(MockPartnerService)
		h := NewPartnerHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.GET("/catalogs/importers", withIdentity(caller), h.List)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/catalogs/importers?status=SUSPENDIDO", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "status must be ACTIVO or INACTIVO"}`, w.Body.String())
		mockService.AssertNotCalled(t, "List")
	})
}

func TestPartnerHandler_SetStatus(t *testing.T) {
	admin := user.Identity{UserID: uuid.New(), Role: user.RoleAdmin}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockPartnerService)
		h := NewPartnerHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.PATCH("/admin/importers/:id/estado", withIdentity(admin), h.SetStatus)

		mockService.On("SetStatus", mock.Anything, admin, "IMP-001", partner.StatusInactivo, mock.Anything).
			Return(nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPatch, "/admin/importers/IMP-001/estado", bytes.NewBufferString(`{"estado":"INACTIVO"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownEstado", func(t *testing.T) {
		mockService := new(MockPartnerService)
		h := NewPartnerHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.PATCH("/admin/importers/:id/estado", withIdentity(admin), h.SetStatus)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPatch, "/admin/importers/IMP-001/estado", bytes.NewBufferString(`{"estado":"SUSPENDIDO"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "SetStatus")
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockPartnerService)
		h := NewPartnerHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.PATCH("/admin/importers/:id/estado", withIdentity(admin), h.SetStatus)

		mockService.On("SetStatus", mock.Anything, admin, "IMP-404", partner.StatusActivo, mock.Anything).
			Return(partner.ErrPartnerNotFound{ID: "IMP-404"}).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPatch, "/admin/importers/IMP-404/estado", bytes.NewBufferString(`{"estado":"ACTIVO"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error": "trade partner not found"}`, w.Body.String())
		mockService.AssertExpectations(t)
	})
}
