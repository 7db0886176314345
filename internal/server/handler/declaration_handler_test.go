package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/duca-customs-backend/internal/domain/audit"
	"github.com/duca-customs-backend/internal/domain/declaration"
	"github.com/duca-customs-backend/internal/domain/user"
	"github.com/duca-customs-backend/internal/server/middleware"
)

type MockDeclarationService struct {
	mock.Mock
}

func (m *MockDeclarationService) Create(ctx context.Context, actor user.Identity, d *declaration.Declaration, meta audit.RequestMeta) (*declaration.Declaration, error) {
	args := m.Called(ctx, actor, d, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*declaration.Declaration), args.Error(1)
}

func (m *MockDeclarationService) ListOwn(ctx context.Context, actor user.Identity, rng declaration.DateRange, meta audit.RequestMeta) ([]declaration.Summary, error) {
	args := m.Called(ctx, actor, rng, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]declaration.Summary), args.Error(1)
}

func (m *MockDeclarationService) ListPending(ctx context.Context, actor user.Identity) ([]declaration.Summary, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]declaration.Summary), args.Error(1)
}

func (m *MockDeclarationService) Decide(ctx context.Context, actor user.Identity, id uuid.UUID, estado declaration.Status, comentario *string, meta audit.RequestMeta) (string, error) {
	args := m.Called(ctx, actor, id, estado, comentario, meta)
	return args.String(0), args.Error(1)
}

func (m *MockDeclarationService) GetByID(ctx context.Context, actor user.Identity, id uuid.UUID) (*declaration.Declaration, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*declaration.Declaration), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// withIdentity injects an authenticated caller without going through the
// token middleware.
func withIdentity(identity user.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, identity)
		c.Next()
	}
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func ducaBody() map[string]interface{} {
	return map[string]interface{}{
		"duca": map[string]interface{}{
			"numeroDocumento": "DUCA-2026-000123",
			"fechaEmision":    "2026-03-15",
			"paisEmisor":      "GT",
			"tipoOperacion":   "IMPORTACION",
			"exportador":      map[string]interface{}{"idExportador": "EXP-001", "nombreExportador": "Exportadora del Sur"},
			"importador":      map[string]interface{}{"idImportador": "IMP-001", "nombreImportador": "Importadora del Norte"},
			"transporte": map[string]interface{}{
				"medioTransporte": "TERRESTRE",
				"placaVehiculo":   "C123ABC",
				"ruta":            map[string]interface{}{"aduanaSalida": "GT-PB", "aduanaEntrada": "SV-SA", "paisDestino": "SV"},
			},
			"mercancias": map[string]interface{}{
				"numeroItems": 1,
				"items": []map[string]interface{}{
					{"linea": 1, "descripcion": "Cajas de producto", "cantidad": 10, "unidadMedida": "KG", "valorUnitario": 5.00, "paisOrigen": "GT"},
				},
			},
			"valores": map[string]interface{}{"gastosTransporte": 2.00, "moneda": "USD"},
		},
	}
}

func TestDeclarationHandler_Create(t *testing.T) {
	carrier := user.Identity{UserID: uuid.New(), Role: user.RoleTransportista}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		created := &declaration.Declaration{
			ID:              uuid.New(),
			NumeroDocumento: "DUCA-2026-000123",
			TipoOperacion:   declaration.OperationImportacion,
			FechaEmision:    time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Estado:          declaration.StatusPendiente,
			Valores: declaration.Valores{
				ValorAduanaTotal: decimal.RequireFromString("52.00"),
				Moneda:           "USD",
			},
			CreatedAt: time.Now(),
		}
		mockService.On("Create", mock.Anything, carrier, mock.AnythingOfType("*declaration.Declaration"), mock.Anything).
			Return(created, nil).Once()

		router := setupTestRouter()
		router.POST("/declarations", withIdentity(carrier), h.Create)

		jsonBody, _ := json.Marshal(ducaBody())
		req, _ := http.NewRequest(http.MethodPost, "/declarations", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var resp DeclarationResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "DUCA-2026-000123", resp.NumeroDocumento)
		assert.Equal(t, "PENDIENTE", resp.Estado)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.POST("/declarations", withIdentity(carrier), h.Create)

		body := ducaBody()
		delete(body["duca"].(map[string]interface{}), "numeroDocumento")
		jsonBody, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, "/declarations", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("InvalidIssueDate", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.POST("/declarations", withIdentity(carrier), h.Create)

		body := ducaBody()
		body["duca"].(map[string]interface{})["fechaEmision"] = "15/03/2026"
		jsonBody, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, "/declarations", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("DuplicateDocumentNumber", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		mockService.On("Create", mock.Anything, carrier, mock.Anything, mock.Anything).
			Return(nil, declaration.ErrDuplicateDocumentNumber{NumeroDocumento: "DUCA-2026-000123"}).Once()

		router := setupTestRouter()
		router.POST("/declarations", withIdentity(carrier), h.Create)

		jsonBody, _ := json.Marshal(ducaBody())
		req, _ := http.NewRequest(http.MethodPost, "/declarations", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp["error"], "DUCA-2026-000123")
	})

	t.Run("InactiveImporter", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		mockService.On("Create", mock.Anything, carrier, mock.Anything, mock.Anything).
			Return(nil, declaration.InvalidReferenceError{Kind: "importador", ID: "IMP-001"}).Once()

		router := setupTestRouter()
		router.POST("/declarations", withIdentity(carrier), h.Create)

		jsonBody, _ := json.Marshal(ducaBody())
		req, _ := http.NewRequest(http.MethodPost, "/declarations", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDeclarationHandler_ListMine(t *testing.T) {
	carrier := user.Identity{UserID: uuid.New(), Role: user.RoleTransportista}

	t.Run("WithDateRange", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		inicio := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		fin := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
		expectedRange := declaration.DateRange{FechaInicio: &inicio, FechaFin: &fin}
		mockService.On("ListOwn", mock.Anything, carrier, expectedRange, mock.Anything).
			Return([]declaration.Summary{}, nil).Once()

		router := setupTestRouter()
		router.GET("/status/mine", withIdentity(carrier), h.ListMine)

		req, _ := http.NewRequest(http.MethodGet, "/status/mine?fechaInicio=2026-01-01&fechaFin=2026-03-31", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MalformedDate", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.GET("/status/mine", withIdentity(carrier), h.ListMine)

		req, _ := http.NewRequest(http.MethodGet, "/status/mine?fechaInicio=not-a-date", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ListOwn")
	})
}

func TestDeclarationHandler_Decide(t *testing.T) {
	agent := user.Identity{UserID: uuid.New(), Role: user.RoleAgente}
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		comentario := "Documentacion completa"
		mockService.On("Decide", mock.Anything, agent, id, declaration.StatusValidada, &comentario, mock.Anything).
			Return("DUCA-2026-000123", nil).Once()

		router := setupTestRouter()
		router.POST("/validation/:id/decision", withIdentity(agent), h.Decide)

		jsonBody, _ := json.Marshal(DecisionRequest{Decision: "VALIDADA", Comentario: &comentario})
		req, _ := http.NewRequest(http.MethodPost, "/validation/"+id.String()+"/decision", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp DecisionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "DUCA-2026-000123", resp.NumeroDocumento)
		assert.Equal(t, "VALIDADA", resp.Estado)
	})

	t.Run("AlreadyProcessed", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		mockService.On("Decide", mock.Anything, agent, id, declaration.StatusRechazada, (*string)(nil), mock.Anything).
			Return("", declaration.ErrNotFoundOrProcessed{ID: id}).Once()

		router := setupTestRouter()
		router.POST("/validation/:id/decision", withIdentity(agent), h.Decide)

		jsonBody, _ := json.Marshal(DecisionRequest{Decision: "RECHAZADA"})
		req, _ := http.NewRequest(http.MethodPost, "/validation/"+id.String()+"/decision", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.POST("/validation/:id/decision", withIdentity(agent), h.Decide)

		jsonBody, _ := json.Marshal(DecisionRequest{Decision: "VALIDADA"})
		req, _ := http.NewRequest(http.MethodPost, "/validation/not-a-uuid/decision", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Decide")
	})
}

func TestDeclarationHandler_GetByID(t *testing.T) {
	agent := user.Identity{UserID: uuid.New(), Role: user.RoleAgente}
	id := uuid.New()

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockDeclarationService)
		h := NewDeclarationHandler(testLogger(), mockService)

		mockService.On("GetByID", mock.Anything, agent, id).
			Return(nil, declaration.ErrDeclarationNotFound{ID: id}).Once()

		router := setupTestRouter()
		router.GET("/declarations/:id", withIdentity(agent), h.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/declarations/"+id.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error": "declaration not found"}`, rr.Body.String())
	})
}
