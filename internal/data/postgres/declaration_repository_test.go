package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duca-customs-backend/internal/domain/declaration"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testDeclaration() *declaration.Declaration {
	return &declaration.Declaration{
		ID:               uuid.New(),
		NumeroDocumento:  "DUCA-2026-000123",
		PaisEmisor:       "GT",
		TipoOperacion:    declaration.OperationImportacion,
		FechaEmision:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		MedioTransporte:  declaration.TransportTerrestre,
		ImportadorID:     "IMP-001",
		ImportadorNombre: "Importadora del Norte",
		ExportadorID:     "EXP-001",
		ExportadorNombre: "Exportadora del Sur",
		Valores: declaration.Valores{
			ValorAduanaTotal: decimal.RequireFromString("52.00"),
			Moneda:           "USD",
		},
		Estado:      declaration.StatusPendiente,
		OwnerUserID: uuid.New(),
		Items: []declaration.Item{
			{Linea: 1, Descripcion: "Cajas de producto", Cantidad: decimal.RequireFromString("10"), UnidadMedida: "KG", ValorUnitario: decimal.RequireFromString("5.00"), PaisOrigen: "GT"},
		},
		CreatedAt: time.Now(),
	}
}

func TestDeclarationRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &DeclarationRepository{querier: mock, logger: logger}

		d := testDeclaration()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO declarations").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO declaration_items").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		err = repo.Create(ctx, d)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate document number rolls back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &DeclarationRepository{querier: mock, logger: logger}

		d := testDeclaration()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO declarations").
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})
		mock.ExpectRollback()

		err = repo.Create(ctx, d)
		var dupErr declaration.ErrDuplicateDocumentNumber
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, d.NumeroDocumento, dupErr.NumeroDocumento)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("item insert failure rolls back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &DeclarationRepository{querier: mock, logger: logger}

		d := testDeclaration()
		dbErr := errors.New("db error")

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO declarations").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO declaration_items").
			WillReturnError(dbErr)
		mock.ExpectRollback()

		err = repo.Create(ctx, d)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeclarationRepository_ApplyDecision(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	id := uuid.New()
	agenteID := uuid.New()
	comentario := "Documentacion completa"

	dec := declaration.Decision{
		Estado:     declaration.StatusValidada,
		AgenteID:   agenteID,
		Comentario: &comentario,
	}

	query := `UPDATE declarations`

	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &DeclarationRepository{querier: mock, logger: logger}

		mock.ExpectQuery(query).
			WithArgs(dec.Estado, dec.AgenteID, dec.Comentario, id).
			WillReturnRows(pgxmock.NewRows([]string{"numero_documento"}).AddRow("DUCA-2026-000123"))

		numero, err := repo.ApplyDecision(ctx, id, dec)
		assert.NoError(t, err)
		assert.Equal(t, "DUCA-2026-000123", numero)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing or already decided", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &DeclarationRepository{querier: mock, logger: logger}

		mock.ExpectQuery(query).
			WithArgs(dec.Estado, dec.AgenteID, dec.Comentario, id).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.ApplyDecision(ctx, id, dec)
		var notFound declaration.ErrNotFoundOrProcessed
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, id, notFound.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeclarationRepository_ListPending(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := &DeclarationRepository{querier: mock, logger: newTestLogger()}

	now := time.Now()
	rows := pgxmock.NewRows([]string{
		"id", "numero_documento", "estado", "fecha_emision", "pais_emisor", "tipo_operacion",
		"medio_transporte", "exportador_nombre", "importador_nombre", "moneda", "valor_aduana_total", "created_at",
	}).AddRow(
		uuid.New(), "DUCA-2026-000123", declaration.StatusPendiente, now, "GT", declaration.OperationImportacion,
		declaration.TransportTerrestre, "Exportadora del Sur", "Importadora del Norte", "USD", decimal.RequireFromString("52.00"), now,
	)

	mock.ExpectQuery("SELECT (.+) FROM declarations").WillReturnRows(rows)

	summaries, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "DUCA-2026-000123", summaries[0].NumeroDocumento)
	assert.Equal(t, declaration.StatusPendiente, summaries[0].Estado)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclarationRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := &DeclarationRepository{querier: mock, logger: newTestLogger()}

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM declarations").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(ctx, id)
	var notFound declaration.ErrDeclarationNotFound
	assert.ErrorAs(t, err, &notFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
