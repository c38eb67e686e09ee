package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHandler_ExportCSV(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(1, "午餐", 39.90, "expense", now, nil, 1, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/export/csv", NewExportHandler(db).ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv?start_time=2024-01-01&end_time=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "金额")
	assert.Contains(t, w.Body.String(), "午餐")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportCSV_MissingParams(t *testing.T) {
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/export/csv", NewExportHandler(db).ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestExportHandler_ExportCSV_BadTimeFormat(t *testing.T) {
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/export/csv", NewExportHandler(db).ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv?start_time=01/01/2024&end_time=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestExportHandler_ExportJSON(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(1, "工资", 8000.00, "income", now, nil, 1, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/export/json", NewExportHandler(db).ExportJSON)

	req := httptest.NewRequest("GET", "/export/json?start_time=2024-01-01&end_time=2024-12-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "工资")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportExcel(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(1, "午餐", 39.90, "expense", now, nil, 1, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/export/excel", NewExportHandler(db).ExportExcel)

	req := httptest.NewRequest("GET", "/export/excel?start_time=2024-01-01&end_time=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
	require.NoError(t, mock.ExpectationsWereMet())
}
