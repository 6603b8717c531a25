package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHandler_ExportCSV(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(1, "user-1", 1, "99.99", "午餐", date, "Expense", time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(1, "餐饮", "Expense", "🍔", nil, time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.GET("/export/csv", NewExportHandler().ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv?start_time=2024-01-01&end_time=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "金额")
	assert.Contains(t, w.Body.String(), "餐饮")
	assert.Contains(t, w.Body.String(), "99.99")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportCSV_MissingParams(t *testing.T) {
	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.GET("/export/csv", NewExportHandler().ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestExportHandler_ExportCSV_BadRange(t *testing.T) {
	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.GET("/export/csv", NewExportHandler().ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv?start_time=2024-12-31&end_time=2024-01-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestExportHandler_ExportJSON(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(1, "user-1", 11, "3000.00", "工资", date, "Income", time.Now(), time.Now(), nil).
			AddRow(2, "user-1", 1, "99.99", "午餐", date, "Expense", time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(1, "餐饮", "Expense", "🍔", nil, time.Now(), time.Now(), nil).
			AddRow(11, "工资", "Income", "💰", nil, time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.GET("/export/json", NewExportHandler().ExportJSON)

	req := httptest.NewRequest("GET", "/export/json?start_time=2024-01-01&end_time=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp.Data["total_count"])
	assert.Equal(t, "3000", resp.Data["total_income"])
	assert.Equal(t, "99.99", resp.Data["total_expenses"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportExcel(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(1, "user-1", 1, "99.99", "午餐", date, "Expense", time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(1, "餐饮", "Expense", "🍔", nil, time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.GET("/export/excel", NewExportHandler().ExportExcel)

	req := httptest.NewRequest("GET", "/export/excel?start_time=2024-01-01&end_time=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, w.Body.Bytes())
	require.NoError(t, mock.ExpectationsWereMet())
}
