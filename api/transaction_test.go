package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transactionColumns() []string {
	return []string{"id", "user_id", "category_id", "amount", "description",
		"transaction_date", "type", "created_at", "updated_at", "deleted_at"}
}

func TestTransactionHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 查询类别
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(1, "餐饮", "Expense", "🍔", nil, time.Now(), time.Now(), nil))

	// INSERT transaction
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"category_id":1,"amount":99.99,"description":"午餐","transaction_date":"2024-11-15"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])

	// 类型取自类别
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Expense", data["type"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_InvalidCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()))

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"category_id":999,"amount":10,"transaction_date":"2024-11-15"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_NonPositiveAmount(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(1, "餐饮", "Expense", "🍔", nil, time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"category_id":1,"amount":-5,"transaction_date":"2024-11-15"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_PageSizeClamped(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()))

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.GET("/transactions", NewTransactionHandler().List)

	req := httptest.NewRequest("GET", "/transactions?pageNumber=0&pageSize=500", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data PageResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Page)
	assert.Equal(t, 100, resp.Data.PageSize)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_BadDateRange(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.GET("/transactions", NewTransactionHandler().List)

	req := httptest.NewRequest("GET", "/transactions?startDate=2024-12-31&endDate=2024-01-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestTransactionHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()))

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.GET("/transactions/:id", NewTransactionHandler().Get)

	req := httptest.NewRequest("GET", "/transactions/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Delete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(7, "user-1", 1, "50.00", "打车", time.Now(), "Expense", time.Now(), time.Now(), nil))

	// 软删除走 UPDATE
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.DELETE("/transactions/:id", NewTransactionHandler().Delete)

	req := httptest.NewRequest("DELETE", "/transactions/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_GetStatistics(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("3000.00"))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("800.00"))

	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	router.GET("/transactions/statistics", NewTransactionHandler().GetStatistics)

	req := httptest.NewRequest("GET", "/transactions/statistics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data struct {
			TotalIncome   string `json:"total_income"`
			TotalExpenses string `json:"total_expenses"`
			Balance       string `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "3000", resp.Data.TotalIncome)
	assert.Equal(t, "800", resp.Data.TotalExpenses)
	assert.Equal(t, "2200", resp.Data.Balance)
	require.NoError(t, mock.ExpectationsWereMet())
}
