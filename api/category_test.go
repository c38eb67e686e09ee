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

var categoryColumns = []string{"id", "name", "color", "user_id", "created_at", "updated_at", "deleted_at"}

func TestCategoryHandler_List(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(2, "交通", "#3b82f6", 1, now, now, nil).
			AddRow(1, "餐饮", "#ef4444", 1, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/categories", NewCategoryHandler(db).List)

	req := httptest.NewRequest("GET", "/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	assert.Len(t, list, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 重名预检查：无同名类别
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1, "宠物").
		WillReturnRows(sqlmock.NewRows([]string{}))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/categories", NewCategoryHandler(db).Create)

	body := `{"name":"宠物","color":"#f59e0b"}`
	req := httptest.NewRequest("POST", "/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "宠物", data["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_DuplicateName(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 同一用户下已存在同名类别，不应产生写入
	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1, "餐饮").
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(1, "餐饮", "#ef4444", 1, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/categories", NewCategoryHandler(db).Create)

	body := `{"name":"餐饮"}`
	req := httptest.NewRequest("POST", "/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "已存在同名类别", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Get_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(categoryColumns))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/categories/:id", NewCategoryHandler(db).Get)

	req := httptest.NewRequest("GET", "/categories/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Get_Forbidden(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(3, "餐饮", "#ef4444", 2, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/categories/:id", NewCategoryHandler(db).Get)

	req := httptest.NewRequest("GET", "/categories/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 403, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "无权访问该类别", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Update(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(1, "餐饮", "#ef4444", 1, now, now, nil))

	// 改名时检查新名称是否与其他类别重名
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1, "吃喝", 1).
		WillReturnRows(sqlmock.NewRows([]string{}))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/categories/:id", NewCategoryHandler(db).Update)

	body := `{"name":"吃喝"}`
	req := httptest.NewRequest("PUT", "/categories/1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "更新成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Delete(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(1, "餐饮", "#ef4444", 1, now, now, nil))

	// 同一事务内先解除交易引用，再软删除类别
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions`").
		WithArgs(nil, sqlmock.AnyArg(), 1, 1).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE `categories`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/categories/:id", NewCategoryHandler(db).Delete)

	req := httptest.NewRequest("DELETE", "/categories/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "删除成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}
