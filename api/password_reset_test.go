package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"financy/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var passwordResetColumns = []string{"id", "user_id", "token", "email", "expires_at", "used", "created_at", "deleted_at"}

func newPasswordResetRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewPasswordResetHandler(&config.Config{}, db)
	router.POST("/verify-code", h.VerifyResetCode)
	router.POST("/reset", h.ResetPassword)
	return router
}

func TestPasswordResetHandler_VerifyResetCode(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `password_resets`").
		WithArgs("test@example.com", "123456").
		WillReturnRows(sqlmock.NewRows(passwordResetColumns).
			AddRow(1, 1, "123456", "test@example.com", time.Now().Add(5*time.Minute), false, time.Now(), nil))

	router := newPasswordResetRouter(db)

	body := `{"email":"test@example.com","code":"123456"}`
	req := httptest.NewRequest("POST", "/verify-code", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "验证成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetHandler_VerifyResetCode_Expired(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `password_resets`").
		WithArgs("test@example.com", "123456").
		WillReturnRows(sqlmock.NewRows(passwordResetColumns).
			AddRow(1, 1, "123456", "test@example.com", time.Now().Add(-time.Minute), false, time.Now().Add(-11*time.Minute), nil))

	router := newPasswordResetRouter(db)

	body := `{"email":"test@example.com","code":"123456"}`
	req := httptest.NewRequest("POST", "/verify-code", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "过期")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetHandler_VerifyResetCode_WrongCode(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `password_resets`").
		WithArgs("test@example.com", "000000").
		WillReturnRows(sqlmock.NewRows(passwordResetColumns))

	router := newPasswordResetRouter(db)

	body := `{"email":"test@example.com","code":"000000"}`
	req := httptest.NewRequest("POST", "/verify-code", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetHandler_ResetPassword(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `password_resets`").
		WithArgs("test@example.com", "123456").
		WillReturnRows(sqlmock.NewRows(passwordResetColumns).
			AddRow(1, 1, "123456", "test@example.com", time.Now().Add(5*time.Minute), false, time.Now(), nil))

	// 更新用户密码
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 使该用户所有未使用的验证码失效
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `password_resets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := newPasswordResetRouter(db)

	body := `{"email":"test@example.com","code":"123456","new_password":"newpassword123"}`
	req := httptest.NewRequest("POST", "/reset", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "密码重置成功，请使用新密码登录", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}
