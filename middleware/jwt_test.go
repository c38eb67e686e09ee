package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"financy/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func initJWTTestConfig() {
	InitJWT(&config.Config{
		JWT: config.JWTConfig{Secret: "test-jwt-secret-key"},
	})
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() {
		sqlDB.Close()
	}
}

func TestGenerateToken(t *testing.T) {
	initJWTTestConfig()

	token, err := GenerateToken(1, "test@example.com", 24*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, len(token), 20)

	// 可解析
	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
}

func TestParseToken(t *testing.T) {
	initJWTTestConfig()

	// 合法 token
	token, _ := GenerateToken(100, "admin@example.com", time.Hour)
	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(100), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)

	// 空字符串
	_, err = ParseToken("")
	assert.Error(t, err)

	// 无效格式
	_, err = ParseToken("not.a.valid.jwt")
	assert.Error(t, err)
	_, err = ParseToken("eyJhbGciOiJmb29iIn0.xxxx.yyyy")
	assert.Error(t, err)

	// 已过期
	expired, _ := GenerateToken(1, "test@example.com", -time.Hour)
	_, err = ParseToken(expired)
	assert.Error(t, err)
}

func TestJWTAuth(t *testing.T) {
	initJWTTestConfig()
	gin.SetMode(gin.TestMode)

	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(JWTAuth(db))
	router.GET("/protected", func(c *gin.Context) {
		id := GetCurrentUserID(c)
		c.String(200, "id:%d", id)
	})

	// 无 token
	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "401")

	// 格式错误（非 Bearer）
	req2 := httptest.NewRequest("GET", "/protected", nil)
	req2.Header.Set("Authorization", "Basic xyz")
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)

	// 格式错误（仅 Bearer 无 token）
	req3 := httptest.NewRequest("GET", "/protected", nil)
	req3.Header.Set("Authorization", "Bearer ")
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, req3)
	assert.Equal(t, http.StatusUnauthorized, w3.Code)

	// 有效 token + 用户存在
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "created_at", "updated_at", "deleted_at"}).
			AddRow(42, "用户42", "u42@example.com", "hash", time.Now(), time.Now(), nil))

	token, _ := GenerateToken(42, "u42@example.com", time.Hour)
	req4 := httptest.NewRequest("GET", "/protected", nil)
	req4.Header.Set("Authorization", "Bearer "+token)
	w4 := httptest.NewRecorder()
	router.ServeHTTP(w4, req4)
	assert.Equal(t, 200, w4.Code)
	assert.Equal(t, "id:42", w4.Body.String())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJWTAuth_UserDeleted(t *testing.T) {
	initJWTTestConfig()
	gin.SetMode(gin.TestMode)

	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// token 有效但用户已被删除：按未认证处理
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(JWTAuth(db))
	router.GET("/protected", func(c *gin.Context) {
		c.String(200, "ok")
	})

	token, _ := GenerateToken(7, "ghost@example.com", time.Hour)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uint(0), GetCurrentUserID(c))

	c.Set("userID", uint(99))
	assert.Equal(t, uint(99), GetCurrentUserID(c))
}
