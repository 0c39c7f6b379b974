package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"studenthub/internal/config"
	"studenthub/internal/db"
	"studenthub/internal/domain"
	"studenthub/internal/images"
	"studenthub/internal/oauth"
	"studenthub/internal/payment"
	"studenthub/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testJWTSecret      = "test-jwt-secret"
	testGatewaySecret  = "test-gateway-secret"
	testGoogleClientID = "client-id"
)

// testEnv bundles the in-memory stand-ins for one test
type testEnv struct {
	db     *gorm.DB
	rdb    *redis.Client
	cfg    *config.Config
	router *gin.Engine

	gatewayOrders int                       // Orders the stub gateway has issued
	googleIDs     map[string]oauth.Identity // Identities the stub tokeninfo endpoint accepts, by token
}

// newTestEnv spins up sqlite, miniredis, stub external services and
// the full router
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Each test gets its own named in-memory database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // Keep every query on the shared in-memory connection
	require.NoError(t, gdb.AutoMigrate(db.Models()...))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	env := &testEnv{db: gdb, rdb: rdb, googleIDs: map[string]oauth.Identity{}}

	// Stub payment gateway: issues sequential order IDs
	gatewaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
			Receipt  string  `json:"receipt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		env.gatewayOrders++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       fmt.Sprintf("order_%d", env.gatewayOrders),
			"amount":   req.Amount,
			"currency": req.Currency,
			"receipt":  req.Receipt,
		})
	}))
	t.Cleanup(gatewaySrv.Close)

	// Stub image host: echoes a deterministic URL
	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://img.test/" + req.Name})
	}))
	t.Cleanup(imageSrv.Close)

	env.cfg = &config.Config{
		AppName:       "studenthub",
		JWTSecret:     testJWTSecret,
		ReferralBonus: 5,
	}
	// Stub Google tokeninfo endpoint: validates tokens the test registered
	googleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := env.googleIDs[r.URL.Query().Get("id_token")]
		if !ok {
			http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(id)
	}))
	t.Cleanup(googleSrv.Close)

	gateway := payment.NewClient(gatewaySrv.URL, "key_test", testGatewaySecret)
	imgs := images.NewClient(imageSrv.URL, "img_test")
	google := oauth.NewGoogleVerifier(googleSrv.URL, testGoogleClientID)

	env.router = NewRouter(gdb, rdb, env.cfg, gateway, imgs, google)
	return env
}

// googleToken registers a verified identity with the stub tokeninfo
// endpoint and returns the token that resolves to it
func (env *testEnv) googleToken(token, subject, email string) string {
	env.googleIDs[token] = oauth.Identity{
		Subject:  subject,
		Email:    email,
		Verified: "true",
		Audience: testGoogleClientID,
	}
	return token
}

// gatewaySign computes the signature the stub gateway would attach
func gatewaySign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testGatewaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// createUser inserts a user with a wallet and returns it with a
// session token
func createUser(t *testing.T, env *testEnv, email, username, role string) (domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	code, err := utils.NewReferralCode()
	require.NoError(t, err)
	user := domain.User{
		Email:        email,
		Username:     username,
		Password:     string(hash),
		Role:         role,
		ReferralCode: code,
	}
	require.NoError(t, env.db.Create(&user).Error)
	require.NoError(t, env.db.Create(&domain.Wallet{UserID: user.ID}).Error)
	token, err := utils.GenerateJWT(user.ID, testJWTSecret)
	require.NoError(t, err)
	return user, token
}

// fundWallet sets a wallet balance directly
func fundWallet(t *testing.T, env *testEnv, userID uint, balance float64) {
	t.Helper()
	require.NoError(t, env.db.Model(&domain.Wallet{}).Where("user_id = ?", userID).Update("balance", balance).Error)
}

// doJSON performs a request against the router and decodes the JSON body
func doJSON(t *testing.T, env *testEnv, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	}
	return w.Code, out
}

// walletBalance reads a user's balance straight from the database
func walletBalance(t *testing.T, env *testEnv, userID uint) float64 {
	t.Helper()
	var wallet domain.Wallet
	require.NoError(t, env.db.Where("user_id = ?", userID).First(&wallet).Error)
	return wallet.Balance
}
