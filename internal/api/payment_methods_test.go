package api

import (
	"fmt"
	"net/http"
	"testing"

	"studenthub/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestFirstPaymentMethodBecomesDefault(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")

	code, body := doJSON(t, env, http.MethodPost, "/wallet/methods", map[string]any{
		"kind":   "card",
		"label":  "Campus debit card",
		"masked": "**** 4242",
	}, token)
	require.Equal(t, http.StatusCreated, code)
	method := body["method"].(map[string]any)
	require.Equal(t, true, method["is_default"])

	// The second one does not steal the default
	code, body = doJSON(t, env, http.MethodPost, "/wallet/methods", map[string]any{
		"kind":  "upi",
		"label": "Personal UPI",
	}, token)
	require.Equal(t, http.StatusCreated, code)
	method = body["method"].(map[string]any)
	require.Equal(t, false, method["is_default"])
}

func TestSetDefaultPaymentMethodIsExclusive(t *testing.T) {
	env := newTestEnv(t)
	user, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")

	var ids []uint
	for i := 0; i < 3; i++ {
		code, body := doJSON(t, env, http.MethodPost, "/wallet/methods", map[string]any{
			"kind":  "card",
			"label": fmt.Sprintf("Card %d", i+1),
		}, token)
		require.Equal(t, http.StatusCreated, code)
		method := body["method"].(map[string]any)
		ids = append(ids, uint(method["id"].(float64)))
	}

	code, _ := doJSON(t, env, http.MethodPut, fmt.Sprintf("/wallet/methods/%d/default", ids[2]), nil, token)
	require.Equal(t, http.StatusOK, code)

	// Exactly one default, and it is the one that was set
	var defaults []domain.PaymentMethod
	require.NoError(t, env.db.Where("user_id = ? AND is_default = ?", user.ID, true).Find(&defaults).Error)
	require.Len(t, defaults, 1)
	require.Equal(t, ids[2], defaults[0].ID)
}

func TestSetDefaultOnForeignMethodFails(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	_, otherToken := createUser(t, env, "bea@campus.edu", "bea_m", "user")

	code, body := doJSON(t, env, http.MethodPost, "/wallet/methods", map[string]any{
		"kind":  "bank",
		"label": "Savings account",
	}, ownerToken)
	require.Equal(t, http.StatusCreated, code)
	method := body["method"].(map[string]any)
	id := uint(method["id"].(float64))

	code, _ = doJSON(t, env, http.MethodPut, fmt.Sprintf("/wallet/methods/%d/default", id), nil, otherToken)
	require.Equal(t, http.StatusNotFound, code)
}

func TestDeletePaymentMethod(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	_, otherToken := createUser(t, env, "bea@campus.edu", "bea_m", "user")

	code, body := doJSON(t, env, http.MethodPost, "/wallet/methods", map[string]any{
		"kind":  "card",
		"label": "Campus debit card",
	}, token)
	require.Equal(t, http.StatusCreated, code)
	method := body["method"].(map[string]any)
	id := uint(method["id"].(float64))

	// Someone else cannot delete it
	code, _ = doJSON(t, env, http.MethodDelete, fmt.Sprintf("/wallet/methods/%d", id), nil, otherToken)
	require.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, env, http.MethodDelete, fmt.Sprintf("/wallet/methods/%d", id), nil, token)
	require.Equal(t, http.StatusOK, code)

	code, body = doJSON(t, env, http.MethodGet, "/wallet/methods", nil, token)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, body["methods"])
}

func TestAddPaymentMethodRejectsUnknownKind(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")

	code, _ := doJSON(t, env, http.MethodPost, "/wallet/methods", map[string]any{
		"kind":  "crypto",
		"label": "Cold wallet",
	}, token)
	require.Equal(t, http.StatusBadRequest, code)
}
