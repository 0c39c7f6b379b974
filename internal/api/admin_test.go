package api

import (
	"fmt"
	"net/http"
	"testing"

	"studenthub/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRejectRegularUsers(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")

	for _, path := range []string{"/admin/users", "/admin/transactions", "/admin/projects"} {
		code, _ := doJSON(t, env, http.MethodGet, path, nil, token)
		require.Equal(t, http.StatusForbidden, code, path)
	}
}

func TestAdminListUsers(t *testing.T) {
	env := newTestEnv(t)
	createUser(t, env, "ali@campus.edu", "ali_k", "user")
	createUser(t, env, "bea@campus.edu", "bea_m", "user")
	_, adminToken := createUser(t, env, "admin@campus.edu", "the_admin", "admin")

	code, body := doJSON(t, env, http.MethodGet, "/admin/users", nil, adminToken)
	require.Equal(t, http.StatusOK, code)
	users := body["users"].([]any)
	require.Len(t, users, 3)
	require.EqualValues(t, 3, body["total"])
	first := users[0].(map[string]any)
	require.Contains(t, first, "email")
	require.Contains(t, first, "flag_count")
	require.Contains(t, first, "wallet")
}

func TestAdminListTransactionsWithFilters(t *testing.T) {
	env := newTestEnv(t)
	user, _ := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	_, adminToken := createUser(t, env, "admin@campus.edu", "the_admin", "admin")

	var wallet domain.Wallet
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&wallet).Error)
	for i, typ := range []string{domain.TxTopup, domain.TxTopup, domain.TxTransferOut} {
		tx := domain.WalletTransaction{
			WalletID:  wallet.ID,
			Amount:    float64(10 * (i + 1)),
			Type:      typ,
			Status:    domain.TxCompleted,
			Reference: fmt.Sprintf("REF-%d", i),
		}
		require.NoError(t, env.db.Create(&tx).Error)
	}

	code, body := doJSON(t, env, http.MethodGet, "/admin/transactions", nil, adminToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 3, body["total"])

	code, body = doJSON(t, env, http.MethodGet, "/admin/transactions?type=topup", nil, adminToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 2, body["total"])
	require.Len(t, body["transactions"], 2)
}

func TestAdminProjectQueueFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	_, adminToken := createUser(t, env, "admin@campus.edu", "the_admin", "admin")

	first := submitProject(t, env, token, "First request")
	submitProject(t, env, token, "Second request")
	code, _ := doJSON(t, env, http.MethodPost, fmt.Sprintf("/admin/projects/%d/approve", first), nil, adminToken)
	require.Equal(t, http.StatusOK, code)

	code, body := doJSON(t, env, http.MethodGet, "/admin/projects?status=pending", nil, adminToken)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["projects"], 1)
	require.EqualValues(t, 1, body["total"])
}

func TestAdminBlockAndUnblockUser(t *testing.T) {
	env := newTestEnv(t)
	target, targetToken := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	_, adminToken := createUser(t, env, "admin@campus.edu", "the_admin", "admin")

	code, _ := doJSON(t, env, http.MethodPost, fmt.Sprintf("/admin/users/%d/block", target.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, env, http.MethodGet, "/me", nil, targetToken)
	require.Equal(t, http.StatusForbidden, code)

	// The user was told
	var n domain.Notification
	require.NoError(t, env.db.Where("recipient_id = ? AND type = ?", target.ID, domain.NotifAccountState).First(&n).Error)

	code, _ = doJSON(t, env, http.MethodPost, fmt.Sprintf("/admin/users/%d/unblock", target.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, code)
	code, _ = doJSON(t, env, http.MethodGet, "/me", nil, targetToken)
	require.Equal(t, http.StatusOK, code)
}

func TestAdminBlockUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := createUser(t, env, "admin@campus.edu", "the_admin", "admin")

	code, _ := doJSON(t, env, http.MethodPost, "/admin/users/9999/block", nil, adminToken)
	require.Equal(t, http.StatusNotFound, code)
}
