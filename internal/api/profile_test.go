package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"

	"studenthub/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestGetAndUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")

	code, body := doJSON(t, env, http.MethodGet, "/me", nil, token)
	require.Equal(t, http.StatusOK, code)
	profile := body["profile"].(map[string]any)
	require.Equal(t, "ali_k", profile["username"])
	require.NotEmpty(t, profile["referral_code"])

	code, body = doJSON(t, env, http.MethodPut, "/me", map[string]any{
		"username": "ali_kareem",
		"bio":      "CS senior, coffee powered",
	}, token)
	require.Equal(t, http.StatusOK, code)
	profile = body["profile"].(map[string]any)
	require.Equal(t, "ali_kareem", profile["username"])
	require.Equal(t, "CS senior, coffee powered", profile["bio"])
}

func TestUpdateProfileLowercasesUsername(t *testing.T) {
	env := newTestEnv(t)
	sender, senderToken := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	receiver, receiverToken := createUser(t, env, "bea@campus.edu", "bea_m", "user")
	fundWallet(t, env, sender.ID, 50)

	// A mixed-case edit is stored as the lowercase handle
	code, body := doJSON(t, env, http.MethodPut, "/me", map[string]any{"username": "Bea_Martin"}, receiverToken)
	require.Equal(t, http.StatusOK, code)
	profile := body["profile"].(map[string]any)
	require.Equal(t, "bea_martin", profile["username"])

	// Transfer lookup by the canonical handle still resolves
	code, _ = doJSON(t, env, http.MethodPost, "/wallet/transfer", map[string]any{
		"to_username": "bea_martin",
		"amount":      10.0,
	}, senderToken)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 10.0, walletBalance(t, env, receiver.ID))
}

func TestUpdateProfileValidation(t *testing.T) {
	env := newTestEnv(t)
	createUser(t, env, "ali@campus.edu", "ali_k", "user")
	_, token := createUser(t, env, "bea@campus.edu", "bea_m", "user")

	// Bad handle
	code, _ := doJSON(t, env, http.MethodPut, "/me", map[string]any{"username": "1x"}, token)
	require.Equal(t, http.StatusBadRequest, code)

	// Taken handle
	code, _ = doJSON(t, env, http.MethodPut, "/me", map[string]any{"username": "ali_k"}, token)
	require.Equal(t, http.StatusBadRequest, code)

	// Empty body has nothing to apply
	code, _ = doJSON(t, env, http.MethodPut, "/me", map[string]any{}, token)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t)
	user, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")

	payload := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	code, body := doJSON(t, env, http.MethodPost, "/me/avatar", map[string]any{"image": payload}, token)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, fmt.Sprintf("https://img.test/avatar-%d", user.ID), body["avatar_url"])

	var stored domain.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	require.Equal(t, body["avatar_url"], stored.AvatarURL)
}

func TestThirdFlagBlocksUser(t *testing.T) {
	env := newTestEnv(t)
	target, targetToken := createUser(t, env, "ali@campus.edu", "ali_k", "user")

	for i := 0; i < 3; i++ {
		_, reporterToken := createUser(t, env,
			fmt.Sprintf("rep%d@campus.edu", i), fmt.Sprintf("reporter_%d", i), "user")
		code, body := doJSON(t, env, http.MethodPost, fmt.Sprintf("/users/%d/flag", target.ID), map[string]any{
			"reason": "harassment",
		}, reporterToken)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, i == 2, body["blocked"]) // Blocked exactly on the third report
	}

	var stored domain.User
	require.NoError(t, env.db.First(&stored, target.ID).Error)
	require.True(t, stored.Blocked)
	require.Equal(t, 3, stored.FlagCount)

	// The blocked user's existing token no longer works
	code, body := doJSON(t, env, http.MethodGet, "/me", nil, targetToken)
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "Account is blocked", body["error"])
}

func TestFlagUserRejectsSelfAndDuplicates(t *testing.T) {
	env := newTestEnv(t)
	target, _ := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	reporter, reporterToken := createUser(t, env, "bea@campus.edu", "bea_m", "user")

	code, _ := doJSON(t, env, http.MethodPost, fmt.Sprintf("/users/%d/flag", reporter.ID), map[string]any{
		"reason": "oops",
	}, reporterToken)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = doJSON(t, env, http.MethodPost, fmt.Sprintf("/users/%d/flag", target.ID), map[string]any{
		"reason": "spam",
	}, reporterToken)
	require.Equal(t, http.StatusOK, code)
	code, _ = doJSON(t, env, http.MethodPost, fmt.Sprintf("/users/%d/flag", target.ID), map[string]any{
		"reason": "spam again",
	}, reporterToken)
	require.Equal(t, http.StatusBadRequest, code)

	var stored domain.User
	require.NoError(t, env.db.First(&stored, target.ID).Error)
	require.Equal(t, 1, stored.FlagCount)
}
