package api

import (
	"fmt"
	"net/http"
	"testing"

	"studenthub/internal/domain"

	"github.com/stretchr/testify/require"
)

func submitProject(t *testing.T, env *testEnv, token, title string) uint {
	t.Helper()
	code, body := doJSON(t, env, http.MethodPost, "/projects", map[string]any{
		"title":       title,
		"description": "Need this built",
		"category":    "web",
		"budget":      120.0,
	}, token)
	require.Equal(t, http.StatusCreated, code)
	project := body["project"].(map[string]any)
	require.Equal(t, domain.ProjectPending, project["status"])
	require.NotEmpty(t, project["reference"])
	return uint(project["id"].(float64))
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)
	owner, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	_, adminToken := createUser(t, env, "admin@campus.edu", "the_admin", "admin")

	id := submitProject(t, env, token, "Portfolio site")

	// Owner can edit while pending
	code, _ := doJSON(t, env, http.MethodPut, fmt.Sprintf("/projects/%d", id), map[string]any{
		"budget": 150.0,
	}, token)
	require.Equal(t, http.StatusOK, code)

	// Admin approves, the owner is notified
	code, _ = doJSON(t, env, http.MethodPost, fmt.Sprintf("/admin/projects/%d/approve", id), nil, adminToken)
	require.Equal(t, http.StatusOK, code)
	var n domain.Notification
	require.NoError(t, env.db.Where("recipient_id = ? AND type = ?", owner.ID, domain.NotifOrderStatus).First(&n).Error)

	// Edits are closed after review
	code, _ = doJSON(t, env, http.MethodPut, fmt.Sprintf("/projects/%d", id), map[string]any{
		"budget": 200.0,
	}, token)
	require.Equal(t, http.StatusBadRequest, code)

	// Fulfillment stages move in order
	code, _ = doJSON(t, env, http.MethodPost, fmt.Sprintf("/admin/projects/%d/status", id), map[string]any{
		"status": domain.ProjectDelivered,
	}, adminToken)
	require.Equal(t, http.StatusBadRequest, code) // Not in progress yet

	code, _ = doJSON(t, env, http.MethodPost, fmt.Sprintf("/admin/projects/%d/status", id), map[string]any{
		"status": domain.ProjectInProgress,
	}, adminToken)
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, env, http.MethodPost, fmt.Sprintf("/admin/projects/%d/status", id), map[string]any{
		"status": domain.ProjectDelivered,
	}, adminToken)
	require.Equal(t, http.StatusOK, code)

	var order domain.ProjectOrder
	require.NoError(t, env.db.First(&order, id).Error)
	require.Equal(t, domain.ProjectDelivered, order.Status)
}

func TestProjectRejectCarriesNote(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	_, adminToken := createUser(t, env, "admin@campus.edu", "the_admin", "admin")

	id := submitProject(t, env, token, "Vague request")

	code, _ := doJSON(t, env, http.MethodPost, fmt.Sprintf("/admin/projects/%d/reject", id), map[string]any{
		"note": "Scope unclear",
	}, adminToken)
	require.Equal(t, http.StatusOK, code)

	var order domain.ProjectOrder
	require.NoError(t, env.db.First(&order, id).Error)
	require.Equal(t, domain.ProjectRejected, order.Status)
	require.Equal(t, "Scope unclear", order.AdminNote)
}

func TestProjectCancelOnlyWhilePending(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	_, adminToken := createUser(t, env, "admin@campus.edu", "the_admin", "admin")

	id := submitProject(t, env, token, "Changed my mind")
	code, _ := doJSON(t, env, http.MethodPost, fmt.Sprintf("/projects/%d/cancel", id), nil, token)
	require.Equal(t, http.StatusOK, code)

	id2 := submitProject(t, env, token, "Too late to cancel")
	code, _ = doJSON(t, env, http.MethodPost, fmt.Sprintf("/admin/projects/%d/approve", id2), nil, adminToken)
	require.Equal(t, http.StatusOK, code)
	code, _ = doJSON(t, env, http.MethodPost, fmt.Sprintf("/projects/%d/cancel", id2), nil, token)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestProjectOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := createUser(t, env, "ali@campus.edu", "ali_k", "user")
	_, otherToken := createUser(t, env, "bea@campus.edu", "bea_m", "user")

	id := submitProject(t, env, ownerToken, "Private order")

	// Another user cannot read, edit or cancel it
	code, _ := doJSON(t, env, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, otherToken)
	require.Equal(t, http.StatusNotFound, code)
	code, _ = doJSON(t, env, http.MethodPut, fmt.Sprintf("/projects/%d", id), map[string]any{"title": "Hijacked"}, otherToken)
	require.Equal(t, http.StatusNotFound, code)
	code, _ = doJSON(t, env, http.MethodPost, fmt.Sprintf("/projects/%d/cancel", id), nil, otherToken)
	require.Equal(t, http.StatusNotFound, code)
}

func TestProjectListFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")

	submitProject(t, env, token, "First")
	id := submitProject(t, env, token, "Second")
	code, _ := doJSON(t, env, http.MethodPost, fmt.Sprintf("/projects/%d/cancel", id), nil, token)
	require.Equal(t, http.StatusOK, code)

	code, body := doJSON(t, env, http.MethodGet, "/projects?status=pending", nil, token)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["projects"], 1)
	require.EqualValues(t, 1, body["total"])
}

func TestProjectDeadlineValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, "ali@campus.edu", "ali_k", "user")

	code, _ := doJSON(t, env, http.MethodPost, "/projects", map[string]any{
		"title":       "With deadline",
		"description": "Need this built",
		"category":    "web",
		"budget":      120.0,
		"deadline":    "next tuesday",
	}, token)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = doJSON(t, env, http.MethodPost, "/projects", map[string]any{
		"title":       "With deadline",
		"description": "Need this built",
		"category":    "web",
		"budget":      120.0,
		"deadline":    "2026-12-01T00:00:00Z",
	}, token)
	require.Equal(t, http.StatusCreated, code)
}
