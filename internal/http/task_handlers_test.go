package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/Saatvik786/TaskSphere/internal/domain"
	"github.com/Saatvik786/TaskSphere/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type taskBody struct {
	Task domain.Task `json:"task"`
}

func Test_Tasks_CRUD(t *testing.T) {
	env := newTestEnv(t)
	a := env.register("A", "a@x.com", "p1")
	auth := bearer(a.Token)

	w := env.do("POST", "/api/tasks", `{"title":"Write docs","description":"api"}`, auth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[taskBody](t, w).Task
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, a.User.ID, created.UserID.Hex())
	id := created.ID.Hex()

	time.Sleep(2 * time.Millisecond)
	w = env.do("POST", "/api/tasks", `{"title":"Ship","status":"in-progress"}`, auth)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do("GET", "/api/tasks", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Count int           `json:"count"`
		Tasks []domain.Task `json:"tasks"`
	}](t, w)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "Ship", list.Tasks[0].Title)

	w = env.do("GET", "/api/tasks/"+id, "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Write docs", decode[taskBody](t, w).Task.Title)

	w = env.do("PUT", "/api/tasks/"+id, `{"status":"completed","description":""}`, auth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	up := decode[taskBody](t, w).Task
	assert.Equal(t, "Write docs", up.Title)
	assert.Equal(t, "", up.Description)
	assert.Equal(t, domain.StatusCompleted, up.Status)

	w = env.do("DELETE", "/api/tasks/"+id, "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do("GET", "/api/tasks/"+id, "", auth)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", errorOf(t, w))

	require.Eventually(t, func() bool {
		_, ok := env.Events.find(queue.KeyTaskCreated)
		return ok
	}, time.Second, 10*time.Millisecond)
}

func Test_Tasks_Validation(t *testing.T) {
	env := newTestEnv(t)
	auth := bearer(env.register("A", "a@x.com", "p1").Token)

	w := env.do("POST", "/api/tasks", `{"description":"no title"}`, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please provide a task title", errorOf(t, w))

	w = env.do("POST", "/api/tasks", `{"title":"x","status":"someday"}`, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorOf(t, w), "status")
}

func Test_Tasks_Ownership(t *testing.T) {
	env := newTestEnv(t)
	a := bearer(env.register("A", "a@x.com", "p1").Token)
	b := bearer(env.register("B", "b@x.com", "p2").Token)

	w := env.do("POST", "/api/tasks", `{"title":"private"}`, a)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[taskBody](t, w).Task.ID.Hex()

	for _, req := range []struct{ method, body string }{
		{"GET", ""},
		{"PUT", `{"title":"mine now"}`},
		{"DELETE", ""},
	} {
		w := env.do(req.method, "/api/tasks/"+id, req.body, b)
		assert.Equal(t, http.StatusForbidden, w.Code, req.method)
	}

	w = env.do("GET", "/api/tasks", "", b)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)

	w = env.do("GET", "/api/tasks/"+id, "", a)
	assert.Equal(t, "private", decode[taskBody](t, w).Task.Title)

	assert.Equal(t, http.StatusNotFound, env.do("GET", "/api/tasks/not-an-id", "", a).Code)
	assert.Equal(t, http.StatusNotFound, env.do("GET", "/api/tasks/"+primitive.NewObjectID().Hex(), "", a).Code)
}

func Test_Tasks_RequireToken(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusUnauthorized, env.do("GET", "/api/tasks", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do("POST", "/api/tasks", `{"title":"x"}`, nil).Code)
}
