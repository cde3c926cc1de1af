package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"todo-app/internal/domain"
	gormpersistence "todo-app/internal/infra/persistence/gorm"
	"todo-app/internal/infra/setup"
)

type testEnv struct {
	router http.Handler
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := setup.InitDB("sqlite://:memory:", nil)
	require.NoError(t, err)
	require.NoError(t, setup.MigrateDB(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &Config{
		SecretKey:       "test-secret",
		KeyPrefix:       "test:",
		SessionTTL:      time.Hour,
		AppEnv:          "test",
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
		BcryptCost:      bcrypt.MinCost,
	}
	router, err := NewRouter(cfg, log, db, rdb)
	require.NoError(t, err)
	return &testEnv{router: router, db: db}
}

// client 模拟一个浏览器，在请求之间传递 Cookie
type client struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (e *testEnv) newClient(t *testing.T) *client {
	return &client{t: t, env: e, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.env.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) register(username, password, confirm string) *httptest.ResponseRecorder {
	return c.postForm("/register", url.Values{
		"username":         {username},
		"password":         {password},
		"confirm_password": {confirm},
	})
}

func (c *client) login(username, password string) *httptest.ResponseRecorder {
	return c.postForm("/login", url.Values{"username": {username}, "password": {password}})
}

func (c *client) addTask(title, priority string) *httptest.ResponseRecorder {
	return c.postForm("/", url.Values{"task": {title}, "priority": {priority}})
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, location, w.Header().Get("Location"))
}

func (e *testEnv) userCount(t *testing.T, username string) int64 {
	var n int64
	require.NoError(t, e.db.Model(&domain.User{}).Where("username = ?", username).Count(&n).Error)
	return n
}

func (e *testEnv) userID(t *testing.T, username string) uint {
	user, err := gormpersistence.NewGormUserRepository(e.db).FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return user.ID
}

func (e *testEnv) tasks(t *testing.T, userID uint, status domain.TaskStatus) []domain.Task {
	tasks, err := gormpersistence.NewGormTaskRepository(e.db).ListByStatus(context.Background(), userID, status)
	require.NoError(t, err)
	return tasks
}

func titlesOf(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestTodoFlow_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	alice := env.newClient(t)

	assertRedirect(t, alice.register("alice", "secret1", "secret1"), "/login")
	assert.Contains(t, alice.get("/login").Body.String(), "Registration successful! Please log in.")

	assertRedirect(t, alice.login("alice", "secret1"), "/")
	assertRedirect(t, alice.addTask("Buy milk", "2"), "/")
	assertRedirect(t, alice.addTask("Call bank", "5"), "/")

	page := alice.get("/")
	require.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	assert.Contains(t, body, "Task added successfully!")
	assert.Less(t, strings.Index(body, "Call bank"), strings.Index(body, "Buy milk"), "高优先级任务在前")

	userID := env.userID(t, "alice")
	active := env.tasks(t, userID, domain.StatusNotDone)
	require.Equal(t, []string{"Call bank", "Buy milk"}, titlesOf(active))

	buyMilk := active[1]
	assertRedirect(t, alice.postForm(fmt.Sprintf("/done/%d", buyMilk.ID), nil), "/")

	assert.Equal(t, []string{"Call bank"}, titlesOf(env.tasks(t, userID, domain.StatusNotDone)))
	assert.Equal(t, []string{"Buy milk"}, titlesOf(env.tasks(t, userID, domain.StatusDone)))

	completed := alice.get("/completed_tasks")
	require.Equal(t, http.StatusOK, completed.Code)
	assert.Contains(t, completed.Body.String(), "Task marked as done!")
	assert.Contains(t, completed.Body.String(), "Buy milk")

	// 删除已完成任务
	assertRedirect(t, alice.postForm(fmt.Sprintf("/delete_completed/%d", buyMilk.ID), nil), "/completed_tasks")
	assert.Empty(t, env.tasks(t, userID, domain.StatusDone))
	assert.Contains(t, alice.get("/completed_tasks").Body.String(), "Completed task deleted successfully.")

	// 注销后受保护页面不可访问
	assertRedirect(t, alice.get("/logout"), "/login")
	assert.Contains(t, alice.get("/login").Body.String(), "You have been logged out.")
	assertRedirect(t, alice.get("/"), "/login")
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)

	assertRedirect(t, c.register("al", "secret1", "secret1"), "/register")
	assert.Contains(t, c.get("/register").Body.String(), "Username must be at least 3 characters long.")
	assert.Zero(t, env.userCount(t, "al"))

	assertRedirect(t, c.register("bob", "short", "short"), "/register")
	assert.Contains(t, c.get("/register").Body.String(), "Password must be at least 6 characters long.")

	assertRedirect(t, c.register("bob", "secret1", "secret2"), "/register")
	assert.Contains(t, c.get("/register").Body.String(), "Passwords do not match!")
	assert.Zero(t, env.userCount(t, "bob"))
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)

	assertRedirect(t, c.register("carol", "secret1", "secret1"), "/login")
	assertRedirect(t, c.register("carol", "other-pass", "other-pass"), "/register")
	assert.Contains(t, c.get("/register").Body.String(), "Username already exists!")
	assert.Equal(t, int64(1), env.userCount(t, "carol"))
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)
	assertRedirect(t, c.register("dave", "secret1", "secret1"), "/login")

	assertRedirect(t, c.login("dave", "wrong-pass"), "/login")
	assert.Contains(t, c.get("/login").Body.String(), "Invalid username or password")
	assertRedirect(t, c.get("/"), "/login")

	// 不存在的用户得到同样的提示
	assertRedirect(t, c.login("nobody", "whatever"), "/login")
	assert.Contains(t, c.get("/login").Body.String(), "Invalid username or password")
}

func TestGate_RedirectsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)

	for _, path := range []string{"/", "/completed_tasks", "/change_password"} {
		assertRedirect(t, c.get(path), "/login")
	}
	assertRedirect(t, c.postForm("/done/1", nil), "/login")
	assert.Contains(t, c.get("/login").Body.String(), "You must be logged in to access this page.")
}

func TestTasks_IsolatedBetweenUsers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.newClient(t)
	bob := env.newClient(t)
	alice.register("alice", "secret1", "secret1")
	bob.register("bobby", "secret1", "secret1")
	assertRedirect(t, alice.login("alice", "secret1"), "/")
	assertRedirect(t, bob.login("bobby", "secret1"), "/")

	alice.addTask("Alice only", "1")
	aliceTasks := env.tasks(t, env.userID(t, "alice"), domain.StatusNotDone)
	require.Len(t, aliceTasks, 1)
	taskID := aliceTasks[0].ID

	assert.NotContains(t, bob.get("/").Body.String(), "Alice only")

	// 其他用户的修改请求不影响任务
	bob.postForm(fmt.Sprintf("/done/%d", taskID), nil)
	bob.postForm(fmt.Sprintf("/delete/%d", taskID), nil)
	bob.postForm(fmt.Sprintf("/update_priority/%d", taskID), url.Values{"priority": {"9"}})
	w := bob.postJSON(fmt.Sprintf("/tasks/%d/edit", taskID), `{"field":"title","value":"hacked"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Failed to update task."}`, w.Body.String())

	after := env.tasks(t, env.userID(t, "alice"), domain.StatusNotDone)
	require.Len(t, after, 1)
	assert.Equal(t, "Alice only", after[0].Title)
	assert.Equal(t, 1, after[0].Priority)
}

func TestEditTask(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)
	c.register("erin", "secret1", "secret1")
	assertRedirect(t, c.login("erin", "secret1"), "/")
	c.addTask("Original", "1")
	userID := env.userID(t, "erin")
	task := env.tasks(t, userID, domain.StatusNotDone)[0]
	path := fmt.Sprintf("/tasks/%d/edit", task.ID)

	w := c.postJSON(path, `{"field":"title","value":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "title cannot be empty.", resp["message"])
	assert.Equal(t, "Original", env.tasks(t, userID, domain.StatusNotDone)[0].Title)

	w = c.postJSON(path, `{"field":"status","value":"done"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid field."}`, w.Body.String())

	w = c.postJSON(path, `{"field":"title","value":"Renamed"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Task title updated successfully."}`, w.Body.String())

	w = c.postJSON(path, `{"field":"priority","value":"4"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	updated := env.tasks(t, userID, domain.StatusNotDone)[0]
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 4, updated.Priority)

	// 非整数 ID
	assert.Equal(t, http.StatusNotFound, c.postJSON("/tasks/abc/edit", `{}`).Code)
}

func TestUpdatePriorityAndDelete(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)
	c.register("frank", "secret1", "secret1")
	assertRedirect(t, c.login("frank", "secret1"), "/")
	c.addTask("Low", "")
	userID := env.userID(t, "frank")
	task := env.tasks(t, userID, domain.StatusNotDone)[0]
	assert.Equal(t, domain.DefaultPriority, task.Priority)

	assertRedirect(t, c.postForm(fmt.Sprintf("/update_priority/%d", task.ID), url.Values{"priority": {"3"}}), "/")
	assert.Equal(t, 3, env.tasks(t, userID, domain.StatusNotDone)[0].Priority)
	assert.Contains(t, c.get("/").Body.String(), "Task priority updated.")

	// 空优先级不做任何修改
	assertRedirect(t, c.postForm(fmt.Sprintf("/update_priority/%d", task.ID), url.Values{"priority": {""}}), "/")
	assert.Equal(t, 3, env.tasks(t, userID, domain.StatusNotDone)[0].Priority)

	assertRedirect(t, c.postForm(fmt.Sprintf("/delete/%d", task.ID), nil), "/")
	assert.Empty(t, env.tasks(t, userID, domain.StatusNotDone))

	// 空标题
	assertRedirect(t, c.addTask("   ", "1"), "/")
	assert.Contains(t, c.get("/").Body.String(), "Please enter a task title.")
	assert.Equal(t, http.StatusNotFound, c.postForm("/done/xyz", nil).Code)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)
	c.register("grace", "secret1", "secret1")
	assertRedirect(t, c.login("grace", "secret1"), "/")

	form := url.Values{
		"current_password":     {"not-my-password"},
		"new_password":         {"newsecret"},
		"confirm_new_password": {"newsecret"},
	}
	assertRedirect(t, c.postForm("/change_password", form), "/change_password")
	assert.Contains(t, c.get("/change_password").Body.String(), "Incorrect current password.")

	form.Set("current_password", "secret1")
	form.Set("confirm_new_password", "different")
	assertRedirect(t, c.postForm("/change_password", form), "/change_password")
	assert.Contains(t, c.get("/change_password").Body.String(), "The new passwords do not match.")

	// 旧密码仍然有效，新密码无效
	other := env.newClient(t)
	assertRedirect(t, other.login("grace", "newsecret"), "/login")
	assertRedirect(t, other.login("grace", "secret1"), "/")

	form.Set("confirm_new_password", "newsecret")
	assertRedirect(t, c.postForm("/change_password", form), "/")
	assertRedirect(t, env.newClient(t).login("grace", "newsecret"), "/")
}

func TestPingAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)

	w := c.get("/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = c.get("/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `todo_http_requests_total{method="GET",route="/ping",status="200"} 1`)

	w = c.get("/static/script.js")
	assert.Equal(t, http.StatusOK, w.Code)
}
