package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/yassir1410/ModernToDoList/config"
	"github.com/yassir1410/ModernToDoList/middleware"
	"github.com/yassir1410/ModernToDoList/models"
	"github.com/yassir1410/ModernToDoList/repository"
	"github.com/yassir1410/ModernToDoList/services"
	"github.com/yassir1410/ModernToDoList/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const internalToken = "internal-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	userRepo := repository.NewUserRepository(db)
	users := services.NewUserService(userRepo)
	todos := services.NewTodoService(repository.NewTodoRepository(db), userRepo)

	r := gin.New()
	middleware.SetupMiddleware(r, []string{"*"})
	RegisterRoutes(r, Dependencies{
		Users:             users,
		Todos:             todos,
		Seeder:            services.NewSeeder(users, todos),
		Sessions:          services.NewSessionStore(client),
		Tokens:            utils.NewTokenManager("test-secret", time.Hour),
		InternalAuthToken: internalToken,
	})
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func register(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "pw1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: %d %s", username, w.Code, w.Body.String())
	}
	var resp models.AuthResponse
	decode(t, w, &resp)
	if resp.Token == "" || resp.User == nil || resp.User.Username != username {
		t.Fatalf("unexpected register response: %s", w.Body.String())
	}
	return resp.Token
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "pw",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: got %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{"username": "x", "email": "not-an-email", "password": "pw"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed register: got %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad login: got %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "pw1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: got %d %s", w.Code, w.Body.String())
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Errorf("password hash leaked: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: got %d %s", w.Code, w.Body.String())
	}
	var me models.User
	decode(t, w, &me)
	if me.Username != "alice" {
		t.Errorf("me: got %q", me.Username)
	}

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me without token: got %d, want 401", w.Code)
	}
	var errBody map[string]string
	decode(t, w, &errBody)
	if errBody["error"] != "Not authenticated" {
		t.Errorf("error body: got %v", errBody)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "alice")

	if w := doJSON(t, r, http.MethodPost, "/api/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: got %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodGet, "/api/todos", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: got %d, want 401", w.Code)
	}
}

func TestTodoCRUD(t *testing.T) {
	r := newTestRouter(t)
	alice := register(t, r, "alice")
	bob := register(t, r, "bob")

	w := doJSON(t, r, http.MethodPost, "/api/todos", alice, gin.H{
		"title":    "Buy milk",
		"category": "Home",
		"priority": "high",
		"tags":     []string{"shopping"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create: got %d %s", w.Code, w.Body.String())
	}
	var todo models.Todo
	decode(t, w, &todo)
	if todo.Progress != 0 || todo.RecurrenceType != models.RecurrenceNone || todo.Priority != models.PriorityHigh {
		t.Errorf("created todo: %+v", todo)
	}
	path := "/api/todos/" + itoa(todo.ID)

	if w := doJSON(t, r, http.MethodPost, "/api/todos", alice, gin.H{"description": "no title"}); w.Code != http.StatusBadRequest {
		t.Errorf("create without title: got %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/todos", alice, gin.H{"title": "x", "recurrenceType": "HOURLY"}); w.Code != http.StatusBadRequest {
		t.Errorf("create with bad recurrence: got %d, want 400", w.Code)
	}

	if w := doJSON(t, r, http.MethodGet, path, alice, nil); w.Code != http.StatusOK {
		t.Errorf("get: got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, path, bob, nil); w.Code != http.StatusNotFound {
		t.Errorf("get as non-owner: got %d, want 404", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/todos/abc", alice, nil); w.Code != http.StatusBadRequest {
		t.Errorf("get bad id: got %d, want 400", w.Code)
	}

	if w := doJSON(t, r, http.MethodPut, path, bob, gin.H{"title": "Hacked"}); w.Code != http.StatusUnauthorized {
		t.Errorf("update as non-owner: got %d, want 401", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, path, bob, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("delete as non-owner: got %d, want 401", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, "/api/todos/9999", alice, gin.H{"title": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("update missing: got %d, want 404", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, path, alice, gin.H{"title": "Buy oat milk", "completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("update: got %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &todo)
	if todo.Title != "Buy oat milk" || todo.Progress != 100 {
		t.Errorf("updated todo: %+v", todo)
	}

	var list []models.Todo
	w = doJSON(t, r, http.MethodGet, "/api/todos", alice, nil)
	decode(t, w, &list)
	if len(list) != 1 {
		t.Errorf("alice's list: got %d todos", len(list))
	}
	w = doJSON(t, r, http.MethodGet, "/api/todos", bob, nil)
	decode(t, w, &list)
	if len(list) != 0 {
		t.Errorf("bob's list: got %d todos", len(list))
	}

	if w := doJSON(t, r, http.MethodDelete, path, alice, nil); w.Code != http.StatusOK {
		t.Errorf("delete: got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, path, alice, nil); w.Code != http.StatusNotFound {
		t.Errorf("get deleted: got %d, want 404", w.Code)
	}
}

func TestSubtasksNotesAndAttachment(t *testing.T) {
	r := newTestRouter(t)
	alice := register(t, r, "alice")
	bob := register(t, r, "bob")

	var todo models.Todo
	decode(t, doJSON(t, r, http.MethodPost, "/api/todos", alice, gin.H{"title": "Buy milk"}), &todo)
	base := "/api/todos/" + itoa(todo.ID)

	w := doJSON(t, r, http.MethodPost, base+"/subtasks", alice, gin.H{"title": "2%", "completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("add subtask: got %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &todo)
	if todo.Progress != 100 {
		t.Errorf("progress after first subtask: got %d", todo.Progress)
	}

	decode(t, doJSON(t, r, http.MethodPost, base+"/subtasks", alice, gin.H{"title": "eggs"}), &todo)
	if todo.Progress != 50 || len(todo.Subtasks) != 2 {
		t.Fatalf("progress after second subtask: got %d (%d subtasks)", todo.Progress, len(todo.Subtasks))
	}
	eggs := todo.Subtasks[1].ID

	w = doJSON(t, r, http.MethodPut, base+"/subtasks/"+itoa(eggs)+"?completed=true", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("update subtask: got %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &todo)
	if todo.Progress != 100 {
		t.Errorf("progress after completing eggs: got %d", todo.Progress)
	}

	if w := doJSON(t, r, http.MethodPut, base+"/subtasks/"+itoa(eggs)+"?completed=maybe", alice, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad completed flag: got %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, base+"/subtasks", bob, gin.H{"title": "x"}); w.Code != http.StatusUnauthorized {
		t.Errorf("add subtask as non-owner: got %d, want 401", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/todos/9999/subtasks", alice, gin.H{"title": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("add subtask to missing todo: got %d, want 404", w.Code)
	}

	decode(t, doJSON(t, r, http.MethodDelete, base+"/subtasks/"+itoa(eggs), alice, nil), &todo)
	if todo.Progress != 100 || len(todo.Subtasks) != 1 {
		t.Errorf("after removing eggs: progress %d, %d subtasks", todo.Progress, len(todo.Subtasks))
	}

	w = doJSON(t, r, http.MethodPut, base+"/notes", alice, gin.H{"notes": "organic"})
	if w.Code != http.StatusOK {
		t.Fatalf("notes: got %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &todo)
	if todo.Notes != "organic" {
		t.Errorf("Notes: got %q", todo.Notes)
	}
	if w := doJSON(t, r, http.MethodPut, base+"/notes", bob, gin.H{"notes": "x"}); w.Code != http.StatusUnauthorized {
		t.Errorf("notes as non-owner: got %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, base+"/attachment", alice, gin.H{"attachmentUrl": "https://example.com/receipt.png"})
	if w.Code != http.StatusOK {
		t.Fatalf("attachment: got %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &todo)
	if todo.AttachmentURL != "https://example.com/receipt.png" {
		t.Errorf("AttachmentURL: got %q", todo.AttachmentURL)
	}
}

func TestListingsAndDashboard(t *testing.T) {
	r := newTestRouter(t)
	alice := register(t, r, "alice")
	bob := register(t, r, "bob")

	past := time.Now().Add(-72 * time.Hour)
	for _, body := range []gin.H{
		{"title": "Complete project documentation", "category": "Work", "priority": "HIGH", "tags": []string{"q3"}},
		{"title": "Review pull requests", "category": "Work", "completed": true},
		{"title": "Pay rent", "category": "Home", "dueDate": past, "recurrenceType": "MONTHLY"},
	} {
		if w := doJSON(t, r, http.MethodPost, "/api/todos", alice, body); w.Code != http.StatusOK {
			t.Fatalf("create: got %d %s", w.Code, w.Body.String())
		}
	}
	doJSON(t, r, http.MethodPost, "/api/todos", bob, gin.H{"title": "Bob's documentation", "category": "Work", "tags": []string{"q3"}})

	cases := []struct {
		path string
		want int
	}{
		{"/api/todos/completed", 1},
		{"/api/todos/pending", 2},
		{"/api/todos/category/Work", 2},
		{"/api/todos/priority/high", 1},
		{"/api/todos/overdue", 1},
		{"/api/todos/search?query=DOC", 1},
		{"/api/todos/tag/q3", 1},
		{"/api/todos/recurring", 1},
	}
	for _, tc := range cases {
		w := doJSON(t, r, http.MethodGet, tc.path, alice, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s: got %d %s", tc.path, w.Code, w.Body.String())
			continue
		}
		var list []models.Todo
		decode(t, w, &list)
		if len(list) != tc.want {
			t.Errorf("%s: got %d todos, want %d", tc.path, len(list), tc.want)
		}
	}

	if w := doJSON(t, r, http.MethodGet, "/api/todos/priority/urgent", alice, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad priority: got %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/todos/search", alice, nil); w.Code != http.StatusBadRequest {
		t.Errorf("search without query: got %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/todos/overdue", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("listing without token: got %d, want 401", w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/todos/dashboard", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: got %d %s", w.Code, w.Body.String())
	}
	var dash models.DashboardResponse
	decode(t, w, &dash)
	if dash.Stats.Total != 3 || dash.Stats.Completed != 1 || dash.Stats.Pending != 2 {
		t.Errorf("dashboard stats: %+v", dash.Stats)
	}
	if dash.Stats.ByCategory["Work"] != 2 || dash.Stats.ByCategory["Home"] != 1 {
		t.Errorf("byCategory: %v", dash.Stats.ByCategory)
	}
	if len(dash.RecentTodos) != 3 {
		t.Errorf("recentTodos: got %d", len(dash.RecentTodos))
	}
}

func TestUpdateProfile(t *testing.T) {
	r := newTestRouter(t)
	alice := register(t, r, "alice")
	register(t, r, "bob")

	w := doJSON(t, r, http.MethodPut, "/api/users/profile", alice, gin.H{"fullName": "Alice A."})
	if w.Code != http.StatusOK {
		t.Fatalf("profile: got %d %s", w.Code, w.Body.String())
	}
	var user models.User
	decode(t, w, &user)
	if user.FullName != "Alice A." {
		t.Errorf("FullName: got %q", user.FullName)
	}

	if w := doJSON(t, r, http.MethodPut, "/api/users/profile", alice, gin.H{"email": "bob@example.com"}); w.Code != http.StatusBadRequest {
		t.Errorf("taken email: got %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, "/api/users/profile", alice, gin.H{"currentPassword": "bad", "newPassword": "pw2"}); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong current password: got %d, want 401", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, "/api/users/profile", alice, gin.H{"currentPassword": "pw1", "newPassword": "pw2"}); w.Code != http.StatusOK {
		t.Errorf("password change: got %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "pw2"}); w.Code != http.StatusOK {
		t.Errorf("login with new password: got %d", w.Code)
	}
}

func TestInternalReset(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")

	if w := doJSON(t, r, http.MethodPost, "/internal/reset", "", nil); w.Code != http.StatusForbidden {
		t.Errorf("reset without token: got %d, want 403", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/internal/reset?seed=true", nil)
	req.Header.Set("X-Internal-Auth", internalToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: got %d %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "pw1"}); w.Code != http.StatusBadRequest {
		t.Errorf("alice should be gone after reset: got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "john.doe", "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("seeded login: got %d %s", w.Code, w.Body.String())
	}
	var resp models.AuthResponse
	decode(t, w, &resp)

	var list []models.Todo
	decode(t, doJSON(t, r, http.MethodGet, "/api/todos/search?query=doc", resp.Token, nil), &list)
	if len(list) != 1 || list[0].Title != "Complete project documentation" {
		t.Errorf("seeded search: got %+v", list)
	}
}

func TestPing(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/ping", "", nil)
	if w.Code != http.StatusOK || w.Header().Get("X-Request-ID") == "" {
		t.Errorf("ping: got %d, request id %q", w.Code, w.Header().Get("X-Request-ID"))
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
