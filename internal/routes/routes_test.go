package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/models"
	"github.com/nikhil/teamtasks/internal/policy"
	"github.com/nikhil/teamtasks/internal/realtime"
	authService "github.com/nikhil/teamtasks/internal/service/auth"
	taskService "github.com/nikhil/teamtasks/internal/service/task"
	teamService "github.com/nikhil/teamtasks/internal/service/team"
	profileService "github.com/nikhil/teamtasks/internal/service/users"
	"github.com/nikhil/teamtasks/internal/testutil"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	deps    *Deps
}

func newTestServer(t *testing.T, hub *realtime.Hub) *testServer {
	t.Helper()
	store := testutil.NewStore(t)
	tokens := testutil.NewTokenManager(t)
	log := logger.NewNop()

	var publisher realtime.Publisher = realtime.NopPublisher{}
	if hub != nil {
		publisher = hub
	}
	d := &Deps{
		Store:         store,
		Tokens:        tokens,
		Policy:        policy.Default(),
		Log:           log,
		Auth:          authService.NewAuthService(store, tokens, log, bcrypt.MinCost, []string{"boss@example.com"}),
		Profiles:      profileService.NewProfileService(store, log),
		Teams:         teamService.NewTeamService(store, publisher, log),
		Tasks:         taskService.NewTaskService(store, publisher, log),
		Hub:           hub,
		AllowedOrigin: "*",
	}
	return &testServer{t: t, handler: RegisterAllRoutes(d), deps: d}
}

type result struct {
	Code int
	Body map[string]interface{}
}

func (s *testServer) do(method, path, token string, body interface{}) result {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	res := result{Code: rec.Code, Body: map[string]interface{}{}}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &res.Body); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return res
}

func (s *testServer) expect(res result, code int, message string) {
	s.t.Helper()
	if res.Code != code {
		s.t.Fatalf("status = %d, want %d (body %v)", res.Code, code, res.Body)
	}
	if message != "" && res.Body["message"] != message {
		s.t.Fatalf("message = %v, want %q", res.Body["message"], message)
	}
}

// signup registers and logs in a user, returning its id and token.
func (s *testServer) signup(name, email string) (string, string) {
	s.t.Helper()
	res := s.do(http.MethodPost, "/users", "", map[string]string{"name": name, "email": email, "password": "secret123"})
	s.expect(res, http.StatusCreated, "")
	if _, leaked := res.Body["password"]; leaked {
		s.t.Fatal("password returned from signup")
	}
	res = s.do(http.MethodPost, "/sessions", "", map[string]string{"email": email, "password": "secret123"})
	s.expect(res, http.StatusOK, "")
	return res.Body["user"].(map[string]interface{})["id"].(string), res.Body["token"].(string)
}

func TestEndToEndTaskLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	adminID, adminToken := s.signup("Boss", "boss@example.com")
	memberID, memberToken := s.signup("Member", "member@example.com")

	// Members cannot create teams.
	s.expect(s.do(http.MethodPost, "/teams", memberToken, map[string]string{"name": "Nope"}), http.StatusForbidden, "")

	res := s.do(http.MethodPost, "/teams", adminToken, map[string]string{"name": "Team T", "description": "tenant"})
	s.expect(res, http.StatusCreated, "")
	teamID := res.Body["id"].(string)

	res = s.do(http.MethodPost, "/teams/"+teamID+"/members", adminToken, map[string]string{"user_id": memberID})
	s.expect(res, http.StatusCreated, "User added to team successfully")

	res = s.do(http.MethodPost, "/tasks/"+teamID, adminToken, map[string]string{"title": "Task X", "priority": "high"})
	s.expect(res, http.StatusCreated, "Task created with success")
	task := res.Body["taskCreated"].(map[string]interface{})
	taskID := task["id"].(string)
	if task["assigned_to_id"] != adminID || task["status"] != "pending" {
		t.Fatalf("created task = %v", task)
	}

	s.expect(s.do(http.MethodPatch, "/tasks/"+taskID+"/assign", adminToken, map[string]string{"user_id": memberID}),
		http.StatusOK, "Task assigned to a new user")

	s.expect(s.do(http.MethodPatch, "/tasks/"+taskID+"/status", memberToken, map[string]string{"status": "in_progress"}),
		http.StatusOK, "Status updated successfully")
	s.expect(s.do(http.MethodPatch, "/tasks/"+taskID+"/status", memberToken, map[string]string{"status": "completed"}),
		http.StatusOK, "Status updated successfully")
	s.expect(s.do(http.MethodPatch, "/tasks/"+taskID+"/status", memberToken, map[string]string{"status": "pending"}),
		http.StatusBadRequest, "This Task has already been completed")

	res = s.do(http.MethodGet, "/tasks/"+taskID+"/history", memberToken, nil)
	s.expect(res, http.StatusOK, "")
	history := res.Body["history"].([]interface{})
	if len(history) != 2 {
		t.Fatalf("history = %v", history)
	}
	first := history[0].(map[string]interface{})
	if first["old_status"] != "pending" || first["new_status"] != "in_progress" || first["changed_by"] != memberID {
		t.Errorf("first history row = %v", first)
	}

	res = s.do(http.MethodGet, "/tasks", memberToken, nil)
	s.expect(res, http.StatusOK, "")
	mine := res.Body["tasks"].([]interface{})
	if len(mine) != 1 {
		t.Fatalf("my tasks = %v", mine)
	}
	if team := mine[0].(map[string]interface{})["team"].(map[string]interface{}); team["name"] != "Team T" {
		t.Errorf("task team = %v", team)
	}

	s.expect(s.do(http.MethodPut, "/tasks/"+taskID, memberToken, map[string]string{"title": "Edited"}),
		http.StatusBadRequest, "Completed tasks cannot be edited")
}

func TestNonMemberCannotListTeamTasks(t *testing.T) {
	s := newTestServer(t, nil)
	_, adminToken := s.signup("Boss", "boss@example.com")
	_, outsiderToken := s.signup("Outsider", "out@example.com")

	res := s.do(http.MethodPost, "/teams", adminToken, map[string]string{"name": "Team T"})
	s.expect(res, http.StatusCreated, "")
	teamID := res.Body["id"].(string)
	s.expect(s.do(http.MethodPost, "/tasks/"+teamID, adminToken, map[string]string{"title": "Secret", "priority": "low"}), http.StatusCreated, "")

	res = s.do(http.MethodGet, "/tasks/team/"+teamID, outsiderToken, nil)
	s.expect(res, http.StatusNotFound, "Team not found or user not in team")
	if _, ok := res.Body["tasks"]; ok {
		t.Error("task list leaked to non-member")
	}

	res = s.do(http.MethodGet, "/tasks/team/"+teamID, adminToken, nil)
	s.expect(res, http.StatusOK, "")
	if tasks := res.Body["tasks"].([]interface{}); len(tasks) != 1 {
		t.Errorf("team tasks = %v", tasks)
	}
}

func TestRemoveMemberOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	adminID, adminToken := s.signup("Boss", "boss@example.com")
	memberID, memberToken := s.signup("Member", "member@example.com")

	res := s.do(http.MethodPost, "/teams", adminToken, map[string]string{"name": "Team T"})
	teamID := res.Body["id"].(string)
	s.expect(s.do(http.MethodPost, "/teams/"+teamID+"/members", adminToken, map[string]string{"user_id": memberID}), http.StatusCreated, "")
	res = s.do(http.MethodPost, "/tasks/"+teamID, adminToken, map[string]string{"title": "Handover", "priority": "medium", "assigned_to_id": memberID})
	s.expect(res, http.StatusCreated, "")

	s.expect(s.do(http.MethodPost, "/teams/"+teamID+"/members", adminToken, map[string]string{"user_id": memberID}),
		http.StatusBadRequest, "User already in this team")

	res = s.do(http.MethodDelete, "/teams/"+teamID, adminToken, map[string]string{"user_id": memberID})
	s.expect(res, http.StatusOK, "User deleted")

	res = s.do(http.MethodGet, "/tasks", adminToken, nil)
	tasks := res.Body["tasks"].([]interface{})
	if len(tasks) != 1 || tasks[0].(map[string]interface{})["assigned_to_id"] != adminID {
		t.Errorf("admin tasks after removal = %v", tasks)
	}
	s.expect(s.do(http.MethodGet, "/tasks/team/"+teamID, memberToken, nil), http.StatusNotFound, "")
	s.expect(s.do(http.MethodDelete, "/teams/"+teamID, adminToken, map[string]string{"user_id": memberID}),
		http.StatusNotFound, "User not found in this team")
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t, nil)
	s.signup("Alice", "alice@example.com")

	s.expect(s.do(http.MethodPost, "/users", "", map[string]string{"name": "Other Name", "email": "alice@example.com", "password": "different1"}),
		http.StatusBadRequest, "User already exists")

	wrongPassword := s.do(http.MethodPost, "/sessions", "", map[string]string{"email": "alice@example.com", "password": "wrong-pass"})
	unknownEmail := s.do(http.MethodPost, "/sessions", "", map[string]string{"email": "nobody@example.com", "password": "secret123"})
	if wrongPassword.Code != unknownEmail.Code || wrongPassword.Body["message"] != unknownEmail.Body["message"] {
		t.Errorf("login failures differ: %v vs %v", wrongPassword, unknownEmail)
	}
	s.expect(wrongPassword, http.StatusBadRequest, "Email or password invalid")

	res := s.do(http.MethodPost, "/users", "", map[string]string{"name": "Al", "email": "not-an-email", "password": "123"})
	s.expect(res, http.StatusBadRequest, "Validation Error")
	if issues := res.Body["issues"].([]interface{}); len(issues) != 3 {
		t.Errorf("issues = %v", issues)
	}

	s.expect(s.do(http.MethodGet, "/tasks", "", nil), http.StatusUnauthorized, "Missing auth token")
	s.expect(s.do(http.MethodGet, "/tasks", "garbage", nil), http.StatusUnauthorized, "Invalid token")
}

func TestMalformedInput(t *testing.T) {
	s := newTestServer(t, nil)
	_, adminToken := s.signup("Boss", "boss@example.com")

	s.expect(s.do(http.MethodGet, "/tasks/team/not-a-uuid", adminToken, nil), http.StatusBadRequest, "Validation Error")
	s.expect(s.do(http.MethodPatch, "/tasks/"+uuid.NewString()+"/status", adminToken, map[string]string{"status": "done"}),
		http.StatusBadRequest, "Validation Error")
	s.expect(s.do(http.MethodPatch, "/tasks/"+uuid.NewString()+"/status", adminToken, map[string]string{"status": "in_progress"}),
		http.StatusNotFound, "Task not found or user not in team")
	s.expect(s.do(http.MethodPost, "/tasks/"+uuid.NewString(), adminToken, map[string]string{"title": "Orphan", "priority": "low"}),
		http.StatusNotFound, "Team not found")
}

func TestProfileAndHealth(t *testing.T) {
	s := newTestServer(t, nil)
	id, token := s.signup("Boss", "boss@example.com")

	res := s.do(http.MethodGet, "/users/me", token, nil)
	s.expect(res, http.StatusOK, "")
	if res.Body["id"] != id || res.Body["role"] != string(models.RoleAdmin) {
		t.Errorf("profile = %v", res.Body)
	}

	res = s.do(http.MethodPut, "/users/me", token, map[string]string{"name": "The Boss"})
	s.expect(res, http.StatusOK, "User details updated successfully")
	if user := res.Body["user"].(map[string]interface{}); user["name"] != "The Boss" {
		t.Errorf("updated profile = %v", user)
	}

	res = s.do(http.MethodGet, "/health", "", nil)
	s.expect(res, http.StatusOK, "")
	if res.Body["status"] != "ok" {
		t.Errorf("health = %v", res.Body)
	}
}

func TestRealtimeFeed(t *testing.T) {
	hub := realtime.NewHub(logger.NewNop())
	defer hub.Close()
	s := newTestServer(t, hub)
	_, adminToken := s.signup("Boss", "boss@example.com")
	_, outsiderToken := s.signup("Outsider", "out@example.com")
	res := s.do(http.MethodPost, "/teams", adminToken, map[string]string{"name": "Team T"})
	teamID := res.Body["id"].(string)

	srv := httptest.NewServer(s.handler)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?team_id=" + teamID

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL+"&token="+outsiderToken, nil); err == nil {
		t.Fatal("non-member connected to team feed")
	} else if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("non-member dial response = %v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"&token="+adminToken, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connected(teamID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.expect(s.do(http.MethodPost, "/tasks/"+teamID, adminToken, map[string]string{"title": "Live", "priority": "low"}), http.StatusCreated, "")

	var ev realtime.Event
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != realtime.EventTaskCreated || ev.TeamID != teamID {
		t.Errorf("event = %+v", ev)
	}
}
