package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/api/middleware"
	"github.com/phrazzld/taskmanager-api/internal/events"
	"github.com/phrazzld/taskmanager-api/internal/mocks"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "MyPass777!xyz"

type testAPI struct {
	handler http.Handler
	users   *mocks.MockUserStore
	tasks   *mocks.MockTaskStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore()
	users.OnDelete = tasks.DeleteByOwner

	userService := service.NewUserService(users, &mocks.MockTransactor{}, &mocks.MockJWTService{},
		auth.NewBcryptVerifier(), events.NewInMemoryEventEmitter(nil), nil)
	taskService := service.NewTaskService(tasks, nil)

	userHandler := NewUserHandler(userService, nil)
	taskHandler := NewTaskHandler(taskService, nil)
	authMiddleware := middleware.NewAuthMiddleware(userService, nil)

	r := chi.NewRouter()
	r.Post("/users", userHandler.SignUp)
	r.Post("/users/login", userHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/users/logout", userHandler.Logout)
		r.Post("/users/logoutAll", userHandler.LogoutAll)
		r.Get("/users/me", userHandler.GetMe)
		r.Patch("/users/me", userHandler.UpdateMe)
		r.Delete("/users/me", userHandler.DeleteMe)

		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Patch("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
	})

	return &testAPI{handler: r, users: users, tasks: tasks}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) signUp(t *testing.T, email string) (string, UserResponse) {
	t.Helper()

	rr := a.do(t, http.MethodPost, "/users", "",
		`{"name":"Jess","email":"`+email+`","password":"`+testPassword+`","age":27}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Token, resp.User
}

func (a *testAPI) createTask(t *testing.T, token, body string) TaskResponse {
	t.Helper()

	rr := a.do(t, http.MethodPost, "/tasks", token, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var task TaskResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &task))
	return task
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestTaskHandler_CreateTask(t *testing.T) {
	a := newTestAPI(t)
	token, user := a.signUp(t, "jess@example.com")

	t.Run("defaults completed to false", func(t *testing.T) {
		task := a.createTask(t, token, `{"description":"First task"}`)
		assert.Equal(t, "First task", task.Description)
		assert.False(t, task.Completed)
		assert.Equal(t, user.ID, task.Owner)
		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.False(t, task.CreatedAt.IsZero())
	})

	t.Run("document field names", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/tasks", token, `{"description":"Named","completed":true}`)
		require.Equal(t, http.StatusCreated, rr.Code)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
		for _, key := range []string{"_id", "description", "completed", "owner", "createdAt", "updatedAt"} {
			assert.Contains(t, raw, key)
		}
	})

	before := a.tasks.Count()
	for _, tc := range []struct {
		name string
		body string
	}{
		{"empty description", `{"description":""}`},
		{"blank description", `{"description":"   "}`},
		{"missing description", `{"completed":true}`},
		{"non-boolean completed", `{"description":"Task","completed":"yes"}`},
		{"unknown field", `{"description":"Task","owner":"someone"}`},
		{"malformed", `{"description":`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rr := a.do(t, http.MethodPost, "/tasks", token, tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
	assert.Equal(t, before, a.tasks.Count(), "rejected requests must not create tasks")

	t.Run("unauthenticated", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/tasks", "", `{"description":"Task"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Please authenticate.", errorBody(t, rr))
	})
}

func TestTaskHandler_ListTasks(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp(t, "jess@example.com")
	otherToken, _ := a.signUp(t, "other@example.com")

	a.createTask(t, token, `{"description":"First task"}`)
	a.createTask(t, token, `{"description":"Second task","completed":true}`)
	a.createTask(t, otherToken, `{"description":"Third task","completed":true}`)

	list := func(t *testing.T, query string) []TaskResponse {
		t.Helper()
		rr := a.do(t, http.MethodGet, "/tasks"+query, token, "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var tasks []TaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tasks))
		return tasks
	}

	t.Run("only own tasks", func(t *testing.T) {
		assert.Len(t, list(t, ""), 2)
	})

	t.Run("completed filter", func(t *testing.T) {
		tasks := list(t, "?completed=true")
		require.Len(t, tasks, 1)
		assert.Equal(t, "Second task", tasks[0].Description)
	})

	t.Run("sorted descending", func(t *testing.T) {
		tasks := list(t, "?sortBy=createdAt:desc")
		require.Len(t, tasks, 2)
		assert.False(t, tasks[0].CreatedAt.Before(tasks[1].CreatedAt))
	})

	t.Run("second item", func(t *testing.T) {
		all := list(t, "")
		tasks := list(t, "?limit=1&skip=1")
		require.Len(t, tasks, 1)
		assert.Equal(t, all[1].ID, tasks[0].ID)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		emptyToken, _ := a.signUp(t, "empty@example.com")
		rr := a.do(t, http.MethodGet, "/tasks", emptyToken, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	for _, query := range []string{"?completed=maybe", "?sortBy=owner", "?sortBy=createdAt:sideways", "?limit=-1", "?skip=x"} {
		t.Run("invalid "+query, func(t *testing.T) {
			rr := a.do(t, http.MethodGet, "/tasks"+query, token, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestTaskHandler_Ownership(t *testing.T) {
	a := newTestAPI(t)
	ownerToken, _ := a.signUp(t, "owner@example.com")
	strangerToken, _ := a.signUp(t, "stranger@example.com")

	task := a.createTask(t, ownerToken, `{"description":"Private"}`)
	path := "/tasks/" + task.ID.String()

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, path, strangerToken, "").Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodPatch, path, strangerToken, `{"completed":true}`).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, path, strangerToken, "").Code)

	rr := a.do(t, http.MethodGet, path, ownerToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got TaskResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.False(t, got.Completed)
	assert.Equal(t, "Private", got.Description)
}

func TestTaskHandler_MalformedID(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp(t, "jess@example.com")

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		rr := a.do(t, method, "/tasks/not-a-uuid", token, `{"completed":true}`)
		assert.Equal(t, http.StatusNotFound, rr.Code, method)
	}
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp(t, "jess@example.com")
	task := a.createTask(t, token, `{"description":"Original"}`)
	path := "/tasks/" + task.ID.String()

	t.Run("allowed fields", func(t *testing.T) {
		rr := a.do(t, http.MethodPatch, path, token, `{"description":"Changed","completed":true}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var got TaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Changed", got.Description)
		assert.True(t, got.Completed)
		assert.Equal(t, task.CreatedAt, got.CreatedAt)
	})

	t.Run("disallowed field", func(t *testing.T) {
		rr := a.do(t, http.MethodPatch, path, token, `{"owner":"`+uuid.NewString()+`"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid updates!", errorBody(t, rr))
	})

	t.Run("invalid result", func(t *testing.T) {
		rr := a.do(t, http.MethodPatch, path, token, `{"description":""}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty patch", func(t *testing.T) {
		rr := a.do(t, http.MethodPatch, path, token, `{}`)
		require.Equal(t, http.StatusOK, rr.Code)
		var got TaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Changed", got.Description)
	})
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp(t, "jess@example.com")
	task := a.createTask(t, token, `{"description":"Delete me"}`)
	path := "/tasks/" + task.ID.String()

	rr := a.do(t, http.MethodDelete, path, token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got TaskResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, task.ID, got.ID)

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, path, token, "").Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, path, token, "").Code)
}

func TestUserHandler_SignUp(t *testing.T) {
	a := newTestAPI(t)

	t.Run("response hides password", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/users", "",
			`{"name":"Jess","email":"Jess@Example.com","password":"`+testPassword+`"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.NotContains(t, rr.Body.String(), testPassword)
		assert.NotContains(t, rr.Body.String(), "assword")

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "jess@example.com", resp.User.Email)
		assert.Zero(t, resp.User.Age)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/users", "",
			`{"name":"Other","email":"jess@example.com","password":"`+testPassword+`"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	for _, tc := range []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@example.com","password":"` + testPassword + `"}`},
		{"invalid email", `{"name":"A","email":"nope","password":"` + testPassword + `"}`},
		{"short password", `{"name":"A","email":"a@example.com","password":"short"}`},
		{"password contains password", `{"name":"A","email":"a@example.com","password":"mypassword123"}`},
		{"negative age", `{"name":"A","email":"a@example.com","password":"` + testPassword + `","age":-3}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rr := a.do(t, http.MethodPost, "/users", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestUserHandler_LoginLogout(t *testing.T) {
	a := newTestAPI(t)
	first, user := a.signUp(t, "jess@example.com")

	rr := a.do(t, http.MethodPost, "/users/login", "",
		`{"email":"jess@example.com","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var login AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.Equal(t, user.ID, login.User.ID)
	second := login.Token

	rr = a.do(t, http.MethodPost, "/users/login", "", `{"email":"jess@example.com","password":"WrongPass999!"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Unable to login", errorBody(t, rr))

	rr = a.do(t, http.MethodPost, "/users/login", "", `{"email":"jess@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Unable to login", errorBody(t, rr))

	// Logging out one session leaves the other valid.
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/users/logout", first, "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/users/me", first, "").Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/users/me", second, "").Code)

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/users/logoutAll", second, "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/users/me", second, "").Code)
	assert.Zero(t, a.users.TokenCount(user.ID))
}

func TestUserHandler_UpdateMe(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp(t, "jess@example.com")

	rr := a.do(t, http.MethodPatch, "/users/me", token, `{"name":"Jessica","age":30}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got UserResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Jessica", got.Name)
	assert.Equal(t, 30, got.Age)

	rr = a.do(t, http.MethodPatch, "/users/me", token, `{"_id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid updates!", errorBody(t, rr))

	rr = a.do(t, http.MethodPatch, "/users/me", token, `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUserHandler_DeleteMe(t *testing.T) {
	a := newTestAPI(t)
	token, user := a.signUp(t, "jess@example.com")
	otherToken, _ := a.signUp(t, "other@example.com")
	a.createTask(t, token, `{"description":"Mine"}`)
	a.createTask(t, otherToken, `{"description":"Theirs"}`)

	rr := a.do(t, http.MethodDelete, "/users/me", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got UserResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, user.ID, got.ID)

	assert.Equal(t, 1, a.tasks.Count(), "tasks of the deleted user are removed")
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/tasks", token, "").Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/tasks", otherToken, "").Code)
}
