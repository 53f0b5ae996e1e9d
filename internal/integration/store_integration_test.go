package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskapi/internal/api"
	"taskapi/internal/db"
	"taskapi/internal/docstore"
	"taskapi/internal/docstore/mongostore"
	"taskapi/internal/docstore/pgstore"
	"taskapi/internal/repository"
	"taskapi/internal/service"
)

func openPostgres(t *testing.T) docstore.Database {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := db.Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := db.Migrate(context.Background(), pool, nil); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}
	return pgstore.New(pool)
}

func openMongo(t *testing.T) docstore.Database {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	mdb, err := mongostore.Connect(context.Background(), uri, "taskdb_integration")
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	if err := mdb.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return mdb
}

func call(t *testing.T, d *api.Dispatcher, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	headers := map[string]string{"Content-Type": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	resp := d.Handle(context.Background(), api.Event{Method: method, Path: path, Headers: headers, Body: body})

	var out map[string]any
	if resp.Body != "" && resp.Body[0] == '{' {
		if err := json.Unmarshal([]byte(resp.Body), &out); err != nil {
			t.Fatalf("decode %s: %v", resp.Body, err)
		}
	}
	return resp.StatusCode, out
}

// runScenario registers a fresh user, then creates, updates and deletes a
// task against a live store.
func runScenario(t *testing.T, store docstore.Database) {
	defer store.Close(context.Background())

	tokens, err := service.NewTokenService("integration-secret")
	if err != nil {
		t.Fatal(err)
	}
	auth, err := service.NewAuthService(repository.NewUserRepository(store), service.NewBcryptHasher(bcrypt.MinCost), tokens)
	if err != nil {
		t.Fatal(err)
	}
	d := api.NewDispatcher(auth, tokens, repository.NewTaskRepository(store))

	email := uuid.NewString() + "@integration.test"
	creds := `{"email":"` + email + `","password":"pw"}`

	if status, _ := call(t, d, http.MethodPost, "/register", "", creds); status != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d", status)
	}
	if status, body := call(t, d, http.MethodPost, "/register", "", creds); status != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400 got %d %v", status, body)
	}

	status, body := call(t, d, http.MethodPost, "/login", "", creds)
	if status != http.StatusOK {
		t.Fatalf("login: expected 200 got %d", status)
	}
	token, _ := body["token"].(string)

	status, body = call(t, d, http.MethodPost, "/tasks", token, `{"title":"t","description":"d","due_date":"2026-03-01"}`)
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d %v", status, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("create: no id in %v", body)
	}

	if status, _ := call(t, d, http.MethodPut, "/tasks", token, `{"id":"`+id+`","title":"t2"}`); status != http.StatusOK {
		t.Fatalf("update: expected 200 got %d", status)
	}

	tasks, err := repository.NewTaskRepository(store).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var found bool
	for _, task := range tasks {
		if task.ID != id {
			continue
		}
		found = true
		if task.Title != "t2" || task.Description != "d" || task.DueDate != "2026-03-01" {
			t.Fatalf("unexpected task after update: %+v", task)
		}
	}
	if !found {
		t.Fatalf("task %s not listed", id)
	}

	if status, _ := call(t, d, http.MethodDelete, "/tasks", token, `{"id":"`+id+`"}`); status != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", status)
	}
	if status, _ := call(t, d, http.MethodDelete, "/tasks", token, `{"id":"`+id+`"}`); status != http.StatusNotFound {
		t.Fatalf("second delete: expected 404 got %d", status)
	}
	if status, _ := call(t, d, http.MethodPut, "/tasks", token, `{"id":"not-an-id","title":"x"}`); status != http.StatusNotFound {
		t.Fatalf("malformed id: expected 404 got %d", status)
	}
}

func TestPostgresStore_Scenario(t *testing.T) {
	runScenario(t, openPostgres(t))
}

func TestMongoStore_Scenario(t *testing.T) {
	runScenario(t, openMongo(t))
}
