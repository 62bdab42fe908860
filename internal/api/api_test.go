package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/sweetshop/internal/db"
	"github.com/erazemk/sweetshop/internal/model"
	"github.com/erazemk/sweetshop/internal/session"
	"github.com/erazemk/sweetshop/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if _, err := store.CreateUser(ctx, database, "admin@example.com", "Admin", string(hash), model.RoleAdmin); err != nil {
		t.Fatalf("creating admin: %v", err)
	}

	token := login(t, server.URL, "admin@example.com", "password")
	return server, token
}

func login(t *testing.T, baseURL, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(baseURL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp model.AuthResult
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "wrong"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Valid login carries the user object.
	body, _ = json.Marshal(map[string]string{"email": "Admin@Example.com ", "password": "password"})
	resp, err = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var res model.AuthResult
	json.NewDecoder(resp.Body).Decode(&res)
	if res.User == nil || res.User.Email != "admin@example.com" || res.User.Role != model.RoleAdmin {
		t.Errorf("unexpected user in login response: %+v", res.User)
	}
}

func TestRegisterReturnsDecodableToken(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"name": "Ana", "email": "ana@example.com", "password": "secret1"})
	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var raw map[string]any
	json.NewDecoder(resp.Body).Decode(&raw)
	if _, ok := raw["user"]; ok {
		t.Error("register response should not carry a user object")
	}
	token, _ := raw["token"].(string)
	id, err := session.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id.Email != "ana@example.com" || id.Name != "Ana" || id.Role != model.RoleUser {
		t.Errorf("unexpected identity: %+v", id)
	}

	// Duplicate email.
	resp2, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate email, got %d", resp2.StatusCode)
	}
	var errResp map[string]string
	json.NewDecoder(resp2.Body).Decode(&errResp)
	if errResp["error"] != "User already exists" {
		t.Errorf("unexpected error message: %q", errResp["error"])
	}
}

func TestRegisterValidation(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"name": "Ana", "email": "ana@example.com", "password": "123"})
	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", resp.StatusCode)
	}
	var verr model.ValidationError
	json.NewDecoder(resp.Body).Decode(&verr)
	if !verr.Has("password") {
		t.Errorf("expected password field error, got %+v", verr.Fields)
	}
}

func TestSweetsAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	// Create.
	req, _ := authRequest("POST", server.URL+"/api/sweets", token, model.ItemInput{
		Name: "Dark Bar", Category: model.CategoryChocolate, Price: 2.5, Quantity: 3,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created sweetResponse
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if created.Sweet == nil || created.Sweet.ID == "" {
		t.Fatal("expected created sweet with id")
	}
	id := created.Sweet.ID

	// Update.
	req, _ = authRequest("PUT", server.URL+"/api/sweets/"+id, token, model.ItemInput{
		Name: "Dark Bar 70%", Category: model.CategoryChocolate, Price: 3, Quantity: 3,
	})
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}

	// Restock.
	req, _ = authRequest("POST", server.URL+"/api/sweets/"+id+"/restock", token, model.RestockInput{Quantity: model.DefaultRestockAmount})
	resp, _ = http.DefaultClient.Do(req)
	var restocked sweetResponse
	json.NewDecoder(resp.Body).Decode(&restocked)
	resp.Body.Close()
	if restocked.Sweet == nil || restocked.Sweet.Quantity != 13 {
		t.Fatalf("expected quantity 13 after restock, got %+v", restocked.Sweet)
	}

	// List.
	req, _ = authRequest("GET", server.URL+"/api/sweets", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var list sweetsResponse
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list.Sweets) != 1 || list.Sweets[0].Name != "Dark Bar 70%" {
		t.Fatalf("unexpected list: %+v", list.Sweets)
	}

	// Delete.
	req, _ = authRequest("DELETE", server.URL+"/api/sweets/"+id, token, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}

	// Deleted sweets disappear and can't be restocked.
	req, _ = authRequest("POST", server.URL+"/api/sweets/"+id+"/restock", token, model.RestockInput{Quantity: 1})
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 restocking deleted sweet, got %d", resp.StatusCode)
	}
}

func TestCreateSweetValidation(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/sweets", token, model.ItemInput{
		Name: "Free Candy", Category: model.CategoryCandy, Price: 0, Quantity: -1,
	})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var verr model.ValidationError
	json.NewDecoder(resp.Body).Decode(&verr)
	if !verr.Has("price") || !verr.Has("quantity") {
		t.Errorf("expected price and quantity errors, got %+v", verr.Fields)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/sweets")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ := authRequest("GET", server.URL+"/api/sweets", "garbage", nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", resp.StatusCode)
	}
}

func TestRoleBasedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"name": "Bob", "email": "bob@example.com", "password": "secret1"})
	resp, _ := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	resp.Body.Close()
	userToken := login(t, server.URL, "bob@example.com", "secret1")

	// Users can read.
	req, _ := authRequest("GET", server.URL+"/api/sweets", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 listing as user, got %d", resp.StatusCode)
	}

	// Users can't write.
	req, _ = authRequest("POST", server.URL+"/api/sweets", userToken, model.ItemInput{
		Name: "Lolly", Category: model.CategoryLollipop, Price: 1, Quantity: 1,
	})
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 creating as user, got %d", resp.StatusCode)
	}
}
