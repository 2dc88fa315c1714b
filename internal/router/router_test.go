package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vet-clinic-api/internal/adapters/auth/jwtauth"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("SEED_DEMO", "1")
	t.Setenv("DB_DSN", "") // siempre in-memory en tests

	h := router.NewRouter(router.Options{
		Auth:   jwtauth.New(jwtauth.Options{Secret: []byte("test-secret")}),
		Logger: logger.New(logger.Options{Level: logger.Error}),
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_RegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	// 1) Registro
	st, body := doReq(t, ts.URL, "POST", "/api/v1/auth/register", "", map[string]any{
		"username":   "alice",
		"password":   "Password",
		"email":      "alice@mail.com",
		"first_name": "Alice",
		"last_name":  "Smith",
		"phone":      "12345678",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register, got %d body=%s", st, string(body))
	}

	// 2) Username repetido => 409
	st, _ = doReq(t, ts.URL, "POST", "/api/v1/auth/register", "", map[string]any{
		"username":   "alice",
		"password":   "Password",
		"email":      "other@mail.com",
		"first_name": "Alice",
		"last_name":  "Smith",
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 duplicate username, got %d", st)
	}

	// 3) Password incorrecta => 401
	st, _ = doReq(t, ts.URL, "POST", "/api/v1/auth/login", "", map[string]any{
		"username": "alice",
		"password": "wrong",
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 bad password, got %d", st)
	}

	// 4) Login ok => token + rol
	token := login(t, ts.URL, "alice", "Password")

	// 5) El token sirve para ver el propio perfil
	st, body = doReq(t, ts.URL, "GET", "/api/v1/users", token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get logged user, got %d body=%s", st, string(body))
	}
	var me struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	_ = json.Unmarshal(body, &me)
	if me.Username != "alice" || me.Role != "CUSTOMER" {
		t.Fatalf("unexpected logged user: %s", string(body))
	}

	// 6) Sin token => 401 con body vacío
	st, body = doReq(t, ts.URL, "GET", "/api/v1/users", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", st)
	}
	if len(bytes.TrimSpace(body)) != 0 {
		t.Fatalf("expected empty body without token, got %s", string(body))
	}
}

func TestHTTP_PetRegistration(t *testing.T) {
	ts := newTestServer(t)

	registerCustomer(t, ts.URL, "alice", "alice@mail.com")
	token := login(t, ts.URL, "alice", "Password")

	// 1) Alta de mascota
	petID := createPet(t, ts.URL, token, "Firulais")

	// 2) Mismo nombre para el mismo dueño => 409
	st, _ := doReq(t, ts.URL, "POST", "/api/v1/pets", token, map[string]any{
		"name": "Firulais", "species": "cat", "breed": "siamese",
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 duplicate pet name, got %d", st)
	}

	// 3) Otro dueño puede repetir el nombre
	registerCustomer(t, ts.URL, "bob", "bob@mail.com")
	bobToken := login(t, ts.URL, "bob", "Password")
	_ = createPet(t, ts.URL, bobToken, "Firulais")

	// 4) Listado del dueño
	st, body := doReq(t, ts.URL, "GET", "/api/v1/users/pets", token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list pets, got %d body=%s", st, string(body))
	}
	var pets []struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &pets)
	if len(pets) != 1 || pets[0].ID != petID {
		t.Fatalf("expected only alice's pet, got %s", string(body))
	}

	// 5) Un extraño no puede borrarla, el dueño sí
	st, _ = doReq(t, ts.URL, "DELETE", "/api/v1/users/pets?petId="+petID, bobToken, nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 delete by stranger, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "DELETE", "/api/v1/users/pets?petId="+petID, token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete by owner, got %d", st)
	}
}

func TestHTTP_VisitBooking(t *testing.T) {
	ts := newTestServer(t)

	registerCustomer(t, ts.URL, "alice", "alice@mail.com")
	token := login(t, ts.URL, "alice", "Password")
	petID := createPet(t, ts.URL, token, "Firulais")

	// Vet seedeado, visible para el customer
	st, body := doReq(t, ts.URL, "GET", "/api/v1/users/vets", token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list vets, got %d body=%s", st, string(body))
	}
	var vets []struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &vets)
	if len(vets) == 0 {
		t.Fatalf("expected seeded vets, got %s", string(body))
	}
	vetID := vets[0].ID

	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	// 1) Turno ok, arranca sin aprobar
	st, body = doReq(t, ts.URL, "POST", "/api/v1/visits", token, map[string]any{
		"pet_id": petID, "vet_id": vetID,
		"date": date, "time": "10:00",
		"description": "Annual checkup visit",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create visit, got %d body=%s", st, string(body))
	}
	var visit struct {
		Approved bool `json:"approved"`
	}
	_ = json.Unmarshal(body, &visit)
	if visit.Approved {
		t.Fatalf("expected visit to start unapproved")
	}

	// 2) Mismo slot => 400
	st, _ = doReq(t, ts.URL, "POST", "/api/v1/visits", token, map[string]any{
		"pet_id": petID, "vet_id": vetID,
		"date": date, "time": "10:00",
		"description": "Annual checkup visit",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 taken slot, got %d", st)
	}

	// 3) Fecha pasada => 400
	st, _ = doReq(t, ts.URL, "POST", "/api/v1/visits", token, map[string]any{
		"pet_id": petID, "vet_id": vetID,
		"date": "2020-01-01", "time": "11:00",
		"description": "Annual checkup visit",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 past date, got %d", st)
	}

	// 4) Mascota inexistente => 404
	st, _ = doReq(t, ts.URL, "POST", "/api/v1/visits", token, map[string]any{
		"pet_id": "missing", "vet_id": vetID,
		"date": date, "time": "12:00",
		"description": "Annual checkup visit",
	})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 unknown pet, got %d", st)
	}

	// 5) Un usuario sin rol VET no sirve como vet => 404
	st, body = doReq(t, ts.URL, "GET", "/api/v1/users", token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get logged user, got %d", st)
	}
	var me struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &me)
	st, _ = doReq(t, ts.URL, "POST", "/api/v1/visits", token, map[string]any{
		"pet_id": petID, "vet_id": me.ID,
		"date": date, "time": "13:00",
		"description": "Annual checkup visit",
	})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 non-vet vet_id, got %d", st)
	}

	// 6) Listado de turnos del dueño
	st, body = doReq(t, ts.URL, "GET", "/api/v1/users/visits", token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list visits, got %d body=%s", st, string(body))
	}
	var list []json.RawMessage
	_ = json.Unmarshal(body, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 visit, got %d body=%s", len(list), string(body))
	}
}

func TestHTTP_MedicationInventory(t *testing.T) {
	ts := newTestServer(t)

	vetToken := login(t, ts.URL, "Vet1", "Password")
	adminToken := login(t, ts.URL, "Admin", "Password")

	registerCustomer(t, ts.URL, "alice", "alice@mail.com")
	customerToken := login(t, ts.URL, "alice", "Password")

	// 1) El customer no ve el inventario
	st, _ := doReq(t, ts.URL, "GET", "/api/v1/meds", customerToken, nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 meds as customer, got %d", st)
	}

	// 2) Aspirin viene seedeado con 23 unidades
	st, body := doReq(t, ts.URL, "GET", "/api/v1/meds", vetToken, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list meds, got %d body=%s", st, string(body))
	}
	var meds []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
	_ = json.Unmarshal(body, &meds)
	var aspirinID string
	for _, m := range meds {
		if m.Name == "Aspirin" {
			aspirinID = m.ID
			if m.Quantity != 23 {
				t.Fatalf("expected seeded quantity 23, got %d", m.Quantity)
			}
		}
	}
	if aspirinID == "" {
		t.Fatalf("expected seeded Aspirin, got %s", string(body))
	}

	// 3) Nombre repetido => 409
	st, _ = doReq(t, ts.URL, "POST", "/api/v1/meds", adminToken, map[string]any{
		"name": "Aspirin", "type": "Syrup", "quantity": 5,
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 duplicate medication, got %d", st)
	}

	// 4) Descontar más que el stock => 409 y el stock queda igual
	st, _ = doReq(t, ts.URL, "PATCH", "/api/v1/meds/"+aspirinID, vetToken, map[string]any{
		"quantity": 30,
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 insufficient quantity, got %d", st)
	}

	// 5) Descuento válido: 23 - 10 = 13
	st, body = doReq(t, ts.URL, "PATCH", "/api/v1/meds/"+aspirinID, vetToken, map[string]any{
		"quantity": 10,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 decrement, got %d body=%s", st, string(body))
	}
	var updated struct {
		Quantity int `json:"quantity"`
	}
	_ = json.Unmarshal(body, &updated)
	if updated.Quantity != 13 {
		t.Fatalf("expected quantity 13 after decrement, got %d", updated.Quantity)
	}

	// 6) El decremento es solo para VET (el ADMIN usa el patch general)
	st, _ = doReq(t, ts.URL, "PATCH", "/api/v1/meds/"+aspirinID, adminToken, map[string]any{
		"quantity": 1,
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 decrement as admin, got %d", st)
	}

	// 7) Patch general setea cantidad (no descuenta)
	st, body = doReq(t, ts.URL, "PATCH", "/api/v1/meds?medId="+aspirinID, adminToken, map[string]any{
		"quantity": 40,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 patch med, got %d body=%s", st, string(body))
	}
	_ = json.Unmarshal(body, &updated)
	if updated.Quantity != 40 {
		t.Fatalf("expected quantity 40 after patch, got %d", updated.Quantity)
	}

	// 8) Borrado por id
	st, _ = doReq(t, ts.URL, "DELETE", "/api/v1/meds?medId="+aspirinID, adminToken, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete med, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "DELETE", "/api/v1/meds?medId="+aspirinID, adminToken, nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 delete missing med, got %d", st)
	}
}

func TestHTTP_AdminUserManagement(t *testing.T) {
	ts := newTestServer(t)

	adminToken := login(t, ts.URL, "Admin", "Password")

	registerCustomer(t, ts.URL, "bob", "bob@mail.com")
	bobToken := login(t, ts.URL, "bob", "Password")
	_ = createPet(t, ts.URL, bobToken, "Rocky")

	// 1) Un customer no entra a /admin
	st, _ := doReq(t, ts.URL, "GET", "/api/v1/admin/users", bobToken, nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 admin list as customer, got %d", st)
	}

	// 2) El admin lista y encuentra a bob
	st, body := doReq(t, ts.URL, "GET", "/api/v1/admin/users", adminToken, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 admin list, got %d body=%s", st, string(body))
	}
	var all []struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	_ = json.Unmarshal(body, &all)
	var bobID string
	for _, u := range all {
		if u.Username == "bob" {
			bobID = u.ID
		}
	}
	if bobID == "" {
		t.Fatalf("expected bob in admin list, got %s", string(body))
	}

	// 3) Detalle por id
	st, _ = doReq(t, ts.URL, "GET", "/api/v1/admin/users/"+bobID, adminToken, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 admin get user, got %d", st)
	}

	// 4) Un admin puede editar el perfil de otro usuario
	st, _ = doReq(t, ts.URL, "PATCH", "/api/v1/users?userId="+bobID, adminToken, map[string]any{
		"first_name": "Robert",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 admin patch user, got %d", st)
	}

	// 5) Borrado con cascade: después bob no puede loguearse
	st, _ = doReq(t, ts.URL, "DELETE", "/api/v1/admin/users?userId="+bobID, adminToken, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 admin delete user, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "POST", "/api/v1/auth/login", "", map[string]any{
		"username": "bob", "password": "Password",
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 login after delete, got %d", st)
	}
}

// -------------------------
// Helpers
// -------------------------

func registerCustomer(t *testing.T, baseURL, username, email string) {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/v1/auth/register", "", map[string]any{
		"username":   username,
		"password":   "Password",
		"email":      email,
		"first_name": "Test",
		"last_name":  "User",
		"phone":      "12345678",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register %s, got %d body=%s", username, st, string(body))
	}
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/v1/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login %s, got %d body=%s", username, st, string(body))
	}

	var resp struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Token == "" {
		t.Fatalf("login %s: missing token body=%s", username, string(body))
	}
	return resp.Token
}

func createPet(t *testing.T, baseURL, token, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/v1/pets", token, map[string]any{
		"name":    name,
		"species": "dog",
		"breed":   "mixed",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res.StatusCode, b
}
