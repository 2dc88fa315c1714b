package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic-api/internal/domain/authz"
	"vet-clinic-api/internal/ports/auth"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]User
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	if u.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[u.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) EnsureRoles(ctx context.Context) error { return nil }

// purger registra el orden de los borrados del cascade.
type purger struct {
	tag string
	log *[]string
}

func (p purger) DeleteAllByOwner(ctx context.Context, ownerUserID string) error {
	*p.log = append(*p.log, p.tag+":"+ownerUserID)
	return nil
}

type testIssuer struct{}

func (testIssuer) Issue(ctx context.Context, c auth.Claims) (string, error) {
	return "token-for-" + c.UserID, nil
}

func newTestService(repo *testRepo) *Service {
	log := []string{}
	return NewService(repo, purger{tag: "pets", log: &log}, purger{tag: "visits", log: &log}, testIssuer{})
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_DefaultsToCustomer(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	// Sin actor: el pedido de ADMIN se ignora y queda CUSTOMER.
	u, err := svc.Register(context.Background(), nil, RegisterInput{
		Username:  "alice",
		Password:  "Password",
		Email:     "alice@mail.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Authority: "ADMIN",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !authz.HasRole(u.Roles, authz.RoleCustomer) || len(u.Roles) != 1 {
		t.Fatalf("expected only CUSTOMER, got %v", u.Roles)
	}
	if u.PasswordHash == "Password" || u.PasswordHash == "" {
		t.Fatalf("expected hashed password, got %q", u.PasswordHash)
	}
}

func TestService_Register_AdminCanAssignRole(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	u, err := svc.Register(context.Background(), []authz.Role{authz.RoleAdmin}, RegisterInput{
		Username:  "vet1",
		Password:  "Password",
		Email:     "vet1@mail.com",
		FirstName: "Vet",
		LastName:  "One",
		Authority: "VET",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !authz.HasRole(u.Roles, authz.RoleVet) {
		t.Fatalf("expected VET role, got %v", u.Roles)
	}
}

func TestService_Register_DuplicateUsernameAndEmail(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), nil, RegisterInput{
		Username: "alice", Password: "Password", Email: "alice@mail.com",
		FirstName: "Alice", LastName: "Smith",
	})
	if err != nil {
		t.Fatalf("Register #1 error: %v", err)
	}

	_, err = svc.Register(context.Background(), nil, RegisterInput{
		Username: "alice", Password: "Password", Email: "other@mail.com",
		FirstName: "Alice", LastName: "Smith",
	})
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}

	_, err = svc.Register(context.Background(), nil, RegisterInput{
		Username: "alice2", Password: "Password", Email: "alice@mail.com",
		FirstName: "Alice", LastName: "Smith",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestService_Login_OkAndBadCredentials(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	u, err := svc.Register(context.Background(), nil, RegisterInput{
		Username: "alice", Password: "Password", Email: "alice@mail.com",
		FirstName: "Alice", LastName: "Smith",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	token, logged, err := svc.Login(context.Background(), "alice", "Password")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token != "token-for-"+u.ID {
		t.Fatalf("unexpected token %q", token)
	}
	if logged.ID != u.ID {
		t.Fatalf("expected logged user %s, got %s", u.ID, logged.ID)
	}

	// Password incorrecta y username inexistente devuelven el mismo error.
	if _, _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody", "Password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestService_Delete_CascadeOrder(t *testing.T) {
	repo := newTestRepo()
	log := []string{}
	svc := NewService(repo, purger{tag: "pets", log: &log}, purger{tag: "visits", log: &log}, testIssuer{})

	u, err := svc.Register(context.Background(), nil, RegisterInput{
		Username: "alice", Password: "Password", Email: "alice@mail.com",
		FirstName: "Alice", LastName: "Smith",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	deleted, err := svc.Delete(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if deleted.ID != u.ID {
		t.Fatalf("expected deleted user %s, got %s", u.ID, deleted.ID)
	}
	if _, ok := repo.byID[u.ID]; ok {
		t.Fatalf("expected user removed from repo")
	}

	// visits primero, pets después
	if len(log) != 2 || log[0] != "visits:"+u.ID || log[1] != "pets:"+u.ID {
		t.Fatalf("unexpected cascade order: %v", log)
	}
}

func TestService_UpdateProfile_OwnerOrAdminOnly(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	svc.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }

	u, err := svc.Register(context.Background(), nil, RegisterInput{
		Username: "alice", Password: "Password", Email: "alice@mail.com",
		FirstName: "Alice", LastName: "Smith", Phone: "12345678",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	newPhone := "87654321"

	// Un tercero sin rol ADMIN no puede tocar el perfil.
	_, err = svc.UpdateProfile(context.Background(), "stranger", []authz.Role{authz.RoleCustomer}, u.ID, UpdateProfileInput{Phone: &newPhone})
	if !errors.Is(err, ErrInvalidAuthorities) {
		t.Fatalf("expected ErrInvalidAuthorities, got %v", err)
	}

	// El propio usuario sí; los campos ausentes quedan como están.
	updated, err := svc.UpdateProfile(context.Background(), u.ID, []authz.Role{authz.RoleCustomer}, u.ID, UpdateProfileInput{Phone: &newPhone})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Phone != newPhone || updated.FirstName != "Alice" {
		t.Fatalf("unexpected patch result: %+v", updated)
	}

	// Un ADMIN también puede.
	name := "Alicia"
	updated, err = svc.UpdateProfile(context.Background(), "admin-1", []authz.Role{authz.RoleAdmin}, u.ID, UpdateProfileInput{FirstName: &name})
	if err != nil {
		t.Fatalf("UpdateProfile (admin) returned error: %v", err)
	}
	if updated.FirstName != "Alicia" {
		t.Fatalf("expected first name updated, got %q", updated.FirstName)
	}
}

func TestService_ListVets_FiltersByRole(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	admin := []authz.Role{authz.RoleAdmin}

	if _, err := svc.Register(context.Background(), admin, RegisterInput{
		Username: "vet1", Password: "Password", Email: "vet1@mail.com",
		FirstName: "Vet", LastName: "One", Authority: "VET",
	}); err != nil {
		t.Fatalf("Register vet error: %v", err)
	}
	if _, err := svc.Register(context.Background(), nil, RegisterInput{
		Username: "alice", Password: "Password", Email: "alice@mail.com",
		FirstName: "Alice", LastName: "Smith",
	}); err != nil {
		t.Fatalf("Register customer error: %v", err)
	}

	vets, err := svc.ListVets(context.Background())
	if err != nil {
		t.Fatalf("ListVets returned error: %v", err)
	}
	if len(vets) != 1 || vets[0].Username != "vet1" {
		t.Fatalf("expected only vet1, got %+v", vets)
	}
}
