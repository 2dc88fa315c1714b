package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"vet-clinic-api/internal/adapters/auth/jwtauth"
	mem "vet-clinic-api/internal/adapters/storage/memory"
	pg "vet-clinic-api/internal/adapters/storage/postgres"
	"vet-clinic-api/internal/domain/authz"
	"vet-clinic-api/internal/domain/medications"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/domain/visits"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/logger"

	_ "vet-clinic-api/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Auth opcional: si es nil se arma desde env (JWT_SECRET / JWT_TTL).
	Auth *jwtauth.Manager

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	tokens := opts.Auth
	if tokens == nil {
		tokens = jwtauth.NewFromEnv()
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.AuthContext(tokens))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		usersRepo  users.Repository
		petsRepo   pets.Repository
		visitsRepo visits.Repository
		medsRepo   medications.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		usersRepo = pg.NewUsersRepo(db)
		petsRepo = pg.NewPetsRepo(db)
		visitsRepo = pg.NewVisitsRepo(db)
		medsRepo = pg.NewMedicationsRepo(db)
	} else {
		usersRepo = mem.NewUserRepo()
		petsRepo = mem.NewPetRepo()
		visitsRepo = mem.NewVisitRepo()
		medsRepo = mem.NewMedicationRepo()
	}

	if err := usersRepo.EnsureRoles(context.Background()); err != nil {
		log.Error("role seeding failed", map[string]any{"error": err.Error()})
	}

	// Services por módulo
	usersSvc := users.NewService(usersRepo, petsRepo, visitsRepo, tokens)
	petsSvc := pets.NewService(petsRepo)
	visitsSvc := visits.NewService(visitsRepo, petsSvc, usersSvc)
	medsSvc := medications.NewService(medsRepo)

	if os.Getenv("SEED_DEMO") == "1" {
		seedDemo(log, usersSvc, medsSvc, usersRepo)
	}

	// Rutas por módulo, todas bajo el mismo prefijo
	r.Route("/api/v1", func(api chi.Router) {
		users.RegisterRoutes(api, usersSvc)
		users.RegisterAdminRoutes(api, usersSvc)
		pets.RegisterRoutes(api, petsSvc, usersSvc)
		visits.RegisterRoutes(api, visitsSvc)
		medications.RegisterRoutes(api, medsSvc)
	})

	return r
}

// seedDemo carga datos de arranque para probar a mano: un admin, cuatro
// vets, un customer y una medicación. Es idempotente a nivel "ya existe".
func seedDemo(log logger.Logger, usersSvc *users.Service, medsSvc *medications.Service, repo users.Repository) {
	ctx := context.Background()
	admin := []authz.Role{authz.RoleAdmin}

	seedUsers := []struct {
		in        users.RegisterInput
		specialty string
	}{
		{in: users.RegisterInput{Username: "Admin", Password: "Password", Email: "admin@vetclinic.com", FirstName: "Ada", LastName: "Admin", Phone: "11110000", Authority: "ADMIN"}},
		{in: users.RegisterInput{Username: "Vet1", Password: "Password", Email: "vet1@vetclinic.com", FirstName: "Vera", LastName: "Vet", Phone: "11110001", Authority: "VET"}, specialty: "Surgery"},
		{in: users.RegisterInput{Username: "Vet2", Password: "Password", Email: "vet2@vetclinic.com", FirstName: "Victor", LastName: "Vet", Phone: "11110002", Authority: "VET"}, specialty: "Dermatology"},
		{in: users.RegisterInput{Username: "Vet3", Password: "Password", Email: "vet3@vetclinic.com", FirstName: "Valeria", LastName: "Vet", Phone: "11110003", Authority: "VET"}, specialty: "Cardiology"},
		{in: users.RegisterInput{Username: "Vet4", Password: "Password", Email: "vet4@vetclinic.com", FirstName: "Vito", LastName: "Vet", Phone: "11110004", Authority: "VET"}, specialty: "Dentistry"},
		{in: users.RegisterInput{Username: "Customer", Password: "Password", Email: "customer@vetclinic.com", FirstName: "Carla", LastName: "Customer", Phone: "11110005"}},
	}

	for _, s := range seedUsers {
		u, err := usersSvc.Register(ctx, admin, s.in)
		if err != nil {
			log.Debug("seed user skipped", map[string]any{"username": s.in.Username, "reason": err.Error()})
			continue
		}
		if s.specialty != "" {
			u.VetSpecialty = s.specialty
			_ = repo.Update(ctx, u)
		}
	}

	if _, err := medsSvc.Create(ctx, medications.CreateInput{
		Name:        "Aspirin",
		Type:        "Tablet",
		Quantity:    23,
		Description: "It just helps",
	}); err != nil {
		log.Debug("seed medication skipped", map[string]any{"name": "Aspirin", "reason": err.Error()})
	}
}
