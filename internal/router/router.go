package router

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	mem "pet-adoption-api/internal/adapters/storage/memory"
	pg "pet-adoption-api/internal/adapters/storage/postgres"
	"pet-adoption-api/internal/domain/adoptions"
	"pet-adoption-api/internal/domain/animals"
	"pet-adoption-api/internal/domain/users"
	"pet-adoption-api/internal/middleware"
	"pet-adoption-api/internal/platform/httpx"
	"pet-adoption-api/internal/platform/logger"
	"pet-adoption-api/internal/ports/auth"
	"pet-adoption-api/internal/ports/blob"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Si viene DB, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Backend de binarios de imágenes. Obligatorio.
	Blobs blob.Store

	Log logger.Logger

	// Si ambos vienen, sirve los archivos del driver fs bajo este path.
	UploadsDir  string
	UploadsPath string
}

// animalDirectory adapta animals.Service al contrato que adoptions espera,
// traduciendo el sentinel de not-found entre dominios.
type animalDirectory struct {
	svc *animals.Service
}

func (d animalDirectory) StateOf(ctx context.Context, animalID string) (string, string, error) {
	owner, status, err := d.svc.StateOf(ctx, animalID)
	if errors.Is(err, animals.ErrNotFound) {
		return "", "", adoptions.ErrAnimalNotFound
	}
	return owner, status, err
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{"status": "ok"})
	})

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		usersRepo     users.Repository
		animalsRepo   animals.Repository
		adoptionsRepo adoptions.Repository
	)

	if opts.DB != nil {
		usersRepo = pg.NewUsersRepo(opts.DB)
		animalsRepo = pg.NewAnimalsRepo(opts.DB)
		adoptionsRepo = pg.NewAdoptionsRepo(opts.DB)
	} else {
		store := mem.NewStore()
		usersRepo = mem.NewUsersRepo(store)
		animalsRepo = mem.NewAnimalsRepo(store)
		adoptionsRepo = mem.NewAdoptionsRepo(store)
	}

	// Services por módulo
	usersSvc := users.NewService(usersRepo)
	animalsSvc := animals.NewService(animalsRepo, opts.Blobs, log)
	adoptionsSvc := adoptions.NewService(adoptionsRepo, animalDirectory{svc: animalsSvc})

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	animals.RegisterRoutes(r, animalsSvc, log)
	adoptions.RegisterRoutes(r, adoptionsSvc, log)

	if opts.UploadsDir != "" && opts.UploadsPath != "" {
		path := "/" + strings.Trim(opts.UploadsPath, "/")
		r.Handle(path+"/*", http.StripPrefix(path+"/", http.FileServer(http.Dir(opts.UploadsDir))))
	}

	return r
}
