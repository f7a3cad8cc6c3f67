package router

import (
	"database/sql"
	"log/slog"
	"net/http"

	_ "pet-marketplace/docs"
	objmem "pet-marketplace/internal/adapters/objects/memory"
	mem "pet-marketplace/internal/adapters/storage/memory"
	pg "pet-marketplace/internal/adapters/storage/postgres"
	"pet-marketplace/internal/domain/pets"
	"pet-marketplace/internal/middleware"
	"pet-marketplace/internal/platform/logger"
	"pet-marketplace/internal/ports/auth"
	"pet-marketplace/internal/ports/objects"
	"pet-marketplace/internal/realtime"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Storage de pets: PetsRepo tiene prioridad; si no, DB (Postgres);
	// si no, in-memory.
	PetsRepo pets.Repository
	DB       *sql.DB

	// Object storage de fotos. nil => in-memory.
	Objects objects.Store

	// Hub realtime. nil => se crea uno propio.
	Hub *realtime.Hub

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	petRepo := opts.PetsRepo
	if petRepo == nil {
		if opts.DB != nil {
			petRepo = pg.NewPetsRepo(opts.DB)
		} else {
			petRepo = mem.NewPetRepo()
		}
	}

	store := opts.Objects
	if store == nil {
		store = objmem.NewStore("")
	}

	hub := opts.Hub
	if hub == nil {
		hub = realtime.NewHub(log)
	}

	petsSvc := pets.NewService(petRepo, hub, log)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AuthContext(opts.AuthVerifier))

	// Feed realtime: queda fuera del request logger porque la conexión
	// vive mientras el cliente esté suscripto.
	r.Get(realtime.FeedPath, func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, middleware.UserID(r))
	})

	r.Group(func(g chi.Router) {
		g.Use(httplog.RequestLogger(slogOf(log), &httplog.Options{
			Level:             slog.LevelDebug,
			Schema:            httplog.SchemaECS.Concise(true),
			LogRequestHeaders: []string{},
		}))

		g.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})

		g.Handle("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
		g.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
		})

		pets.RegisterRoutes(g, petsSvc)
		pets.RegisterPhotoRoutes(g, petsSvc, store)
	})

	return r
}

func slogOf(l logger.Logger) *slog.Logger {
	if s := l.SLog(); s != nil {
		return s
	}
	return slog.Default()
}
