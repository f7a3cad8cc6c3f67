package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server agrupa la configuración de cmd/api.
type Server struct {
	Addr string

	// Storage de filas: DB_DSN (Postgres) tiene prioridad sobre SQLITE_PATH.
	// Si ninguno viene, in-memory.
	DBDSN      string
	SQLitePath string

	// Object storage en disco.
	StorageDir    string
	PublicBaseURL string

	OdinBaseURL string
	OdinAPIKey  string
	OdinTimeout time.Duration

	ShutdownTimeout time.Duration
}

// LoadEnvFile carga un .env si existe. No pisa variables ya definidas.
// Devuelve false si no había archivo.
func LoadEnvFile(path string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("load %s: %w", path, err)
	}
	return true, nil
}

// LoadServer lee la config desde env (después de LoadEnvFile).
func LoadServer() (Server, error) {
	port := getenv("PORT", "8080")
	cfg := Server{
		Addr:            ":" + port,
		DBDSN:           strings.TrimSpace(os.Getenv("DB_DSN")),
		SQLitePath:      strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		StorageDir:      getenv("STORAGE_DIR", filepath.Join(os.TempDir(), "pet-marketplace-objects")),
		PublicBaseURL:   strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		OdinBaseURL:     strings.TrimSpace(os.Getenv("ODIN_BASE_URL")),
		OdinAPIKey:      strings.TrimSpace(os.Getenv("ODIN_API_KEY")),
		OdinTimeout:     5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("ODIN_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Server{}, fmt.Errorf("ODIN_TIMEOUT: %w", err)
		}
		cfg.OdinTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("SHUTDOWN_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Server{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

func (s Server) OdinEnabled() bool {
	return s.OdinBaseURL != "" && s.OdinAPIKey != ""
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
