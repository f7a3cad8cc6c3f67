package pets

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"pet-marketplace/internal/middleware"
	"pet-marketplace/internal/ports/objects"

	"github.com/go-chi/chi/v5"
)

const maxPhotoBytes = 10 << 20

type uploadResponse struct {
	URL string `json:"url"`
}

// RegisterPhotoRoutes expone el object storage de fotos. La lectura es
// pública (las URLs se publican en el marketplace); la escritura es solo
// del dueño de la mascota.
func RegisterPhotoRoutes(r chi.Router, svc *Service, store objects.Store) {
	r.Route("/storage/pets/{ownerID}/{petID}/{filename}", func(sr chi.Router) {
		sr.Put("/", uploadPhotoHandler(svc, store))
		sr.Get("/", getPhotoHandler(store))
	})
}

// uploadPhotoHandler godoc
// @Summary Subir foto de mascota
// @Description Guarda el body crudo como objeto y devuelve su URL pública. No modifica el pet: el cliente agrega la URL con PATCH /pets/{petID}.
// @Tags storage
// @Accept octet-stream
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param ownerID path string true "ID del dueño"
// @Param petID path string true "ID de la mascota"
// @Param filename path string true "Nombre del archivo"
// @Success 201 {object} uploadResponse
// @Failure 400 {string} string "key inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Failure 413 {string} string "too large"
// @Router /storage/pets/{ownerID}/{petID}/{filename} [put]
func uploadPhotoHandler(svc *Service, store objects.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ownerID := chi.URLParam(r, "ownerID")
		petID := chi.URLParam(r, "petID")
		if ownerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		owner, err := svc.OwnerOf(r.Context(), petID)
		if err != nil {
			writeError(w, err)
			return
		}
		if owner != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		key, err := objects.PetPhotoKey(ownerID, petID, chi.URLParam(r, "filename"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		body := http.MaxBytesReader(w, r.Body, maxPhotoBytes)
		url, err := store.Put(r.Context(), key, r.Header.Get("Content-Type"), body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			case errors.Is(err, objects.ErrInvalidKey):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, uploadResponse{URL: url})
	}
}

// getPhotoHandler godoc
// @Summary Descargar foto de mascota
// @Tags storage
// @Produce octet-stream
// @Param ownerID path string true "ID del dueño"
// @Param petID path string true "ID de la mascota"
// @Param filename path string true "Nombre del archivo"
// @Success 200 {file} file
// @Failure 404 {string} string "not found"
// @Router /storage/pets/{ownerID}/{petID}/{filename} [get]
func getPhotoHandler(store objects.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := objects.PetPhotoKey(chi.URLParam(r, "ownerID"), chi.URLParam(r, "petID"), chi.URLParam(r, "filename"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		rc, contentType, err := store.Open(r.Context(), key)
		if err != nil {
			if errors.Is(err, objects.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer rc.Close()

		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, rc)
	}
}
