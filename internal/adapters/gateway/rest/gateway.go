package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"pet-marketplace/internal/domain/pets"
	"pet-marketplace/internal/petstore"
	"pet-marketplace/internal/platform/httpclient"
	"pet-marketplace/internal/ports/auth"
)

var ErrOwnerMismatch = errors.New("session user does not match requested owner")

// Gateway implementa petstore.Gateway contra la API HTTP del backend.
type Gateway struct {
	client  *httpclient.Client
	session auth.Session
}

var _ petstore.Gateway = (*Gateway)(nil)

func New(client *httpclient.Client, session auth.Session) *Gateway {
	return &Gateway{client: client, session: session}
}

func (g *Gateway) List(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	headers, err := g.headersFor(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var rows []pets.Row
	if err := g.client.DoJSON(ctx, http.MethodGet, "/pets", headers, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]pets.Pet, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Pet())
	}
	return out, nil
}

func (g *Gateway) Create(ctx context.Context, ownerID string, d pets.Draft) (pets.Pet, error) {
	headers, err := g.headersFor(ctx, ownerID)
	if err != nil {
		return pets.Pet{}, err
	}

	var row pets.Row
	if err := g.client.DoJSON(ctx, http.MethodPost, "/pets", headers, pets.ToDraftRow(d), &row); err != nil {
		return pets.Pet{}, err
	}
	return row.Pet(), nil
}

func (g *Gateway) Update(ctx context.Context, id string, patch pets.Patch) (pets.Pet, error) {
	headers, err := auth.Headers(ctx, g.session)
	if err != nil {
		return pets.Pet{}, err
	}

	var row pets.Row
	if err := g.client.DoJSON(ctx, http.MethodPatch, petPath(id), headers, pets.ToPatchRow(patch), &row); err != nil {
		return pets.Pet{}, err
	}
	return row.Pet(), nil
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	headers, err := auth.Headers(ctx, g.session)
	if err != nil {
		return err
	}
	return g.client.DoJSON(ctx, http.MethodDelete, petPath(id), headers, nil, nil)
}

// UploadPhoto sube un archivo a /storage/pets/{owner}/{pet}/{file} y
// devuelve la URL pública que responde el backend.
func (g *Gateway) UploadPhoto(ctx context.Context, ownerID, petID string, f petstore.Upload) (string, error) {
	headers, err := g.headersFor(ctx, ownerID)
	if err != nil {
		return "", err
	}

	path := "/storage/pets/" + url.PathEscape(ownerID) + "/" + url.PathEscape(petID) + "/" + url.PathEscape(f.Filename)

	var out struct {
		URL string `json:"url"`
	}
	if err := g.client.DoRaw(ctx, http.MethodPut, path, headers, f.ContentType, f.Body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", fmt.Errorf("upload %s: backend returned no url", f.Filename)
	}
	return out.URL, nil
}

// headersFor verifica que la sesión sea del owner pedido: el backend solo
// expone los pets del usuario autenticado.
func (g *Gateway) headersFor(ctx context.Context, ownerID string) (map[string]string, error) {
	if g.session == nil {
		return nil, auth.ErrNoSession
	}
	claims, err := g.session.Current(ctx)
	if err != nil {
		return nil, err
	}
	if ownerID = strings.TrimSpace(ownerID); ownerID != "" && claims.UserID != ownerID {
		return nil, ErrOwnerMismatch
	}
	return auth.Headers(ctx, g.session)
}

func petPath(id string) string {
	return "/pets/" + url.PathEscape(strings.TrimSpace(id))
}
