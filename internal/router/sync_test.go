package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-marketplace/internal/adapters/gateway/rest"
	"pet-marketplace/internal/domain/pets"
	"pet-marketplace/internal/petstore"
	"pet-marketplace/internal/platform/httpclient"
	"pet-marketplace/internal/ports/auth"
	"pet-marketplace/internal/realtime"
	"pet-marketplace/internal/router"
)

// Un store cliente contra el backend real: lo que hace otro dispositivo del
// mismo owner llega por el feed realtime.
func TestSync_StoreFollowsOtherDevice(t *testing.T) {
	hub := realtime.NewHub(nil)
	defer hub.Close()

	ts := httptest.NewServer(router.NewRouter(router.Options{Hub: hub}))
	defer ts.Close()

	ownerID := "owner-1"
	client, err := httpclient.NewWithBaseURL(ts.URL, 2*time.Second)
	require.NoError(t, err)
	session := auth.StaticSession{UserID: ownerID}

	listener := realtime.NewListener(realtime.NewWebsocketDialer(client, session), nil)
	defer listener.Close()

	store, err := petstore.New(petstore.Options{
		Gateway:  rest.New(client, session),
		Listener: listener,
	})
	require.NoError(t, err)
	defer store.Dispose()

	existing := createPet(t, ts.URL, ownerID, map[string]any{"name": "Rex", "species": "dog"})

	ctx := context.Background()
	require.NoError(t, store.Init(ctx, ownerID))
	require.Equal(t, realtime.Subscribed, listener.State(ownerID))
	require.Eventually(t, func() bool { return hub.Clients(ownerID) == 1 }, 2*time.Second, 10*time.Millisecond)

	got := store.Pets()
	require.Len(t, got, 1)
	assert.Equal(t, existing, got[0].ID)

	// Otro dispositivo crea: llega como INSERT.
	remote := createPet(t, ts.URL, ownerID, map[string]any{"name": "Milo", "species": "cat"})
	require.Eventually(t, func() bool { return len(store.Pets()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, remote, store.Pets()[0].ID)

	// Alta local: queda una sola vez aunque también llegue el eco realtime.
	created, err := store.Create(ctx, pets.Draft{Name: "Kiwi", Species: pets.SpeciesBird})
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, store.Pets(), 3)
	assert.Equal(t, created.ID, store.Pets()[0].ID)

	// Otro dispositivo edita.
	st, _ := doReq(t, ts.URL, "PATCH", "/pets/"+existing, ownerID, map[string]any{"name": "Rex II"})
	require.Equal(t, http.StatusOK, st)
	require.Eventually(t, func() bool {
		p, ok := store.Get(existing)
		return ok && p.Name == "Rex II" && p.Version == 2
	}, 2*time.Second, 10*time.Millisecond)

	// Fotos: se suben y se agregan al pet.
	urls, err := store.UploadPhotos(ctx, created.ID, []petstore.Upload{
		{Filename: "a.jpg", ContentType: "image/jpeg", Body: strings.NewReader("a")},
		{Filename: "b.jpg", ContentType: "image/jpeg", Body: strings.NewReader("b")},
	})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Equal(t, 100, store.Progress())
	p, ok := store.Get(created.ID)
	require.True(t, ok)
	assert.ElementsMatch(t, urls, p.Photos)

	// Otro dispositivo borra el que estoy editando.
	store.Edit(&p)
	st, _ = doReq(t, ts.URL, "DELETE", "/pets/"+created.ID, ownerID, nil)
	require.Equal(t, http.StatusNoContent, st)
	require.Eventually(t, func() bool { return store.Editing() == nil }, 2*time.Second, 10*time.Millisecond)
	_, ok = store.Get(created.ID)
	assert.False(t, ok)

	// Cambios de otro owner no llegan.
	createPet(t, ts.URL, "owner-2", map[string]any{"name": "Other", "species": "dog"})
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, store.Pets(), 2)

	store.Dispose()
	require.Eventually(t, func() bool { return hub.Clients(ownerID) == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, realtime.Unsubscribed, listener.State(ownerID))
}

func TestSync_GatewayRefusesForeignOwner(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	client, err := httpclient.NewWithBaseURL(ts.URL, time.Second)
	require.NoError(t, err)
	gw := rest.New(client, auth.StaticSession{UserID: "owner-1"})

	_, err = gw.List(context.Background(), "owner-2")
	assert.ErrorIs(t, err, rest.ErrOwnerMismatch)

	_, err = gw.Update(context.Background(), "missing", pets.Patch{})
	assert.Equal(t, http.StatusBadRequest, httpclient.StatusOf(err))

	name := "x"
	_, err = gw.Update(context.Background(), "missing", pets.Patch{Name: &name})
	assert.Equal(t, http.StatusNotFound, httpclient.StatusOf(err))
}
