package realtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"

	"pet-marketplace/internal/platform/httpclient"
	"pet-marketplace/internal/ports/auth"
)

const (
	FeedPath     = "/realtime/pets"
	maxFrameSize = 1 << 20
)

// WebsocketDialer abre el feed realtime del backend vía websocket.
// El owner lo determina la sesión (el backend filtra por claims).
type WebsocketDialer struct {
	client  *httpclient.Client
	session auth.Session
}

func NewWebsocketDialer(client *httpclient.Client, session auth.Session) *WebsocketDialer {
	return &WebsocketDialer{client: client, session: session}
}

func (d *WebsocketDialer) Dial(ctx context.Context, ownerID string) (Feed, error) {
	claims, err := d.session.Current(ctx)
	if err != nil {
		return nil, err
	}
	if claims.UserID != ownerID {
		return nil, fmt.Errorf("realtime: session user %q cannot subscribe to owner %q", claims.UserID, ownerID)
	}

	u, err := d.client.ResolveURL(FeedPath)
	if err != nil {
		return nil, err
	}
	headers, err := auth.Headers(ctx, d.session)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}

	conn, _, err := websocket.Dial(ctx, u, &websocket.DialOptions{HTTPHeader: h})
	if err != nil {
		return nil, fmt.Errorf("realtime: dial %s: %w", u, err)
	}
	conn.SetReadLimit(maxFrameSize)
	return &wsFeed{conn: conn}, nil
}

type wsFeed struct {
	conn *websocket.Conn
}

func (f *wsFeed) Next(ctx context.Context) ([]byte, error) {
	_, data, err := f.conn.Read(ctx)
	return data, err
}

func (f *wsFeed) Close() error {
	return f.conn.Close(websocket.StatusNormalClosure, "")
}
