package feed

import (
	"encoding/json"
	"fmt"
	"net/url"

	"corkboard-cli/internal/model"

	"github.com/gorilla/websocket"
)

// Remote consumes a sync server's websocket change feed and republishes
// frames through an embedded Broadcaster, so local and remote feeds expose
// the same Subscribe surface.
type Remote struct {
	*Broadcaster
	conn *websocket.Conn
	done chan struct{}
}

// DialRemote connects to a sync server's feed endpoint for one workspace.
// baseURL is the server root, e.g. "ws://localhost:7464".
func DialRemote(baseURL, workspaceID string) (*Remote, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("feed url: %w", err)
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"workspace": []string{workspaceID}}.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial feed: %w", err)
	}

	r := &Remote{
		Broadcaster: NewBroadcaster(),
		conn:        conn,
		done:        make(chan struct{}),
	}
	go r.readLoop()
	return r, nil
}

func (r *Remote) readLoop() {
	defer close(r.done)
	for {
		_, raw, err := r.conn.ReadMessage()
		if err != nil {
			return
		}
		var c model.Change
		if err := json.Unmarshal(raw, &c); err != nil {
			// Skip malformed frames; the next reconcile fetch catches up.
			continue
		}
		r.Publish(c)
	}
}

// Done is closed when the server connection drops.
func (r *Remote) Done() <-chan struct{} { return r.done }

func (r *Remote) Close() error {
	return r.conn.Close()
}
