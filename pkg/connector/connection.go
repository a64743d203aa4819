package connector

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"sync/atomic"

	"github.com/razzie/fig/pkg/server"
	"github.com/razzie/jsonrpc"
	"golang.org/x/net/websocket"
)

var ErrNoReply = errors.New("no reply from server")

// Connection is a JSON-RPC client of an animation served by pkg/server.
type Connection struct {
	ws      io.Closer
	client  *jsonrpc.JsonRPC
	id      string
	Viewers atomic.Int32
}

// NewConnection connects to the animation behind a view URL such as
// http://localhost:8080/view/<id>.
func NewConnection(animationURL string) (*Connection, error) {
	wsURL := strings.NewReplacer("http://", "ws://", "https://", "wss://", "/view/", "/ws/").Replace(animationURL)
	ws, err := websocket.Dial(wsURL, "", wsURL)
	if err != nil {
		return nil, err
	}
	conn := &Connection{
		ws:     ws,
		client: jsonrpc.NewJsonRpc(ws),
		id:     wsURL[strings.LastIndexByte(wsURL, '/')+1:],
	}
	conn.client.Register(&Viewer{conn: conn}, "")
	go conn.client.Serve()
	return conn, nil
}

func (conn *Connection) ID() string {
	return conn.id
}

func (conn *Connection) Info() (*server.Info, error) {
	var info server.Info
	conn.client.Call("Animation.Info", true, &info)
	if info.ID != conn.id {
		return nil, fmt.Errorf("Animation.Info: %w", ErrNoReply)
	}
	return &info, nil
}

// Frame returns the composited canvas of frame n.
func (conn *Connection) Frame(n int) (image.Image, error) {
	var frame server.FrameImage
	conn.client.Call("Animation.Frame", n, &frame)
	if len(frame.PNG) == 0 {
		return nil, fmt.Errorf("Animation.Frame(%d): %w", n, ErrNoReply)
	}
	return png.Decode(bytes.NewReader(frame.PNG))
}

func (conn *Connection) Close() error {
	return conn.ws.Close()
}

func (conn *Connection) updateViewCount(count int32) {
	conn.Viewers.Store(count)
}
