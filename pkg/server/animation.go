package server

import (
	"bytes"
	"image/png"
	"io"
	"sync"

	"github.com/razzie/fig/pkg/fig"
	"github.com/razzie/jsonrpc"
	"golang.org/x/net/websocket"
)

// Animation is a decoded animation in the cache. Its exported methods are
// served over JSON-RPC.
type Animation struct {
	lc      *lifecycle
	id      string
	mtx     sync.Mutex
	anim    *fig.Animation
	clients []*jsonrpc.JsonRPC
}

func newAnimation(lc *lifecycle, id string, anim *fig.Animation) *Animation {
	return &Animation{
		lc:   lc,
		id:   id,
		anim: anim,
	}
}

// Animation.Info is an RPC function that describes the canvas and every frame
func (a *Animation) Info(unused bool, info *Info) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	*info = *newInfo(a.id, a.anim)
	return nil
}

// Animation.Frame is an RPC function that returns a composited frame as PNG
func (a *Animation) Frame(index int, frame *FrameImage) error {
	var buf bytes.Buffer
	if err := a.writeFrame(&buf, index, 1); err != nil {
		return err
	}
	*frame = FrameImage{
		Index: index,
		PNG:   buf.Bytes(),
	}
	return nil
}

func (a *Animation) info() *Info {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.touch()
	return newInfo(a.id, a.anim)
}

func (a *Animation) writeGIF(w io.Writer) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.touch()
	return fig.SaveGIF(w, a.anim)
}

func (a *Animation) writeFrame(w io.Writer, index, scale int) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.touch()
	f, err := a.anim.Frame(index)
	if err != nil {
		return err
	}
	return png.Encode(w, f.ScaledImage(scale))
}

// touch restarts the expiry of an animation nobody is connected to. While
// viewers are connected there is no expiry to restart. The caller holds a.mtx.
func (a *Animation) touch() {
	if len(a.clients) > 0 {
		return
	}
	a.lc.startTimer()
	go a.lc.touch()
}

func (a *Animation) addClient(client *jsonrpc.JsonRPC) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.clients = append(a.clients, client)
	if len(a.clients) == 1 {
		a.lc.stopTimer()
		go a.lc.persist()
	}
	a.updateViewCount()
}

func (a *Animation) removeClient(client *jsonrpc.JsonRPC) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	for i, cl := range a.clients {
		if cl == client {
			a.clients = append(a.clients[:i], a.clients[i+1:]...)
			break
		}
	}
	if len(a.clients) == 0 {
		a.clients = nil
		a.lc.startTimer()
		go a.lc.touch()
		return
	}
	a.updateViewCount()
}

func (a *Animation) updateViewCount() {
	count := int32(len(a.clients))
	for _, client := range a.clients {
		client.Notify("Viewer.UpdateViewCount", count)
	}
}

func (a *Animation) serve(ws *websocket.Conn) {
	client := jsonrpc.NewJsonRpc(ws)
	client.Register(a, "")

	a.addClient(client)
	client.Serve()

	a.removeClient(client)
}
