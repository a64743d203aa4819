package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/razzie/fig/pkg/fig"
	"github.com/razzie/fig/pkg/store"
	"golang.org/x/net/websocket"
)

const (
	DefaultTTL = time.Hour
	// MaxCanvasPixels limits the canvas of uploaded animations.
	MaxCanvasPixels = 2048 * 2048
	// MaxDecodedBytes limits the frame surfaces of one decoded animation.
	MaxDecodedBytes = 128 << 20
)

var (
	ErrNotFound       = store.ErrNotFound
	ErrCanvasTooLarge = errors.New("canvas is too large")
)

// animationStore is the persistent side of AnimationMgr, implemented by
// *store.DB.
type animationStore interface {
	SaveAnimation(ctx context.Context, id string, gif []byte, expiration time.Duration) error
	Touch(ctx context.Context, id string, expiration time.Duration) error
	Persist(ctx context.Context, id string) error
	LoadAnimations(ctx context.Context) map[string][]byte
}

type AnimationMgr struct {
	ttl        time.Duration
	animations sync.Map
	db         animationStore
}

// NewAnimationMgr creates a cache of decoded animations that drops entries
// after ttl without access. When redisURL is set, uploads are also kept in
// Redis and reloaded on start.
func NewAnimationMgr(redisURL string, ttl time.Duration) *AnimationMgr {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	mgr := &AnimationMgr{
		ttl: ttl,
	}
	if len(redisURL) > 0 {
		db, err := store.NewDB(redisURL)
		if err != nil {
			log.Println("Redis error:", err)
		} else {
			mgr.db = db
			mgr.loadAnimations()
		}
	}
	return mgr
}

// Create decodes a GIF stream and caches the result under a new ID.
func (mgr *AnimationMgr) Create(data []byte) (string, error) {
	cfg, err := fig.LoadGIFConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if cfg.Width*cfg.Height > MaxCanvasPixels {
		return "", fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrCanvasTooLarge)
	}
	anim, err := fig.LoadGIFLimit(bytes.NewReader(data), MaxDecodedBytes)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	mgr.animations.Store(id, newAnimation(newLifecycle(mgr, id), id, anim))
	log.Printf("[new animation: %s] %dx%d, %d frames", id, anim.Width(), anim.Height(), anim.FrameCount())
	go mgr.save(id, data)
	return id, nil
}

func (mgr *AnimationMgr) Get(id string) (*Animation, bool) {
	a, ok := mgr.animations.Load(id)
	if !ok {
		return nil, false
	}
	return a.(*Animation), true
}

func (mgr *AnimationMgr) Info(id string) (*Info, error) {
	a, ok := mgr.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return a.info(), nil
}

func (mgr *AnimationMgr) WriteGIF(w io.Writer, id string) error {
	a, ok := mgr.Get(id)
	if !ok {
		return ErrNotFound
	}
	return a.writeGIF(w)
}

func (mgr *AnimationMgr) WriteFrame(w io.Writer, id string, index, scale int) error {
	a, ok := mgr.Get(id)
	if !ok {
		return ErrNotFound
	}
	return a.writeFrame(w, index, scale)
}

func (mgr *AnimationMgr) ServeRPC(w http.ResponseWriter, r *http.Request, id string) {
	a, ok := mgr.Get(id)
	if !ok {
		http.Error(w, "Animation not found", http.StatusNotFound)
		return
	}
	websocket.Handler(a.serve).ServeHTTP(w, r)
}

func (mgr *AnimationMgr) loadAnimations() {
	for id, data := range mgr.db.LoadAnimations(context.Background()) {
		log.Printf("[Loading animation from persistent storage: %s]", id)
		anim, err := fig.LoadGIFLimit(bytes.NewReader(data), MaxDecodedBytes)
		if err != nil {
			log.Println(err)
			continue
		}
		mgr.animations.Store(id, newAnimation(newLifecycle(mgr, id), id, anim))
	}
}

func (mgr *AnimationMgr) save(id string, data []byte) {
	if mgr.db == nil {
		return
	}
	if err := mgr.db.SaveAnimation(context.Background(), id, data, mgr.ttl); err != nil {
		log.Println("Redis error:", err)
	}
}

func (mgr *AnimationMgr) touch(id string) {
	if mgr.db == nil {
		return
	}
	if err := mgr.db.Touch(context.Background(), id, mgr.ttl); err != nil {
		log.Println("Redis error:", err)
	}
}

func (mgr *AnimationMgr) persist(id string) {
	if mgr.db == nil {
		return
	}
	if err := mgr.db.Persist(context.Background(), id); err != nil {
		log.Println("Redis error:", err)
	}
}

func (mgr *AnimationMgr) kill(id string) {
	log.Printf("[animation expired: %s]", id)
	mgr.animations.Delete(id)
}
