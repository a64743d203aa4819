package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/razzie/fig/pkg/chessgif"
	"github.com/razzie/fig/pkg/fig"
)

// DefaultMaxUpload is the largest accepted upload in bytes.
const DefaultMaxUpload = 16 << 20

//go:embed assets/*.html
var assets embed.FS

type Server struct {
	http.ServeMux
	mgr       *AnimationMgr
	maxUpload int64
	templates *template.Template
}

func NewServer(mgr *AnimationMgr, maxUpload int64) *Server {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	srv := &Server{
		mgr:       mgr,
		maxUpload: maxUpload,
		templates: template.Must(template.ParseFS(assets, "assets/*.html")),
	}

	srv.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > 1 {
			http.NotFound(w, r)
			return
		}
		srv.templates.ExecuteTemplate(w, "index.html", nil)
	})

	srv.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, srv.maxUpload)
		data, isForm, err := readUpload(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, err := srv.mgr.Create(data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if isForm {
			http.Redirect(w, r, "/view/"+id, http.StatusSeeOther)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, id)
	})

	srv.HandleFunc("/chess", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		game, err := gameFromForm(r.Form)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, err := srv.createChessAnimation(game)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/view/"+id, http.StatusSeeOther)
	})

	srv.HandleFunc("/view/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[6:]
		info, err := srv.mgr.Info(id)
		if err != nil {
			http.Error(w, "Animation not found", http.StatusNotFound)
			return
		}
		srv.templates.ExecuteTemplate(w, "view.html", info)
	})

	srv.HandleFunc("/gif/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[5:]
		if _, ok := srv.mgr.Get(id); !ok {
			http.Error(w, "Animation not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename="+id+".gif")
		w.Header().Set("Content-Type", "image/gif")
		if err := srv.mgr.WriteGIF(w, id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	srv.HandleFunc("/frame/", func(w http.ResponseWriter, r *http.Request) {
		id, indexStr, _ := strings.Cut(r.URL.Path[7:], "/")
		index, err := strconv.Atoi(indexStr)
		if err != nil {
			http.Error(w, "Invalid frame index", http.StatusBadRequest)
			return
		}
		scale := 1
		if s := r.URL.Query().Get("scale"); len(s) > 0 {
			scale, err = strconv.Atoi(s)
			if err != nil || scale < 1 || scale > 16 {
				http.Error(w, "Invalid scale", http.StatusBadRequest)
				return
			}
		}
		var buf bytes.Buffer
		switch err := srv.mgr.WriteFrame(&buf, id, index, scale); {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Animation not found", http.StatusNotFound)
		case errors.Is(err, fig.ErrIndexOutOfRange):
			http.Error(w, "Frame not found", http.StatusNotFound)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			w.Header().Set("Content-Type", "image/png")
			buf.WriteTo(w)
		}
	})

	srv.HandleFunc("/ws/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[4:]
		srv.mgr.ServeRPC(w, r, id)
	})

	return srv
}

// readUpload returns the GIF stream of a request, either from the "file"
// field of a multipart form or from the raw body.
func readUpload(r *http.Request) (data []byte, isForm bool, err error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, true, err
		}
		defer file.Close()
		data, err = io.ReadAll(file)
		return data, true, err
	}
	data, err = io.ReadAll(r.Body)
	if err == nil && len(data) == 0 {
		err = errors.New("empty upload")
	}
	return data, false, err
}

func (srv *Server) createChessAnimation(game string) (string, error) {
	g, err := chessgif.ParseGame(game)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := chessgif.WriteGIF(&buf, g); err != nil {
		return "", err
	}
	return srv.mgr.Create(buf.Bytes())
}

func gameFromForm(form url.Values) (string, error) {
	for _, gameType := range []string{"fen", "pgn"} {
		if form.Has(gameType) {
			return gameType + ":" + form.Get(gameType), nil
		}
	}
	return "", fmt.Errorf("invalid form")
}
