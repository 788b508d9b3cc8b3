/*
Package web exposes the sprite toolbar actions over HTTP.
*/
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"image/color"
	"image/png"
	"log"
	"net/http"
	"strconv"

	"github.com/bodgit/sprited/jres"
	"github.com/bodgit/sprited/literal"
	"github.com/bodgit/sprited/transform"
	"github.com/gorilla/mux"
	"github.com/nfnt/resize"
)

const maxScale = 32

// Sprite is the sprite being edited.
type Sprite interface {
	Transform(context.Context, transform.Op) error
	Record(context.Context) (*jres.Image, error)
	Literal(context.Context, literal.Format) (string, error)
}

// Handler serves the HTTP API.
type Handler struct {
	sprite  Sprite
	palette color.Palette
	logger  *log.Logger
	router  *mux.Router
}

// NewHandler constructs the web handler for s. If editor is not nil it is
// mounted at /editor.
func NewHandler(s Sprite, editor http.Handler, p color.Palette, logger *log.Logger) *Handler {
	h := &Handler{
		sprite:  s,
		palette: p,
		logger:  logger,
		router:  mux.NewRouter(),
	}

	if editor != nil {
		h.router.Handle("/editor", editor)
	}
	h.router.HandleFunc("/transform/{op}", h.transformHandler).Methods(http.MethodPost)
	h.router.HandleFunc("/literal", h.literalHandler).Methods(http.MethodGet)
	h.router.HandleFunc("/sprite.json", h.spriteHandler).Methods(http.MethodGet)
	h.router.HandleFunc("/preview.png", h.previewHandler).Methods(http.MethodGet)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) transformHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	op, err := transform.Parse(vars["op"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := h.sprite.Transform(r.Context(), op); err != nil {
		h.logger.Printf("Transform %s failed: %v\n", op, err)
		http.Error(w, "transform failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) literalHandler(w http.ResponseWriter, r *http.Request) {
	f, err := literal.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := h.sprite.Literal(r.Context(), f)
	if err != nil {
		h.logger.Printf("Literal failed: %v\n", err)
		http.Error(w, "sprite unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, s)
}

func (h *Handler) spriteHandler(w http.ResponseWriter, r *http.Request) {
	item, err := h.sprite.Record(r.Context())
	if err != nil {
		h.logger.Printf("Record failed: %v\n", err)
		http.Error(w, "sprite unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(item)
}

func (h *Handler) previewHandler(w http.ResponseWriter, r *http.Request) {
	scale := 1
	if s := r.URL.Query().Get("scale"); s != "" {
		var err error
		if scale, err = strconv.Atoi(s); err != nil || scale < 1 || scale > maxScale {
			http.Error(w, fmt.Sprintf("scale must be 1-%d", maxScale), http.StatusBadRequest)
			return
		}
	}

	item, err := h.sprite.Record(r.Context())
	if err != nil {
		h.logger.Printf("Record failed: %v\n", err)
		http.Error(w, "sprite unavailable", http.StatusInternalServerError)
		return
	}

	generation := 1 // bump if the way we generate it changes
	etag := fmt.Sprintf(`W/"sprite:%d:%08x:%d"`, generation, crc32.ChecksumIEEE([]byte(item.Data)), scale)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	b, err := item.Bitmap()
	if err != nil {
		http.Error(w, "bad sprite", http.StatusInternalServerError)
		return
	}

	m := b.Image(h.palette)
	img := resize.Resize(uint(b.Width()*scale), uint(b.Height()*scale), m, resize.NearestNeighbor)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
	png.Encode(w, img)
}
