package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"inkwell/app/middleware"
	"inkwell/app/repositories"
	"inkwell/app/services"
	"inkwell/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// base holds the response helpers shared by every controller.
type base struct {
	views *views.Renderer
	log   *zap.Logger
}

func newBase(renderer *views.Renderer, log *zap.Logger) base {
	if log == nil {
		log = zap.NewNop()
	}
	return base{views: renderer, log: log}
}

// render writes an HTML page for the current actor.
func (b *base) render(w http.ResponseWriter, r *http.Request, name string, page *views.Page, status int) {
	page.Actor = middleware.GetActor(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf strings.Builder
	if err := b.views.Render(&buf, name, page); err != nil {
		b.serverError(w, r, err)
		return
	}
	w.WriteHeader(status)
	w.Write([]byte(buf.String()))
}

func (b *base) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.log.Warn("failed to encode response", zap.Error(err))
	}
}

// sendStatus answers with a short message as JSON or as an error page.
func (b *base) sendStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	if middleware.WantsJSON(r) {
		b.sendJSON(w, status, map[string]string{"error": message})
		return
	}
	b.render(w, r, views.Error, &views.Page{Title: http.StatusText(status), Message: message}, status)
}

// sendError maps a service error to a response.
func (b *base) sendError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		b.sendStatus(w, r, http.StatusNotFound, "The page you asked for does not exist.")
	case errors.As(err, &verr):
		b.sendJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	default:
		b.serverError(w, r, err)
	}
}

// formError re-displays a form with field messages. API clients and
// non-validation failures get the usual error mapping.
func (b *base) formError(w http.ResponseWriter, r *http.Request, err error, name string, page *views.Page) {
	var verr *services.ValidationError
	if !errors.As(err, &verr) || middleware.WantsJSON(r) {
		b.sendError(w, r, err)
		return
	}
	page.Errors = verr.Fields
	b.render(w, r, name, page, http.StatusOK)
}

func (b *base) serverError(w http.ResponseWriter, r *http.Request, err error) {
	b.log.Error("request failed",
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetRequestID(r.Context())))
	if middleware.WantsJSON(r) {
		b.sendJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// pathID reads the numeric {id} route variable.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, repositories.ErrNotFound
	}
	return id, nil
}

// decode fills dst from a JSON body or, for HTML forms, from form values
// keyed by each field's json name.
func decode(r *http.Request, dst interface{}, fields map[string]*string) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
		if err := dec.Decode(dst); err != nil {
			return err
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	for name, ptr := range fields {
		*ptr = r.PostFormValue(name)
	}
	return nil
}

func postURL(id int) string {
	return "/posts/" + strconv.Itoa(id)
}
