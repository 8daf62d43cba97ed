package inspect

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/mirror/internal/mirror"
	"github.com/roach88/mirror/internal/quicklook"
)

// Response is the JSON envelope for every HTTP reply.
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Handler returns the HTTP surface of the inspector.
//
//	GET  /health
//	GET  /values
//	GET  /reflect/{ref}?depth=N
//	GET  /descendant/{ref}
//	GET  /ancestors/{ref}
//	GET  /quicklook/{ref}
//	GET  /dump/{ref}?max_depth=N&max_items=N   (text/plain)
//	POST /snapshots/{ref}?depth=N
//	GET  /snapshots/{ref}
//
// {ref} is a slash-form reference; an empty ref names the root value.
func (in *Inspector) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(in.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"world": in.world.Name})
	})
	r.Get("/values", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, in.Values())
	})
	r.Get("/reflect/*", in.handleReflect)
	r.Get("/descendant/*", func(w http.ResponseWriter, r *http.Request) {
		found, err := in.Descend(refParam(r))
		reply(w, found, err)
	})
	r.Get("/ancestors/*", func(w http.ResponseWriter, r *http.Request) {
		chain, err := in.Ancestors(refParam(r))
		reply(w, chain, err)
	})
	r.Get("/quicklook/*", in.handleQuickLook)
	r.Get("/dump/*", in.handleDump)
	r.Post("/snapshots/*", in.handleRecord)
	r.Get("/snapshots/*", func(w http.ResponseWriter, r *http.Request) {
		history, err := in.History(r.Context(), refParam(r))
		reply(w, history, err)
	})
	return r
}

func (in *Inspector) handleReflect(w http.ResponseWriter, r *http.Request) {
	depth, err := intQuery(r, "depth", DefaultDepth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	node, err := in.Reflect(refParam(r), depth)
	reply(w, node, err)
}

func (in *Inspector) handleQuickLook(w http.ResponseWriter, r *http.Request) {
	ql, err := in.QuickLook(refParam(r))
	if err != nil || ql == nil {
		reply(w, nil, err)
		return
	}
	data, err := quicklook.Marshal(ql)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, json.RawMessage(data))
}

func (in *Inspector) handleDump(w http.ResponseWriter, r *http.Request) {
	var opts []mirror.DumpOption
	for _, q := range []struct {
		name string
		opt  func(int) mirror.DumpOption
	}{
		{"max_depth", mirror.WithMaxDepth},
		{"max_items", mirror.WithMaxItems},
	} {
		if r.URL.Query().Has(q.name) {
			n, err := intQuery(r, q.name, 0)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			opts = append(opts, q.opt(n))
		}
	}
	var buf bytes.Buffer
	if err := in.Dump(&buf, refParam(r), opts...); err != nil {
		reply(w, nil, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (in *Inspector) handleRecord(w http.ResponseWriter, r *http.Request) {
	depth, err := intQuery(r, "depth", DefaultDepth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := in.Record(r.Context(), refParam(r), depth)
	if err != nil {
		reply(w, nil, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// logRequests logs one line per request with the chi request id.
func (in *Inspector) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		in.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

func refParam(r *http.Request) string {
	return chi.URLParam(r, "*")
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(name + ": not an integer")
	}
	return n, nil
}

func reply(w http.ResponseWriter, data any, err error) {
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRef):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownValue), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoStore):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Status: "ok", Data: data})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Status: "error", Error: err.Error()})
}
