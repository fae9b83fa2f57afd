package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mro/pkg/diag"
	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/io"
	"github.com/matzehuels/mro/pkg/pipeline"
	"github.com/matzehuels/mro/pkg/render"
	"github.com/matzehuels/mro/pkg/resolve"
	"github.com/matzehuels/mro/pkg/session"
)

type createResponse struct {
	ID        string    `json:"id"`
	Classes   int       `json:"classes"`
	Hash      string    `json:"hash"`
	Failed    []string  `json:"failed"`
	CacheHit  bool      `json:"cache_hit"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Classes   []string  `json:"classes"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type mroResponse struct {
	Class      string   `json:"class"`
	MRO        []string `json:"mro"`
	DepthFirst []string `json:"depth_first,omitempty"`
}

type definersResponse struct {
	Class    string               `json:"class"`
	Member   string               `json:"member"`
	Definers []resolve.Resolution `json:"definers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decls, err := io.ReadDecls(body, io.FormatJSON)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{Decls: decls})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Set(r.Context(), res.Session); err != nil {
		res.Session.Close()
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		ID:        res.Session.ID(),
		Classes:   res.Session.Graph().Len(),
		Hash:      res.Session.Graph().Hash(),
		Failed:    res.Results.Failed(),
		CacheHit:  res.CacheHit,
		ExpiresAt: res.Session.ExpiresAt(),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	g := sess.Graph()
	classes := make([]string, 0, g.Len())
	for _, id := range g.AllClasses() {
		classes = append(classes, string(id))
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:        sess.ID(),
		Classes:   classes,
		Hash:      g.Hash(),
		CreatedAt: sess.CreatedAt(),
		ExpiresAt: sess.ExpiresAt(),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMRO(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	class := hierarchy.ClassID(chi.URLParam(r, "class"))

	lin, err := sess.Linearize(r.Context(), class)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := mroResponse{Class: string(class), MRO: lin.Strings()}
	if r.URL.Query().Get("compare") == "true" {
		naive, err := sess.DepthFirst(class)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.DepthFirst = naive.Strings()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	class := hierarchy.ClassID(chi.URLParam(r, "class"))
	member := chi.URLParam(r, "member")

	if r.URL.Query().Get("all") == "true" {
		chain, err := sess.Definers(r.Context(), class, member)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, definersResponse{Class: string(class), Member: member, Definers: chain})
		return
	}

	res, err := sess.Resolve(r.Context(), class, member)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSuper(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.Super(r.Context(),
		hierarchy.ClassID(chi.URLParam(r, "class")),
		hierarchy.ClassID(chi.URLParam(r, "after")),
		chi.URLParam(r, "member"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	opts := render.Options{Tables: sess.Tables()}
	if focus := r.URL.Query().Get("focus"); focus != "" {
		opts.Focus = hierarchy.ClassID(focus)
		lin, err := sess.Linearize(r.Context(), opts.Focus)
		if err != nil {
			rep := diag.Explain(err)
			if rep.Code != errs.ErrCodeInconsistentHierarchy {
				s.writeError(w, err)
				return
			}
			opts.Highlight = rep.Conflicts
		}
		opts.Linearization = lin
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(render.ToDOT(sess.Graph().Decls(), opts)))
}

// session loads the session named in the URL or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	if sess == nil {
		s.writeError(w, errs.New(errs.ErrCodeNotFound, "session %s not found", id))
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
