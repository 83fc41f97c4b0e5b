package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.rootHandler)
	r.Get("/health", s.healthHandler)

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", s.listTodosHandler)
		r.Post("/", s.createTodoHandler)
		r.Get("/{id}", s.getTodoHandler)
		r.Put("/{id}", s.updateTodoHandler)
		r.Patch("/{id}", s.updateTodoHandler)
		r.Delete("/{id}", s.deleteTodoHandler)
		r.Patch("/{id}/complete", s.completeHandler(true))
		r.Patch("/{id}/incomplete", s.completeHandler(false))
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start))
	})
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"name": "Todo API", "version": "1.0.0"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "err", err)
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	var f store.Filter
	if v := r.URL.Query().Get("is_complete"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "is_complete must be a boolean")
			return
		}
		f.Complete = &b
	}

	todos, err := s.store.List(r.Context(), f)
	if err != nil {
		s.logger.Error("list todos", "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve todos")
		return
	}
	respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTodoData
	if status, msg, ok := decodeBody(r, &req); !ok {
		respondWithError(w, status, msg)
		return
	}
	if msg := validateTitle(req.Title); msg != "" {
		respondWithError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if msg := validateDescription(req.Description); msg != "" {
		respondWithError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	todo, err := s.store.Create(r.Context(), req)
	if err != nil {
		s.logger.Error("create todo", "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create todo")
		return
	}
	respondWithJSON(w, http.StatusCreated, todo)
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	todo, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, "get todo", id, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

// updateTodoHandler serves both PUT and PATCH: only provided fields change.
func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req model.UpdateTodoData
	if status, msg, ok := decodeBody(r, &req); !ok {
		respondWithError(w, status, msg)
		return
	}
	if req.Title != nil {
		if msg := validateTitle(*req.Title); msg != "" {
			respondWithError(w, http.StatusUnprocessableEntity, msg)
			return
		}
		req.Title = model.Ptr(strings.TrimSpace(*req.Title))
	}
	if msg := validateDescription(req.Description); msg != "" {
		respondWithError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	todo, err := s.store.Update(r.Context(), id, req)
	if err != nil {
		s.storeError(w, "update todo", id, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) completeHandler(complete bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		todo, err := s.store.SetComplete(r.Context(), id, complete)
		if err != nil {
			s.storeError(w, "set complete", id, err)
			return
		}
		respondWithJSON(w, http.StatusOK, todo)
	}
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.storeError(w, "delete todo", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storeError(w http.ResponseWriter, op string, id int64, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Todo with ID %d not found", id))
		return
	}
	s.logger.Error(op, "id", id, "err", err)
	respondWithError(w, http.StatusInternalServerError, "Internal server error")
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid todo ID provided")
		return 0, false
	}
	return id, true
}

// decodeBody returns a status and message when the body cannot be used.
func decodeBody(r *http.Request, dst any) (int, string, bool) {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return 0, "", true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	switch {
	case errors.Is(err, model.ErrInvalidPriority):
		return http.StatusUnprocessableEntity, err.Error(), false
	case errors.As(err, &syntaxError):
		return http.StatusBadRequest, fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset), false
	case errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "Request body contains badly-formed JSON", false
	case errors.As(err, &unmarshalTypeError):
		return http.StatusUnprocessableEntity, fmt.Sprintf("Request body contains an invalid value for the %q field", unmarshalTypeError.Field), false
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return http.StatusUnprocessableEntity, "Request body contains unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field "), false
	case errors.Is(err, io.EOF):
		return http.StatusUnprocessableEntity, "Request body must not be empty", false
	}
	return http.StatusBadRequest, "Invalid request body", false
}

func validateTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "title cannot be empty"
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Sprintf("title must be at most %d characters", maxTitleLen)
	}
	return ""
}

func validateDescription(desc *string) string {
	if desc != nil && utf8.RuneCountInString(*desc) > maxDescriptionLen {
		return fmt.Sprintf("description must be at most %d characters", maxDescriptionLen)
	}
	return ""
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"detail": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
