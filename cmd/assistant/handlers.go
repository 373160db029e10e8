package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/valkyrie8787/llm-dictionary/internal/app"
	"github.com/valkyrie8787/llm-dictionary/internal/dictionary"
	"github.com/valkyrie8787/llm-dictionary/internal/httputil"
	"github.com/valkyrie8787/llm-dictionary/internal/qa"
	"github.com/valkyrie8787/llm-dictionary/internal/speech"
)

// multipartOverhead is the room left for multipart headers and boundaries
// on top of MAX_UPLOAD_SIZE.
const multipartOverhead = 64 << 10

type questionRequest struct {
	Question       string `json:"question" validate:"required"`
	MyLanguage     string `json:"my_language" validate:"omitempty,language"`
	TargetLanguage string `json:"target_language" validate:"omitempty,language"`
}

type questionResponse struct {
	TurnID string   `json:"turn_id"`
	Phase  qa.Phase `json:"phase"`
	Answer string   `json:"answer"`
	Error  string   `json:"error,omitempty"`
	Locale string   `json:"locale"`
}

type contextRequest struct {
	Text string `json:"text"`
}

type recognitionRequest struct {
	Code speech.RecognitionCode `json:"code" validate:"required"`
}

func questionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid request body", err, http.StatusBadRequest)
			return
		}
		req.Question = strings.TrimSpace(req.Question)
		if err := httputil.Validator.Struct(req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		// Omitted languages keep the pair from the previous turn.
		my, target := deps.Coordinator.Languages()
		if req.MyLanguage != "" {
			my = req.MyLanguage
		}
		if req.TargetLanguage != "" {
			target = req.TargetLanguage
		}

		turn := deps.Coordinator.ProcessQuestion(r.Context(), req.Question, my, target)
		state, err := turn.Wait(r.Context())
		log := deps.Log.With("turn_id", turn.ID())
		switch {
		case errors.Is(err, qa.ErrSuperseded):
			httputil.Fail(log, w, "question superseded by a newer one", err, http.StatusConflict)
			return
		case errors.Is(err, qa.ErrClosed):
			httputil.Fail(log, w, "assistant is shutting down", err, http.StatusServiceUnavailable)
			return
		case err != nil:
			httputil.Fail(log, w, "question was not answered in time", err, http.StatusGatewayTimeout)
			return
		}

		status := http.StatusOK
		if state.Phase == qa.PhaseFailed {
			status = http.StatusBadGateway
		}
		httputil.WriteJSON(w, status, questionResponse{
			TurnID: state.TurnID.String(),
			Phase:  state.Phase,
			Answer: state.Answer,
			Error:  state.Error,
			Locale: speech.LocaleFor(state.MyLanguage),
		})
	}
}

func turnHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, deps.Coordinator.State())
	}
}

func answerHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"answer": deps.Coordinator.CurrentAnswer(),
		})
	}
}

func getContextHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := deps.Context.Get(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read context", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"context":     text,
			"has_context": text != "",
		})
	}
}

func setContextHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, deps.Config.MaxUploadSize)
		var req contextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid request body", err, http.StatusBadRequest)
			return
		}
		if err := deps.Context.Set(r.Context(), req.Text); err != nil {
			httputil.Fail(deps.Log, w, "failed to store context", err, http.StatusInternalServerError)
			return
		}
		deps.Log.Info("context set", "chars", len(req.Text))
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"has_context": req.Text != "",
		})
	}
}

func clearContextHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Context.Set(r.Context(), ""); err != nil {
			httputil.Fail(deps.Log, w, "failed to clear context", err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func uploadContextHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize
	allowedTypes := map[string]bool{
		"text/plain":      true,
		"application/pdf": true,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		// Bodies without a declared length are capped while being parsed.
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+multipartOverhead)

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), err, http.StatusBadRequest)
				return
			}
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			switch strings.ToLower(filepath.Ext(header.Filename)) {
			case ".txt":
				contentType = "text/plain"
			case ".pdf":
				contentType = "application/pdf"
			}
		}
		if !allowedTypes[contentType] {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF and TXT allowed)", nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		text, err := deps.Importer.ImportBytes(r.Context(), header.Filename, content)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to import context", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"filename":    header.Filename,
			"chars":       len(text),
			"has_context": text != "",
		})
	}
}

func recognitionErrorHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recognitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid request body", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		recErr := &speech.RecognitionError{Code: req.Code}
		deps.Log.Info("speech recognition failed", "code", req.Code)
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"message": recErr.Error(),
		})
	}
}

func listDictionariesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := deps.Dictionary.List()
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list dictionaries", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"dictionaries": names,
		})
	}
}

func dictionaryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		data, err := deps.Dictionary.Load(name)
		if err != nil {
			failDictionary(deps, w, name, err)
			return
		}
		httputil.WriteRawJSON(w, http.StatusOK, data)
	}
}

func dictionaryEntriesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		entries, err := deps.Dictionary.Entries(name)
		if err != nil {
			failDictionary(deps, w, name, err)
			return
		}
		httputil.WriteRawJSON(w, http.StatusOK, entries)
	}
}

func failDictionary(deps app.Deps, w http.ResponseWriter, name string, err error) {
	log := deps.Log.With("dictionary", name)
	switch {
	case errors.Is(err, dictionary.ErrNotFound):
		httputil.Fail(log, w, "dictionary not found", err, http.StatusNotFound)
	case errors.Is(err, dictionary.ErrInvalidName):
		httputil.Fail(log, w, "invalid dictionary name", err, http.StatusBadRequest)
	case errors.Is(err, dictionary.ErrNoEntries):
		httputil.Fail(log, w, "dictionary has no entries", err, http.StatusUnprocessableEntity)
	default:
		httputil.Fail(log, w, "failed to load dictionary", err, http.StatusInternalServerError)
	}
}
