package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/media-workflow/internal/ingestion"
	"github.com/jonathan/media-workflow/internal/report"
	"github.com/jonathan/media-workflow/internal/tracker"
	"github.com/jonathan/media-workflow/internal/types"
)

// AnalyzeRequest is the body of POST /analyze. URL, when set, is fetched instead of RawText.
type AnalyzeRequest struct {
	RawText string `json:"rawText"`
	URL     string `json:"url,omitempty"`
}

// AnalyzeResponse carries the suggestion and the raw text to send back on create
type AnalyzeResponse struct {
	Suggestion types.Suggestion    `json:"suggestion"`
	RawText    string              `json:"rawText"`
	Source     *ingestion.Metadata `json:"source,omitempty"`
}

// ItemResponse answers every command addressed to one item.
// Found is false when no item has the id. Advisory is set when the change was applied
// but could not be saved.
type ItemResponse struct {
	Item     *types.WorkItem `json:"item,omitempty"`
	Found    bool            `json:"found"`
	Advisory string          `json:"advisory,omitempty"`
}

// ListResponse is the body of GET /items
type ListResponse struct {
	Stage types.Stage      `json:"stage"`
	Count int              `json:"count"`
	Items []types.WorkItem `json:"items"`
}

// TransitionRequest is the body of POST /items/{id}/transition
type TransitionRequest struct {
	Stage string `json:"stage"`
}

// ToggleFormatRequest is the body of POST /items/{id}/formats/toggle
type ToggleFormatRequest struct {
	Label string `json:"label"`
}

// handleAnalyze runs the analysis gateway. It answers 200 with a fallback suggestion
// whenever the LLM cannot be used.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	// RawText is echoed verbatim for create; only the cleaned text is analyzed
	resp := AnalyzeResponse{RawText: req.RawText}
	text := ingestion.PrepareRawText(req.RawText)
	if url := strings.TrimSpace(req.URL); url != "" {
		src, err := ingestion.FromURL(r.Context(), url, s.fetchOpts)
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		resp.RawText, resp.Source, text = src.Raw, src.Metadata, src.Text
	}

	resp.Suggestion = s.gateway.Analyze(r.Context(), text)
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	stage, ok := tracker.ParseFilter(r.URL.Query().Get("stage"))
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", r.URL.Query().Get("stage")))
		return
	}
	items := s.tracker.ListByStage(stage)
	s.jsonResponse(w, http.StatusOK, ListResponse{Stage: stage, Count: len(items), Items: items})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, found := s.tracker.Get(r.PathValue("id"))
	s.commandResponse(w, http.StatusOK, tracker.Result{Item: item, Found: found}, nil)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req types.CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	item, err := s.tracker.Create(r.Context(), req)
	s.commandResponse(w, http.StatusCreated, tracker.Result{Item: item, Found: true}, err)
}

func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request) {
	var patch types.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	result, err := s.tracker.Edit(r.Context(), r.PathValue("id"), patch)
	s.commandResponse(w, http.StatusOK, result, err)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	result, err := s.tracker.Transition(r.Context(), r.PathValue("id"), req.Stage)
	s.commandResponse(w, http.StatusOK, result, err)
}

func (s *Server) handleToggleFormat(w http.ResponseWriter, r *http.Request) {
	var req ToggleFormatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	result, err := s.tracker.ToggleFormat(r.Context(), r.PathValue("id"), req.Label)
	s.commandResponse(w, http.StatusOK, result, err)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	found, err := s.tracker.Remove(r.Context(), r.PathValue("id"))
	if err != nil && !tracker.IsAdvisory(err) {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	resp := ItemResponse{Found: found}
	if err != nil {
		resp.Advisory = err.Error()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"columns": s.tracker.Board()})
}

// handleExport streams the report as an attachment
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	stage, ok := tracker.ParseFilter(r.URL.Query().Get("stage"))
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", r.URL.Query().Get("stage")))
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, report.Rows(s.tracker.Snapshot(), stage)); err != nil {
		s.logger.Error("failed to write report", "format", format, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to write report")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(string(format), s.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// commandResponse writes the outcome of a tracker command.
// A persist failure is advisory: the change is reported with status and an advisory message.
func (s *Server) commandResponse(w http.ResponseWriter, status int, result tracker.Result, err error) {
	if err != nil && !tracker.IsAdvisory(err) {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if !result.Found {
		s.jsonResponse(w, http.StatusOK, ItemResponse{Found: false})
		return
	}
	resp := ItemResponse{Item: &result.Item, Found: true}
	if err != nil {
		resp.Advisory = err.Error()
	}
	s.jsonResponse(w, status, resp)
}
