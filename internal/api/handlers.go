// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/internal/common/google"
	"vc-assistant/internal/models"
	assistantchat "vc-assistant/internal/workers/ai-conversation/assistant-chat"
	preparecall "vc-assistant/internal/workers/calendar/prepare-call"
	synccalendar "vc-assistant/internal/workers/calendar/sync-calendar"
	draftpassemail "vc-assistant/internal/workers/deals/draft-pass-email"
	searchdeals "vc-assistant/internal/workers/deals/search-deals"
	analyzedeck "vc-assistant/internal/workers/documents/analyze-deck"
	syncinbox "vc-assistant/internal/workers/inbox/sync-inbox"

	"github.com/go-chi/chi/v5"
)

const (
	maxUploadBytes = 32 << 20

	// Stands in for extracted PDF text until a parser is wired.
	extractedTextPlaceholder = "PDF text extraction would go here."

	msgInvalidMessages = "Invalid messages format"
)

// decode reads a JSON body. An empty body decodes to the zero value.
func decode(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// POST /api/chat
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, msgInvalidMessages)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, msgInvalidMessages)
		return
	}

	input := &assistantchat.Input{DealID: req.DealID, UserID: req.UserID}
	for _, m := range req.Messages {
		input.Messages = append(input.Messages, assistantchat.Message{Role: m.Role, Content: m.Content})
	}

	out, err := s.services.Chat.Execute(r.Context(), input)
	if err != nil {
		stdErr := assistantchat.ToStandardError(err)
		if apperrors.IsClientError(apperrors.Normalize(stdErr).Code) {
			s.respondError(w, http.StatusBadRequest, msgInvalidMessages)
			return
		}
		s.fail(w, r, stdErr, "Failed to process chat message")
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

// POST /api/gmail/sync
func (s *Server) syncGmail(w http.ResponseWriter, r *http.Request) {
	var req gmailSyncRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := s.services.Inbox.Execute(r.Context(), &syncinbox.Input{
		Tokens:     req.tokens(),
		Query:      req.Query,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		s.fail(w, r, syncinbox.ToStandardError(err), "Failed to sync emails")
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

// POST /api/calendar/sync
func (s *Server) syncCalendar(w http.ResponseWriter, r *http.Request) {
	var req calendarSyncRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := s.services.Calendar.Execute(r.Context(), &synccalendar.Input{
		Tokens:    google.Tokens{AccessToken: req.AccessToken, RefreshToken: req.RefreshToken},
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		s.fail(w, r, synccalendar.ToStandardError(err), "Failed to sync calendar")
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

// POST /api/documents/upload (multipart: file, dealId, autoAnalyze)
func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	dealID := r.FormValue("dealId")
	if dealID == "" {
		s.respondError(w, http.StatusBadRequest, "No deal ID provided")
		return
	}

	doc := &models.Document{
		DealID:    &dealID,
		Name:      header.Filename,
		Type:      models.DocumentTypeDeck,
		URL:       "/uploads/" + header.Filename,
		SizeBytes: header.Size,
		MimeType:  header.Header.Get("Content-Type"),
	}
	if err := s.services.Documents.Create(r.Context(), doc); err != nil {
		s.fail(w, r, apperrors.NewDatabaseInsertFailedError(err), "Failed to upload document")
		return
	}

	var analysis *models.DeckAnalysis
	if r.FormValue("autoAnalyze") == "true" {
		analysis, err = s.services.Decks.Analyze(r.Context(), doc.ID, extractedTextPlaceholder)
		if err != nil {
			s.fail(w, r, analyzedeck.ToStandardError(err, doc.ID), "Failed to upload document")
			return
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"documentId": doc.ID,
		"analysis":   analysis,
	})
}

// POST /api/documents/analyze
func (s *Server) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(r, &req); err != nil || s.validate.Struct(req) != nil {
		s.respondError(w, http.StatusBadRequest, "No document ID provided")
		return
	}

	out, err := s.services.Decks.Execute(r.Context(), &analyzedeck.Input{DocumentID: req.DocumentID})
	if err != nil {
		s.fail(w, r, analyzedeck.ToStandardError(err, req.DocumentID), "Failed to analyze document")
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

// POST /api/deals/{dealID}/pass-email
func (s *Server) draftPassEmail(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealID")

	var req passEmailRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := s.services.PassEmails.Execute(r.Context(), &draftpassemail.Input{
		DealID:      dealID,
		Reason:      req.Reason,
		DetailLevel: req.DetailLevel,
		Send:        req.Send,
		To:          req.To,
	})
	if err != nil {
		s.fail(w, r, draftpassemail.ToStandardError(err, dealID), "Failed to draft pass email")
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

// GET /api/deals/search?q=&stage=&sector=&priority=&status=&limit=
func (s *Server) searchDeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := &searchdeals.Input{
		Query:  q.Get("q"),
		Stage:  q.Get("stage"),
		Sector: q.Get("sector"),
		Status: q.Get("status"),
	}

	var err error
	if input.Priority, err = intParam(q.Get("priority")); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid priority")
		return
	}
	if input.Limit, err = intParam(q.Get("limit")); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	out, err := s.services.Search.Execute(r.Context(), input)
	if err != nil {
		s.fail(w, r, searchdeals.ToStandardError(err), "Failed to search deals")
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

// GET /api/meetings/{meetingID}/prep
func (s *Server) prepareCall(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingID")

	out, err := s.services.CallPrep.Execute(r.Context(), &preparecall.Input{MeetingID: meetingID})
	if err != nil {
		s.fail(w, r, preparecall.ToStandardError(err, meetingID), "Failed to prepare call")
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
