package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jonathan/resource-curator/internal/pipeline"
	"github.com/jonathan/resource-curator/internal/types"
)

// AnswersRequest is the body of POST /users/{ref}/answers.
type AnswersRequest struct {
	Answers []types.OnboardingAnswer `json:"answers"`
}

// handleCreateUser registers a learner.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := s.svc.RegisterUser(r.Context(), &req)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, user)
}

// handleListUsers returns every registered learner.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListUsers(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, users)
}

// handleUpdateUser replaces a learner's name and email.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := s.svc.UpdateUser(r.Context(), r.PathValue("ref"), &req)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

// handleDeleteUser removes a learner with their answers and bundle.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.DeleteUser(r.Context(), r.PathValue("ref"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted", "user_id": user.ID.String()})
}

// handleGetUser returns a learner by UUID or email.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.ResolveUser(r.Context(), r.PathValue("ref"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

// handleSubmitAnswers stores a new onboarding answer submission.
func (s *Server) handleSubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req AnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	sub, err := s.svc.SubmitAnswers(r.Context(), r.PathValue("ref"), req.Answers)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, sub)
}

// handleGetAnswers returns the latest onboarding answer submission.
func (s *Server) handleGetAnswers(w http.ResponseWriter, r *http.Request) {
	sub, err := s.svc.LatestAnswers(r.Context(), r.PathValue("ref"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sub)
}

// handleAnswerHistory returns every submission, newest first.
func (s *Server) handleAnswerHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.svc.AnswerHistory(r.Context(), r.PathValue("ref"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, history)
}

// handleGenerate runs the pipeline and returns the bundle summary.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, r.PathValue("ref"))
}

// handleGenerateByEmail is handleGenerate keyed by email only.
func (s *Server) handleGenerateByEmail(w http.ResponseWriter, r *http.Request) {
	email, ok := s.emailParam(w, r)
	if !ok {
		return
	}
	s.generate(w, r, email)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, ref string) {
	summary, err := s.svc.Generate(r.Context(), ref)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, summary)
}

// handleGenerateStream runs the pipeline and streams progress as SSE.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")

	// Resolve before switching to SSE so lookup failures get a proper status.
	if _, err := s.svc.ResolveUser(r.Context(), ref); err != nil {
		s.handleError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	summary, err := s.svc.GenerateWithProgress(r.Context(), ref, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			s.log.Warn("failed to write SSE event", "error", err)
		}
	})
	if err != nil {
		s.log.Error("streaming generation failed", "error", err)
		sse.WriteError(err.Error(), ErrorCode(err))
		return
	}

	sse.WriteComplete(summary)
}

// handleHome returns the last persisted bundle.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.home(w, r, r.PathValue("ref"))
}

// handleHomeByEmail is handleHome keyed by email only.
func (s *Server) handleHomeByEmail(w http.ResponseWriter, r *http.Request) {
	email, ok := s.emailParam(w, r)
	if !ok {
		return
	}
	s.home(w, r, email)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request, ref string) {
	bundle, err := s.svc.Fetch(r.Context(), ref)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, bundle)
}

func (s *Server) emailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := strings.TrimSpace(r.PathValue("email"))
	if !strings.Contains(email, "@") {
		s.errorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "email is required")
		return "", false
	}
	return email, true
}
