package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orbit-dashboard/orbit/internal/application/signup"
	"github.com/orbit-dashboard/orbit/internal/domain"
)

// SignupHandler handles the two-call signup: start issues a code, finish
// checks it against the external profile.
type SignupHandler struct {
	svc signup.Service
}

func NewSignupHandler(svc signup.Service) *SignupHandler {
	return &SignupHandler{svc: svc}
}

func (h *SignupHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req domain.StartSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	res, err := h.svc.StartSignup(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StartSignupEnvelope{Code: res.Code, ExpiresAt: res.ExpiresAt})
}

// Finish answers a bio mismatch with 200 {success:false}: the user is
// expected to fix their bio and call again with the same code.
func (h *SignupHandler) Finish(w http.ResponseWriter, r *http.Request) {
	var req domain.FinishSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	res, err := h.svc.FinishSignup(r.Context(), req)
	if errors.Is(err, domain.ErrVerificationMismatch) {
		writeJSON(w, http.StatusOK, MismatchEnvelope{
			Success: false,
			Error:   kindMessage[domain.KindVerificationMismatch],
			Kind:    domain.KindVerificationMismatch,
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	env := authEnvelope(res)
	success := true
	env.Success = &success
	writeJSON(w, http.StatusOK, env)
}
