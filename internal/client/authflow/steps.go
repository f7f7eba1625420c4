package authflow

import (
	"time"

	"github.com/orbit-dashboard/orbit/internal/client/api"
)

// Mode selects which form is active.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "signup"
	}
	return "login"
}

// Step is one state of the signup workflow. Each step carries only the data
// that exists at that point.
type Step interface {
	step()
}

// UsernameStep is the initial step.
type UsernameStep struct{}

// PasswordStep holds the username chosen in the previous step.
type PasswordStep struct {
	Username string
}

// AwaitingVerificationStep waits for the user to put Code in their profile
// bio. VerificationFailed is set after a check that did not succeed; the same
// code can be checked again.
type AwaitingVerificationStep struct {
	Username           string
	Password           string
	Code               string
	ExpiresAt          time.Time
	VerificationFailed bool
	Retryable          bool
}

// Instruction is the text shown next to the code.
func (s AwaitingVerificationStep) Instruction() string {
	return "Add " + s.Code + " to your profile description, then choose Verify."
}

// CompleteStep holds the session established by a successful signup.
type CompleteStep struct {
	Auth *api.AuthResponse
}

func (UsernameStep) step()             {}
func (PasswordStep) step()             {}
func (AwaitingVerificationStep) step() {}
func (CompleteStep) step()             {}
