package authflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/orbit-dashboard/orbit/internal/client/api"
	"github.com/orbit-dashboard/orbit/internal/domain"
)

// Field names used for field-scoped errors. FieldForm is the banner.
const (
	FieldUsername       = "username"
	FieldPassword       = "password"
	FieldVerifyPassword = "verifypassword"
	FieldForm           = ""
)

const minPasswordLength = 7

// FieldError is an error attributed to one form field. Err is the server
// error behind it, if any.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	if e.Field == FieldForm {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error { return e.Err }

var (
	// ErrWrongStep is returned when an action does not apply to the current step.
	ErrWrongStep = errors.New("action not valid in current step")
	// ErrBadInterval is returned by AutoVerify for a non-positive interval.
	ErrBadInterval = errors.New("verify interval must be positive")
)

// Backend is the server surface the flow drives. *api.Client implements it.
type Backend interface {
	StartSignup(ctx context.Context, username string) (*api.StartSignupResponse, error)
	FinishSignup(ctx context.Context, code, password string) (*api.FinishSignupResponse, error)
	Login(ctx context.Context, username, password string) (*api.AuthResponse, error)
}

// Flow holds the login form and the signup workflow for one user. It is not
// safe for concurrent use.
type Flow struct {
	backend Backend
	mode    Mode
	step    Step
	errs    map[string]string
	loading bool
}

func New(backend Backend) *Flow {
	f := &Flow{backend: backend}
	f.reset(ModeLogin)
	return f
}

func (f *Flow) Mode() Mode    { return f.mode }
func (f *Flow) Step() Step    { return f.step }
func (f *Flow) Loading() bool { return f.loading }

// Errors returns the current field errors keyed by field name.
func (f *Flow) Errors() map[string]string {
	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// SetMode switches forms and discards every transient value of both.
func (f *Flow) SetMode(m Mode) {
	f.reset(m)
}

func (f *Flow) reset(m Mode) {
	f.mode = m
	f.step = UsernameStep{}
	f.errs = map[string]string{}
	f.loading = false
}

func (f *Flow) fail(field, msg string) error {
	f.errs[field] = msg
	return &FieldError{Field: field, Message: msg}
}

func (f *Flow) failWith(field string, err error) error {
	f.errs[field] = err.Error()
	return &FieldError{Field: field, Message: err.Error(), Err: err}
}

// SubmitUsername moves from the username step to the password step.
func (f *Flow) SubmitUsername(username string) error {
	if _, ok := f.step.(UsernameStep); !ok || f.mode != ModeSignup {
		return ErrWrongStep
	}
	f.errs = map[string]string{}
	username = strings.TrimSpace(username)
	if username == "" {
		return f.fail(FieldUsername, "Required")
	}
	f.step = PasswordStep{Username: username}
	return nil
}

// SubmitPassword checks the passwords locally, then asks the server for a
// verification code.
func (f *Flow) SubmitPassword(ctx context.Context, password, verifyPassword string) error {
	st, ok := f.step.(PasswordStep)
	if !ok {
		return ErrWrongStep
	}
	f.errs = map[string]string{}
	if password != verifyPassword {
		return f.fail(FieldVerifyPassword, "Passwords must match")
	}
	if len(password) < minPasswordLength {
		return f.fail(FieldPassword, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	f.loading = true
	res, err := f.backend.StartSignup(ctx, st.Username)
	f.loading = false
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrInvalidUsername) {
			return f.failWith(FieldUsername, err)
		}
		return f.failWith(FieldForm, err)
	}

	f.step = AwaitingVerificationStep{
		Username:  st.Username,
		Password:  password,
		Code:      res.Code,
		ExpiresAt: res.ExpiresAt,
	}
	return nil
}

// Verify asks the server to check the bio. On anything but success the step
// stays put with VerificationFailed set, and Verify may be called again.
func (f *Flow) Verify(ctx context.Context) error {
	st, ok := f.step.(AwaitingVerificationStep)
	if !ok {
		return ErrWrongStep
	}
	f.errs = map[string]string{}

	f.loading = true
	res, err := f.backend.FinishSignup(ctx, st.Code, st.Password)
	f.loading = false

	switch {
	case err != nil:
		st.VerificationFailed = true
		st.Retryable = api.Retryable(err)
		f.step = st
		return f.failWith(FieldForm, err)
	case !res.Success:
		st.VerificationFailed = true
		st.Retryable = true
		f.step = st
		return domain.ErrVerificationMismatch
	}
	f.step = CompleteStep{Auth: res.Auth}
	return nil
}

// AutoVerify re-runs Verify every interval until it succeeds, fails in a way
// that retrying cannot fix, or ctx ends.
func (f *Flow) AutoVerify(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrBadInterval, interval)
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		err := f.Verify(ctx)
		if err == nil || errors.Is(err, ErrWrongStep) {
			return err
		}
		if st, ok := f.step.(AwaitingVerificationStep); ok && !st.Retryable {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Back returns to the previous step. Leaving verification drops the code;
// submitting the password again issues a new one.
func (f *Flow) Back() {
	f.errs = map[string]string{}
	switch st := f.step.(type) {
	case PasswordStep:
		f.step = UsernameStep{}
	case AwaitingVerificationStep:
		f.step = PasswordStep{Username: st.Username}
	}
}

// Login submits the login form. Errors are attributed to the field the user
// needs to fix: unknown users to username, wrong passwords to password, and
// anything else to both.
func (f *Flow) Login(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	if f.mode != ModeLogin {
		return nil, ErrWrongStep
	}
	f.errs = map[string]string{}
	if strings.TrimSpace(username) == "" {
		f.errs[FieldUsername] = "Required"
	}
	if password == "" {
		f.errs[FieldPassword] = "Required"
	}
	if len(f.errs) > 0 {
		return nil, &FieldError{Field: FieldForm, Message: "Required fields missing"}
	}

	f.loading = true
	res, err := f.backend.Login(ctx, username, password)
	f.loading = false
	if err == nil {
		return res, nil
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil, f.failWith(FieldUsername, err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return nil, f.failWith(FieldPassword, err)
	default:
		msg := err.Error()
		if msg == "" {
			msg = "Something went wrong"
		}
		f.errs[FieldUsername] = msg
		f.errs[FieldPassword] = msg
		return nil, err
	}
}
