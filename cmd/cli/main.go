package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/orbit-dashboard/orbit/internal/client/api"
	"github.com/orbit-dashboard/orbit/internal/client/authflow"
	"github.com/orbit-dashboard/orbit/internal/client/home"
	"github.com/orbit-dashboard/orbit/internal/domain"
)

type cliConfig struct {
	APIURL         string        `env:"ORBIT_API_URL" envDefault:"http://localhost:3000"`
	VerifyInterval time.Duration `env:"ORBIT_VERIFY_INTERVAL" envDefault:"5s"`
	VerifyTimeout  time.Duration `env:"ORBIT_VERIFY_TIMEOUT" envDefault:"10m"`
}

type app struct {
	cfg    cliConfig
	client *api.Client
	flow   *authflow.Flow
	in     *bufio.Reader
	out    io.Writer
}

func main() {
	_ = godotenv.Load()

	var cfg cliConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.VerifyInterval <= 0 || cfg.VerifyTimeout <= 0 {
		log.Fatalf("config: ORBIT_VERIFY_INTERVAL and ORBIT_VERIFY_TIMEOUT must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := api.New(cfg.APIURL)
	a := &app{
		cfg:    cfg,
		client: client,
		flow:   authflow.New(client),
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	if err := a.run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		log.Fatal(err)
	}
}

func (a *app) run(ctx context.Context) error {
	if oauth, err := a.client.OAuth(ctx); err == nil && oauth.Available {
		fmt.Fprintf(a.out, "OAuth sign-in: %s\n", oauth.RedirectURL)
	}

	choice, err := readLine(a.in, a.out, "Choose: [1] Log in  [2] Sign up")
	if err != nil {
		return err
	}

	var auth *api.AuthResponse
	switch choice {
	case "1":
		auth, err = a.login(ctx)
	case "2":
		auth, err = a.signup(ctx)
	default:
		return fmt.Errorf("unknown choice %q", choice)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", auth.Account.Username)
	defer func() {
		if err := a.client.Logout(context.Background()); err != nil {
			fmt.Fprintf(a.out, "logout: %v\n", err)
		}
	}()

	if len(auth.Workspaces) == 0 {
		fmt.Fprintln(a.out, "You are not a member of any workspace yet.")
		return nil
	}
	return a.showSessions(ctx, auth.Workspaces[0])
}

func (a *app) login(ctx context.Context) (*api.AuthResponse, error) {
	a.flow.SetMode(authflow.ModeLogin)
	for {
		username, err := readLine(a.in, a.out, "Username")
		if err != nil {
			return nil, err
		}
		password, err := readSecret(a.in, a.out, "Password")
		if err != nil {
			return nil, err
		}
		res, err := a.flow.Login(ctx, username, password)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.printErrors()
	}
}

func (a *app) signup(ctx context.Context) (*api.AuthResponse, error) {
	a.flow.SetMode(authflow.ModeSignup)
	for {
		switch st := a.flow.Step().(type) {
		case authflow.UsernameStep:
			username, err := readLine(a.in, a.out, "Choose your profile username")
			if err != nil {
				return nil, err
			}
			if a.flow.SubmitUsername(username) != nil {
				a.printErrors()
			}

		case authflow.PasswordStep:
			password, err := readSecret(a.in, a.out, "Password")
			if err != nil {
				return nil, err
			}
			verify, err := readSecret(a.in, a.out, "Verify password")
			if err != nil {
				return nil, err
			}
			if a.flow.SubmitPassword(ctx, password, verify) != nil {
				a.printErrors()
				if _, ok := a.flow.Errors()[authflow.FieldUsername]; ok {
					a.flow.Back()
				}
			}

		case authflow.AwaitingVerificationStep:
			fmt.Fprintln(a.out, st.Instruction())
			fmt.Fprintf(a.out, "The code expires at %s. Checking every %s...\n",
				st.ExpiresAt.Local().Format(time.Kitchen), a.cfg.VerifyInterval)
			verifyCtx, cancel := context.WithTimeout(ctx, a.cfg.VerifyTimeout)
			err := a.flow.AutoVerify(verifyCtx, a.cfg.VerifyInterval)
			cancel()
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("code not found in profile after %s", a.cfg.VerifyTimeout)
			}
			st = a.flow.Step().(authflow.AwaitingVerificationStep)
			if !st.Retryable {
				a.printErrors()
				fmt.Fprintln(a.out, "Starting over with a new code.")
				a.flow.Back()
			}

		case authflow.CompleteStep:
			return st.Auth, nil
		}
	}
}

func (a *app) showSessions(ctx context.Context, ws domain.Membership) error {
	view, err := home.NewMonitor(a.client).Load(ctx, ws.WorkspaceID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%s: active sessions\n", ws.WorkspaceName)
	if view.Empty() {
		fmt.Fprintln(a.out, "  No active sessions.")
		return nil
	}
	for _, s := range view.Preview(0) {
		fmt.Fprintf(a.out, "  %s  (%s, since %s)\n", s.Name, home.OwnerName(s), s.StartedAt.Local().Format(time.Kitchen))
	}
	if more := view.More(0); more > 0 {
		fmt.Fprintf(a.out, "  ...and %d more. View all: %s\n", more, view.ViewAllPath)
	}
	return nil
}

func (a *app) printErrors() {
	for field, msg := range a.flow.Errors() {
		if field == authflow.FieldForm {
			fmt.Fprintf(a.out, "! %s\n", msg)
			continue
		}
		fmt.Fprintf(a.out, "! %s: %s\n", field, msg)
	}
}
