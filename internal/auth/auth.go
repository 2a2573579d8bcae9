// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// Package auth implements the login gate in front of the shell.
//
// The gate moves through Prompting -> Verifying -> Granted, or back to
// Prompting via Denied, until the attempt budget is spent and it locks out.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/toeirei/dbterm/i18n"
	"github.com/toeirei/dbterm/internal/console"
	"github.com/toeirei/dbterm/internal/logging"
	"github.com/toeirei/dbterm/internal/model"
	"github.com/toeirei/dbterm/internal/render"
	"github.com/toeirei/dbterm/internal/session"
)

// ErrLockout is returned when every login attempt failed.
var ErrLockout = errors.New("maximum login attempts exceeded")

// DefaultMaxAttempts is the attempt budget when none is configured.
const DefaultMaxAttempts = 3

// State is a step of the login state machine.
type State int

const (
	StatePrompting State = iota
	StateVerifying
	StateGranted
	StateDenied
	StateLockout
)

func (s State) String() string {
	switch s {
	case StatePrompting:
		return "prompting"
	case StateVerifying:
		return "verifying"
	case StateGranted:
		return "granted"
	case StateDenied:
		return "denied"
	case StateLockout:
		return "lockout"
	default:
		return "unknown"
	}
}

// CredentialFinder looks up users by exact username and password.
type CredentialFinder interface {
	FindUsersByCredentials(ctx context.Context, username, password string) ([]model.User, error)
}

// Config tunes the gate.
type Config struct {
	MaxAttempts int
	// LoginDelay is the pause after a successful login.
	LoginDelay time.Duration
}

// Gate authenticates one operator.
type Gate struct {
	store CredentialFinder
	in    console.Reader
	out   *render.Printer
	cfg   Config

	state    State
	attempts int

	now   func() time.Time
	sleep func(context.Context, time.Duration)
}

// NewGate returns a gate reading credentials from in and reporting to out.
func NewGate(store CredentialFinder, in console.Reader, out *render.Printer, cfg Config) *Gate {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Gate{
		store: store,
		in:    in,
		out:   out,
		cfg:   cfg,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// State returns the current state.
func (g *Gate) State() State { return g.state }

// Attempts returns the number of failed attempts so far.
func (g *Gate) Attempts() int { return g.attempts }

// Authenticate runs the login dialogue. It returns the new session on
// success, ErrLockout once every attempt failed, or the input error when the
// operator's input ends.
func (g *Gate) Authenticate(ctx context.Context) (*session.Session, error) {
	g.attempts = 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		g.setState(StatePrompting)
		username, err := g.in.ReadLine(i18n.T("login.username"))
		if err != nil {
			return nil, err
		}
		password, err := g.in.ReadPassword(i18n.T("login.password"))
		if err != nil {
			return nil, err
		}

		g.setState(StateVerifying)
		username = strings.TrimSpace(username)
		users, err := g.store.FindUsersByCredentials(ctx, username, strings.TrimSpace(password))
		if err != nil {
			logging.Warnf("auth: credential lookup failed: %v", err)
		}

		if err == nil && len(users) == 1 {
			g.setState(StateGranted)
			sess := session.New(users[0], g.now())
			logging.With("session", sess.ID.String()).Info("login", "user", sess.User.Username, "admin", sess.IsAdmin)
			g.out.Blank()
			g.out.Success(i18n.T("login.success", sess.User.Username))
			g.sleep(ctx, g.cfg.LoginDelay)
			return sess, nil
		}

		g.setState(StateDenied)
		g.attempts++
		logging.Infof("auth: failed login for %q (%d/%d)", username, g.attempts, g.cfg.MaxAttempts)
		g.out.Error(i18n.T("login.failed", g.cfg.MaxAttempts-g.attempts))
		g.out.Blank()

		if g.attempts >= g.cfg.MaxAttempts {
			g.setState(StateLockout)
			g.out.Error(i18n.T("login.lockout"))
			return nil, ErrLockout
		}
	}
}

func (g *Gate) setState(s State) {
	logging.Debugf("auth: %s -> %s", g.state, s)
	g.state = s
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
