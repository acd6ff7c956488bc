package auth

import (
	"context"
	"strings"
	"time"
)

// SignIn validates the form and signs the user in.
func SignIn(ctx context.Context, svc Service, form LoginForm) (Session, error) {
	if err := form.Validate(); err != nil {
		return Session{}, err
	}
	return svc.SignIn(ctx, strings.TrimSpace(form.Email), form.Password)
}

// Register creates the account and then writes the producer profile.
//
// A failed profile write does not remove the account that was just
// created. The session is returned alongside the error so the caller can
// record the orphaned user id.
func Register(ctx context.Context, svc Service, form RegistrationForm, minPassword int, now time.Time) (Session, error) {
	if err := form.Validate(minPassword); err != nil {
		return Session{}, err
	}
	profile, err := form.ToProfile(now)
	if err != nil {
		return Session{}, err
	}
	session, err := svc.CreateAccount(ctx, profile.Email, form.Password)
	if err != nil {
		return Session{}, err
	}
	if err := svc.WriteProfile(ctx, session.UserID, profile); err != nil {
		return session, &Error{Op: "write-profile", Kind: KindOf(err), Err: err}
	}
	return session, nil
}
