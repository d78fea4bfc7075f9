package service

import (
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"

	"laundry-api/internal/core/auth"
	"laundry-api/internal/domain"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *fakeUserRepo, *auth.JWTer) {
	t.Helper()
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "test", TTL: time.Hour}
	users := newFakeUserRepo()
	return NewAuthenticator(j, users, zap.NewNop()), users, j
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	a, users, j := newTestAuthenticator(t)

	admin := &domain.User{Name: "root", Email: "root@x.io", Role: domain.RoleAdmin}
	plain := &domain.User{Name: "joe", Email: "joe@x.io", Role: domain.RoleUser}
	qt.Assert(t, users.Create(ctx, admin), qt.IsNil)
	qt.Assert(t, users.Create(ctx, plain), qt.IsNil)

	adminTok, _ := j.Issue(admin.ID, admin.Role)
	userTok, _ := j.Issue(plain.ID, plain.Role)
	// a token claiming admin for a non-admin user must not be trusted
	forgedRole, _ := j.Issue(plain.ID, domain.RoleAdmin)
	ghostTok, _ := j.Issue(99, domain.RoleAdmin)
	expired, _ := (&auth.JWTer{Secret: j.Secret, Issuer: j.Issuer, TTL: -time.Hour}).Issue(admin.ID, admin.Role)

	t.Run("admin passes", func(t *testing.T) {
		before := users.lookups
		u, err := a.Authorize(ctx, adminTok, domain.RoleAdmin)
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, u.ID, qt.Equals, admin.ID)
		qt.Check(t, users.lookups-before, qt.Equals, 1)
	})
	t.Run("any role", func(t *testing.T) {
		u, err := a.Authorize(ctx, userTok, "")
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, u.ID, qt.Equals, plain.ID)
	})

	for name, tok := range map[string]string{
		"non-admin":   userTok,
		"forged role": forgedRole,
		"no user":     ghostTok,
		"expired":     expired,
		"garbage":     "abc",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := a.Authorize(ctx, tok, domain.RoleAdmin)
			qt.Assert(t, err, qt.Equals, domain.ErrUnauthorized)
		})
	}

	t.Run("store error", func(t *testing.T) {
		users.err = errors.New("db down")
		defer func() { users.err = nil }()
		_, err := a.Authorize(ctx, adminTok, domain.RoleAdmin)
		qt.Assert(t, err, qt.Equals, domain.ErrUnauthorized)
	})
}

func TestRegisterLogin(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	a, _, j := newTestAuthenticator(t)

	sess, err := a.Register(ctx, " Joe ", "Joe@Example.com ", "pw-123456")
	c.Assert(err, qt.IsNil)
	c.Check(sess.User.Role, qt.Equals, domain.RoleUser)
	c.Check(sess.User.Email, qt.Equals, "joe@example.com")
	claims, err := j.Parse(sess.Token)
	c.Assert(err, qt.IsNil)
	c.Check(claims.UserID, qt.Equals, sess.User.ID)

	_, err = a.Register(ctx, "Joe", "joe@example.com", "other")
	c.Check(err, qt.Equals, domain.ErrEmailTaken)

	_, err = a.Login(ctx, "joe@example.com", "wrong")
	c.Check(err, qt.Equals, domain.ErrInvalidCredentials)
	_, err = a.Login(ctx, "nobody@example.com", "pw-123456")
	c.Check(err, qt.Equals, domain.ErrInvalidCredentials)

	sess, err = a.Login(ctx, "JOE@example.com", "pw-123456")
	c.Assert(err, qt.IsNil)
	c.Check(sess.Token, qt.Not(qt.Equals), "")
}

func TestEnsureAdmin(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	a, _, _ := newTestAuthenticator(t)

	u, created, err := a.EnsureAdmin(ctx, "root", "root@x.io", "pw")
	c.Assert(err, qt.IsNil)
	c.Check(created, qt.IsTrue)
	c.Check(u.IsAdmin(), qt.IsTrue)

	_, err = a.Register(ctx, "joe", "joe@x.io", "pw")
	c.Assert(err, qt.IsNil)
	u, created, err = a.EnsureAdmin(ctx, "", "joe@x.io", "new-pw")
	c.Assert(err, qt.IsNil)
	c.Check(created, qt.IsFalse)
	c.Check(u.IsAdmin(), qt.IsTrue)
	c.Check(u.Name, qt.Equals, "joe")

	sess, err := a.Login(ctx, "joe@x.io", "new-pw")
	c.Assert(err, qt.IsNil)
	_, err = a.Authorize(ctx, sess.Token, domain.RoleAdmin)
	c.Check(err, qt.IsNil)

	sess, err = a.IssueFor(ctx, "root@x.io")
	c.Assert(err, qt.IsNil)
	c.Check(sess.User.Name, qt.Equals, "root")
	_, err = a.IssueFor(ctx, "ghost@x.io")
	c.Check(err, qt.Equals, domain.ErrNotFound)
}
