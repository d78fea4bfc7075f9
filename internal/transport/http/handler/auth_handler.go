package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-api/internal/domain"
	"laundry-api/internal/service"
	"laundry-api/internal/transport/http/ez"
	resp "laundry-api/internal/transport/http/response"
)

type Accounts interface {
	Register(ctx context.Context, name, email, password string) (*service.Session, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
}

type AuthHandler struct {
	accounts Accounts
	opt      ez.Options
}

func NewAuthHandler(accounts Accounts, opt ez.Options) *AuthHandler {
	return &AuthHandler{accounts: accounts, opt: opt}
}

func (h *AuthHandler) Priority() int { return 10 }

type registerIn struct {
	Name     string `json:"name"     binding:"required,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionOut struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/auth"), h.opt)

	ez.RegisterAction(e, ez.Action[registerIn, sessionOut]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *registerIn) (sessionOut, error) {
			sess, err := h.accounts.Register(c.Request.Context(), in.Name, in.Email, in.Password)
			switch {
			case errors.Is(err, domain.ErrEmailTaken):
				return sessionOut{}, ez.Conflict(resp.MsgEmailTaken)
			case err != nil:
				return sessionOut{}, ez.Internal(resp.MsgAuthFailed, err)
			}
			return sessionOut{Message: resp.MsgRegistered, Token: sess.Token, User: sess.User}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[loginIn, sessionOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (sessionOut, error) {
			sess, err := h.accounts.Login(c.Request.Context(), in.Email, in.Password)
			switch {
			case errors.Is(err, domain.ErrInvalidCredentials):
				return sessionOut{}, ez.Unauthorized(resp.MsgInvalidCredentials)
			case err != nil:
				return sessionOut{}, ez.Internal(resp.MsgAuthFailed, err)
			}
			return sessionOut{Message: resp.MsgLoggedIn, Token: sess.Token, User: sess.User}, nil
		},
	})
}
