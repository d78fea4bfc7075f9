// Package ez registers typed JSON actions on a gin router group: bind the
// request, run a handler, map its error to a status and body.
package ez

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	mdw "laundry-api/internal/transport/http/middleware"
	resp "laundry-api/internal/transport/http/response"
)

type Binder string

const (
	BindJSON Binder = "json"
	BindNone Binder = "none" // handler reads c.Param itself
)

// AErr carries the HTTP status for a failed action. Err is logged for 5xx
// and exposed to the client only when the group is configured to.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string, err error) error { return &AErr{Code: http.StatusBadRequest, Msg: msg, Err: err} }
func Unauthorized(msg string) error           { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func NotFound(msg string) error               { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) error               { return &AErr{Code: http.StatusConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Guard returns the middleware enforcing role on a route.
type Guard func(role string) gin.HandlerFunc

type Options struct {
	Log          *zap.Logger
	Guard        Guard
	ExposeErrors bool
}

type EZ struct {
	g   *gin.RouterGroup
	opt Options
}

func New(g *gin.RouterGroup, opt Options) EZ {
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	return EZ{g: g, opt: opt}
}

// Action describes one route. I is the bound input, O the success body.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Role    string // required role; empty means public
	Status  int    // success status, 200 when zero
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		if a.Binder == BindJSON {
			if err := bindJSON(c, &in); err != nil {
				e.fail(c, BadRequest(resp.MsgBadRequest, err))
				return
			}
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, out)
	}

	var chain []gin.HandlerFunc
	if a.Role != "" {
		if e.opt.Guard == nil {
			panic("ez: action " + a.Method + " " + a.Path + " requires a role but no guard is configured")
		}
		chain = append(chain, e.opt.Guard(a.Role))
	}
	chain = append(chain, h)

	switch m := strings.ToUpper(a.Method); m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		e.g.Handle(m, a.Path, chain...)
	default:
		panic("ez: action " + a.Path + " has unsupported method " + strconv.Quote(a.Method))
	}
}

// bindJSON treats an empty body, declared or chunked, as an empty object;
// binding tags are still enforced.
func bindJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return binding.Validator.ValidateStruct(dst)
	}
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		return binding.Validator.ValidateStruct(dst)
	}
	return err
}

func (e EZ) fail(c *gin.Context, err error) {
	var ae *AErr
	if !errors.As(err, &ae) {
		ae = &AErr{Code: http.StatusInternalServerError, Msg: resp.MsgInternal, Err: err}
	}
	if ae.Code >= http.StatusInternalServerError {
		e.opt.Log.Error("action failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(ae.Err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ae.Code, resp.Fail(ae.Error(), ae.Err, e.opt.ExposeErrors))
}
