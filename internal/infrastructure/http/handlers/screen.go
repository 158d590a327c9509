package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/command"
	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/guard"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/core/screen"
	"github.com/carddemo/terminal/internal/core/screens"
	"github.com/carddemo/terminal/internal/core/session"
	"github.com/carddemo/terminal/internal/infrastructure/http/middleware"
	"github.com/carddemo/terminal/internal/pkg/metrics"
)

// menuActionLogout is the menu option verb that signs the user off.
const menuActionLogout = "logout"

type keyRequest struct {
	Key    string            `json:"key"`
	Fields map[string]string `json:"fields"`
}

type fieldRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ScreenHandler serves the terminal screens: the view of a screen, the
// function keys pressed on it and single field edits.
type ScreenHandler struct {
	store       *session.Store
	auth        ports.AuthGateway
	controllers *Controllers
	log         zerolog.Logger
	now         func() time.Time
}

func NewScreenHandler(store *session.Store, auth ports.AuthGateway, controllers *Controllers, log zerolog.Logger) *ScreenHandler {
	return &ScreenHandler{
		store:       store,
		auth:        auth,
		controllers: controllers,
		log:         log,
		now:         time.Now,
	}
}

// outcome collects what a key handler decided beyond the screen context.
type outcome struct {
	location string
	// fatal is an infrastructure failure, as opposed to a failed request the
	// screen already shows.
	fatal error
}

// View renders def. Route and query parameters seed the form, and screens
// that look themselves up do so on first display.
func (h *ScreenHandler) View(def *screens.Definition) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		s := middleware.CurrentSession(c)
		ctl := h.controllers.Get(middleware.BrowserID(c), def)

		seeded := h.seed(c, def, ctl)
		st := ctl.Snapshot()
		if (def.AutoLookup || seeded) && st.Step == screen.StepInput && !st.Loading && st.Data == nil {
			err := ctl.Submit(ctx, token(s))
			if def.Kind != screens.KindLogin && errors.Is(err, ports.ErrUnauthorized) {
				return h.expire(c)
			}
			metrics.ScreenTransitionsTotal.WithLabelValues(def.Name, string(ctl.Snapshot().Step)).Inc()
		}

		var out outcome
		b := h.bindings(c, def, ctl, s, &out)
		return c.JSON(http.StatusOK, buildView(def, ctl.Snapshot(), s, b, h.now()))
	}
}

// Key dispatches a function key. Fields sent along are applied first, the
// way a terminal transmits the modified fields with the key.
func (h *ScreenHandler) Key(def *screens.Definition) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req keyRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		ctx := c.Request().Context()
		s := middleware.CurrentSession(c)
		ctl := h.controllers.Get(middleware.BrowserID(c), def)

		// A failed sign-on is retyped, not cleared.
		if def.Kind == screens.KindLogin && ctl.Snapshot().Step.Terminal() {
			ctl.Reset()
		}
		for name, value := range req.Fields {
			ctl.SetField(name, value)
		}

		var out outcome
		b := h.bindings(c, def, ctl, s, &out)
		key := command.ParseKey(req.Key)
		res, err := command.Dispatch(ctx, b, key)
		if out.fatal != nil {
			return out.fatal
		}

		result := "ok"
		switch {
		case err == nil:
		case errors.Is(err, command.ErrUnbound):
			result = "unbound"
		case errors.Is(err, command.ErrDisabled):
			result = "disabled"
		case errors.Is(err, screen.ErrBusy):
			result = "busy"
		case def.Kind != screens.KindLogin && errors.Is(err, ports.ErrUnauthorized):
			metrics.KeyPressesTotal.WithLabelValues(def.Name, keyLabelValue(key), "error").Inc()
			return h.expire(c)
		case errors.Is(err, screen.ErrInvalidFields),
			errors.Is(err, screen.ErrStale),
			errors.Is(err, screen.ErrInvalidTransition):
		default:
			result = "error"
			h.log.Debug().Err(err).Str("screen", def.Name).Str("key", string(key)).Msg("screen request failed")
		}
		metrics.KeyPressesTotal.WithLabelValues(def.Name, keyLabelValue(key), result).Inc()

		if out.location != "" {
			return c.Redirect(http.StatusSeeOther, out.location)
		}

		st := ctl.Snapshot()
		metrics.ScreenTransitionsTotal.WithLabelValues(def.Name, string(st.Step)).Inc()
		v := buildView(def, st, middleware.CurrentSession(c), b, h.now())
		v.LastKey = &res
		return c.JSON(http.StatusOK, v)
	}
}

// Field stores one field value as it is typed.
func (h *ScreenHandler) Field(def *screens.Definition) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req fieldRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		s := middleware.CurrentSession(c)
		ctl := h.controllers.Get(middleware.BrowserID(c), def)
		accepted := ctl.SetField(req.Name, req.Value)

		var out outcome
		v := buildView(def, ctl.Snapshot(), s, h.bindings(c, def, ctl, s, &out), h.now())
		v.Accepted = &accepted
		return c.JSON(http.StatusOK, v)
	}
}

// Logout ends the session and returns to the sign-on screen.
func (h *ScreenHandler) Logout(c echo.Context) error {
	if err := h.logout(c.Request().Context(), c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, domain.PathLogin)
}

// NotFound sends unmatched routes to the sign-on screen or the landing menu.
func (h *ScreenHandler) NotFound(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, guard.Fallback(middleware.CurrentSession(c)))
}

// seed applies route and query parameters to the form. A key other than the
// one on screen mounts the screen afresh, so the lookup runs for it.
func (h *ScreenHandler) seed(c echo.Context, def *screens.Definition, ctl *screen.Controller) bool {
	values := map[string]string{}
	if def.Param != "" {
		if v := c.Param(def.Param); v != "" {
			values[def.Param] = v
		}
	}
	for _, fd := range def.Flow.Fields {
		if fd.Secret || fd.Edit {
			continue
		}
		if v := c.QueryParam(fd.Name); v != "" {
			values[fd.Name] = v
		}
	}

	current := ctl.Snapshot().Fields
	changed := false
	for name, v := range values {
		fd, ok := def.Flow.Field(name)
		if !ok || !fd.Accepts(v) {
			delete(values, name)
			continue
		}
		if current[name] != v {
			changed = true
		}
	}
	if !changed {
		return false
	}

	ctl.Reset()
	seeded := false
	for name, v := range values {
		if ctl.SetField(name, v) {
			seeded = true
		}
	}
	return seeded
}

func (h *ScreenHandler) bindings(c echo.Context, def *screens.Definition, ctl *screen.Controller, s *domain.Session, out *outcome) command.Bindings {
	idle := func() bool { return !ctl.Snapshot().Loading }
	// Clearing a record under confirmation starts over: its key is read-only
	// until then.
	clearForm := command.Binding{
		Handler: func(context.Context) error {
			st := ctl.Snapshot()
			if st.Step.Terminal() || (st.Step == screen.StepConfirm && !def.ReadOnly()) {
				ctl.Reset()
				return nil
			}
			return ctl.Clear()
		},
		Enabled: idle,
	}

	b := command.Bindings{command.ActionClear: clearForm}

	switch def.Kind {
	case screens.KindLogin:
		b[command.ActionSubmit] = command.Binding{
			Handler: func(ctx context.Context) error { return h.signOn(ctx, c, ctl, out) },
			Enabled: idle,
		}
		// There is nowhere to go back to before signing on.
		b[command.ActionBack] = command.Binding{
			Handler: func(context.Context) error {
				ctl.Reset()
				return nil
			},
		}
		return b

	case screens.KindMenu:
		b[command.ActionSubmit] = command.Binding{
			Handler: func(ctx context.Context) error {
				opt, ok := screens.SelectOption(ctl.Snapshot())
				if !ok {
					return nil
				}
				ctl.Reset()
				if opt.Action == menuActionLogout {
					h.signOff(ctx, c, out)
					return nil
				}
				out.location = opt.Path
				return nil
			},
			Enabled: idle,
		}

	default:
		b[command.ActionSubmit] = command.Binding{
			Handler: func(ctx context.Context) error { return enter(ctx, def, ctl, token(s)) },
			Enabled: idle,
		}
		if def.ConfirmAction == command.ActionSecondary {
			b[command.ActionSecondary] = command.Binding{
				Handler: func(ctx context.Context) error { return ctl.Confirm(ctx, token(s)) },
				Enabled: func() bool {
					st := ctl.Snapshot()
					return st.Step == screen.StepConfirm && !st.Loading
				},
			}
		}
	}

	b[command.ActionBack] = command.Binding{
		Handler: func(ctx context.Context) error {
			ctl.Reset()
			if def.Parent == "" {
				h.signOff(ctx, c, out)
				return nil
			}
			out.location = def.Parent
			return nil
		},
	}
	b[command.ActionExit] = command.Binding{
		Handler: func(ctx context.Context) error {
			ctl.Reset()
			if def.Kind == screens.KindMenu {
				h.signOff(ctx, c, out)
				return nil
			}
			out.location = guard.Fallback(s)
			return nil
		},
	}
	return b
}

// enter is ENTER on a form: look up from input, commit from confirm when
// ENTER confirms, look up again otherwise. Finished screens ignore it.
func enter(ctx context.Context, def *screens.Definition, ctl *screen.Controller, token string) error {
	st := ctl.Snapshot()
	switch {
	case st.Step == screen.StepInput:
		return ctl.Submit(ctx, token)
	case st.Step == screen.StepConfirm && def.ConfirmAction == command.ActionSubmit:
		return ctl.Confirm(ctx, token)
	case st.Step == screen.StepConfirm:
		return ctl.Submit(ctx, token)
	}
	return nil
}

func (h *ScreenHandler) signOn(ctx context.Context, c echo.Context, ctl *screen.Controller, out *outcome) error {
	if err := ctl.Submit(ctx, ""); err != nil {
		return err
	}
	res, ok := ctl.Snapshot().Data.(*ports.LoginResult)
	if !ok {
		return nil
	}
	ctl.Reset()

	s := res.Session(h.now())
	if err := h.store.Login(ctx, middleware.BrowserID(c), s); err != nil {
		out.fatal = err
		return nil
	}
	metrics.SessionsTotal.WithLabelValues("login").Inc()
	h.log.Info().Str("user_id", s.UserID).Str("role", string(s.Role)).Msg("terminal sign-on")

	middleware.SetSession(c, s)
	out.location = s.LandingPath()
	return nil
}

func (h *ScreenHandler) signOff(ctx context.Context, c echo.Context, out *outcome) {
	if err := h.logout(ctx, c); err != nil {
		out.fatal = err
		return
	}
	out.location = domain.PathLogin
}

// logout revokes the tokens on the backend, best effort, then destroys the
// Session.
func (h *ScreenHandler) logout(ctx context.Context, c echo.Context) error {
	if s := middleware.CurrentSession(c); s != nil {
		if err := h.auth.Logout(ctx, s.AccessToken); err != nil {
			h.log.Warn().Err(err).Str("user_id", s.UserID).Msg("backend logout failed")
		}
		h.log.Info().Str("user_id", s.UserID).Msg("terminal sign-off")
	}
	if err := h.store.Logout(ctx, middleware.BrowserID(c)); err != nil {
		return err
	}
	metrics.SessionsTotal.WithLabelValues("logout").Inc()
	middleware.SetSession(c, nil)
	return nil
}

// expire ends a Session the backend no longer accepts.
func (h *ScreenHandler) expire(c echo.Context) error {
	if err := h.store.Logout(c.Request().Context(), middleware.BrowserID(c)); err != nil {
		return err
	}
	metrics.SessionsTotal.WithLabelValues("expired").Inc()
	return c.Redirect(http.StatusSeeOther, domain.PathLogin)
}

func token(s *domain.Session) string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

func keyLabelValue(k command.Key) string {
	if _, ok := command.ActionFor(k); ok {
		return string(k)
	}
	return "other"
}
