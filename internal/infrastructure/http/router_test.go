package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/screen"
	"github.com/carddemo/terminal/internal/core/screens"
	"github.com/carddemo/terminal/internal/core/session"
	"github.com/carddemo/terminal/internal/infrastructure/gateway"
	"github.com/carddemo/terminal/internal/infrastructure/http/handlers"
	"github.com/carddemo/terminal/internal/infrastructure/http/middleware"
)

const cookieName = "test_sid"

// terminal drives the router like a browser that keeps its cookie and does
// not follow redirects.
type terminal struct {
	t      *testing.T
	h      http.Handler
	gw     *gateway.Fixture
	store  *session.Store
	cookie *http.Cookie
}

func newTerminal(t *testing.T) *terminal {
	t.Helper()
	gw := gateway.NewFixture()
	store := session.NewStore(session.NewMemoryRepository())
	e, unsubscribe := NewRouter(Deps{
		Catalog:       screens.NewCatalog(gw),
		Store:         store,
		Auth:          gw,
		Log:           zerolog.Nop(),
		Registry:      prometheus.NewRegistry(),
		Cookie:        middleware.CookieConfig{Name: cookieName, MaxAge: time.Hour},
		RefreshWithin: 30 * time.Second,
	})
	t.Cleanup(unsubscribe)
	return &terminal{t: t, h: e, gw: gw, store: store}
}

func (tm *terminal) do(method, path, body string) *httptest.ResponseRecorder {
	tm.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tm.cookie != nil {
		req.AddCookie(tm.cookie)
	}
	rec := httptest.NewRecorder()
	tm.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieName {
			tm.cookie = ck
		}
	}
	return rec
}

func (tm *terminal) key(path, key string, fields map[string]string) *httptest.ResponseRecorder {
	tm.t.Helper()
	body, _ := json.Marshal(map[string]any{"key": key, "fields": fields})
	return tm.do(http.MethodPost, path+"/keys", string(body))
}

func (tm *terminal) signOn(userID string) {
	tm.t.Helper()
	tm.do(http.MethodGet, "/login", "")
	rec := tm.key("/login", "ENTER", map[string]string{"userId": userID, "password": "PASSWORD"})
	if rec.Code != http.StatusSeeOther {
		tm.t.Fatalf("sign-on: expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
}

func (tm *terminal) browserID() string {
	if tm.cookie == nil {
		tm.t.Fatal("no browser cookie issued")
	}
	return tm.cookie.Value
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) handlers.View {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var v handlers.View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	tm := newTerminal(t)

	for _, path := range []string{"/menu/main", "/admin/users", "/billing/pay", "/no/such/page", "/"} {
		expectRedirect(t, tm.do(http.MethodGet, path, ""), domain.PathLogin)
	}

	v := decodeView(t, tm.do(http.MethodGet, "/login", ""))
	if v.Screen != "signon" || v.TransactionID != "CC00" || v.ProgramName != "COSGN00C" {
		t.Errorf("unexpected sign-on header: %+v", v)
	}
	if v.User != nil {
		t.Errorf("anonymous view must not carry a user, got %+v", v.User)
	}
}

func TestHealthDoesNotIssueCookie(t *testing.T) {
	tm := newTerminal(t)

	rec := tm.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if tm.cookie != nil {
		t.Errorf("health probe should not open a browser session")
	}
}

func TestSignOnLandsOnRoleMenu(t *testing.T) {
	tests := []struct {
		userID  string
		landing string
	}{
		{"USER001", domain.PathMainMenu},
		{"admin001", domain.PathAdminMenu},
	}

	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			tm := newTerminal(t)
			tm.do(http.MethodGet, "/login", "")

			rec := tm.key("/login", "ENTER", map[string]string{"userId": tt.userID, "password": "PASSWORD"})
			expectRedirect(t, rec, tt.landing)

			v := decodeView(t, tm.do(http.MethodGet, tt.landing, ""))
			if v.Step != screen.StepConfirm {
				t.Errorf("menu should be loaded on display, step %s", v.Step)
			}
			if v.User == nil || v.User.UserID != strings.ToUpper(tt.userID) {
				t.Errorf("unexpected header user %+v", v.User)
			}

			// Signed-on users never see the sign-on screen.
			expectRedirect(t, tm.do(http.MethodGet, "/login", ""), tt.landing)
		})
	}
}

func TestSignOnFailureIsShownAndRetyped(t *testing.T) {
	tm := newTerminal(t)
	tm.do(http.MethodGet, "/login", "")

	v := decodeView(t, tm.key("/login", "ENTER", map[string]string{"userId": "USER001", "password": "WRONG"}))
	if v.Step != screen.StepError || v.Error != domain.ErrInvalidCredentials.Error() {
		t.Fatalf("expected error step with server message, got %s %q", v.Step, v.Error)
	}
	if v.Data != nil {
		t.Errorf("sign-on view must not expose lookup data")
	}
	for _, f := range v.Fields {
		if f.Name == "password" && f.Value != "*****" {
			t.Errorf("password should be masked, got %q", f.Value)
		}
	}

	expectRedirect(t, tm.key("/login", "ENTER", map[string]string{"userId": "USER001", "password": "PASSWORD"}), domain.PathMainMenu)
}

func TestSignOnMissingFieldsStaysOnInput(t *testing.T) {
	tm := newTerminal(t)
	tm.do(http.MethodGet, "/login", "")

	v := decodeView(t, tm.key("/login", "ENTER", map[string]string{"userId": "USER001"}))
	if v.Step != screen.StepInput {
		t.Fatalf("expected input step, got %s", v.Step)
	}
	var msg string
	for _, f := range v.Fields {
		if f.Name == "password" {
			msg = f.Error
		}
	}
	if msg != "Please enter Password ..." {
		t.Errorf("unexpected field error %q", msg)
	}
}

func TestAdminScreensRedirectBackOffice(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")

	expectRedirect(t, tm.do(http.MethodGet, "/admin/users", ""), domain.PathMainMenu)
	expectRedirect(t, tm.do(http.MethodGet, "/menu/admin", ""), domain.PathMainMenu)
	expectRedirect(t, tm.do(http.MethodGet, "/no/such/page", ""), domain.PathMainMenu)
}

func TestMenuKeys(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")
	tm.do(http.MethodGet, domain.PathMainMenu, "")

	// Out of range: nothing happens.
	v := decodeView(t, tm.key(domain.PathMainMenu, "ENTER", map[string]string{"option": "99"}))
	if v.LastKey == nil || v.LastKey.Action != "submit" {
		t.Errorf("expected submit to be reported, got %+v", v.LastKey)
	}

	// F5 is not bound on menus.
	v = decodeView(t, tm.key(domain.PathMainMenu, "F5", nil))
	if v.LastKey == nil || v.LastKey.PreventDefault {
		t.Errorf("unbound key should not prevent the browser default, got %+v", v.LastKey)
	}

	expectRedirect(t, tm.key(domain.PathMainMenu, "ENTER", map[string]string{"option": "1"}), "/accounts/view")
}

func TestBackFromMenuSignsOff(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")

	expectRedirect(t, tm.key(domain.PathMainMenu, "F3", nil), domain.PathLogin)

	s, err := tm.store.Get(context.Background(), tm.browserID())
	if err != nil || s != nil {
		t.Fatalf("session should be gone, got %+v %v", s, err)
	}
	expectRedirect(t, tm.do(http.MethodGet, domain.PathMainMenu, ""), domain.PathLogin)
}

func TestBackAndExitFromForm(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")

	expectRedirect(t, tm.key("/cards/view", "ESC", nil), "/cards/list")
	expectRedirect(t, tm.key("/accounts/view", "F12", nil), domain.PathMainMenu)
}

func TestBillPayment(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")
	tm.do(http.MethodGet, "/billing/pay", "")

	v := decodeView(t, tm.key("/billing/pay", "ENTER", map[string]string{"accountId": "00000000001"}))
	if v.Step != screen.StepConfirm {
		t.Fatalf("expected confirm, got %s (%s)", v.Step, v.Error)
	}

	v = decodeView(t, tm.key("/billing/pay", "ENTER", nil))
	if v.Step != screen.StepSuccess {
		t.Fatalf("expected success, got %s (%s)", v.Step, v.Error)
	}
	if v.Result == nil {
		t.Fatal("expected the payment in the result")
	}

	// ENTER on a finished screen does nothing; F4 starts over.
	v = decodeView(t, tm.key("/billing/pay", "ENTER", nil))
	if v.Step != screen.StepSuccess {
		t.Fatalf("expected success to stay, got %s", v.Step)
	}
	v = decodeView(t, tm.key("/billing/pay", "F4", nil))
	if v.Step != screen.StepInput {
		t.Fatalf("expected input after clear, got %s", v.Step)
	}

	v = decodeView(t, tm.key("/billing/pay", "ENTER", map[string]string{"accountId": "00000000001"}))
	if v.Step != screen.StepAlreadyDone {
		t.Fatalf("expected already-done for a paid account, got %s", v.Step)
	}
}

func TestSecondaryKeyOnlyInConfirm(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("ADMIN001")
	tm.do(http.MethodGet, "/admin/users/delete", "")

	v := decodeView(t, tm.key("/admin/users/delete", "F5", nil))
	if v.LastKey == nil || !v.LastKey.PreventDefault || v.Step != screen.StepInput {
		t.Fatalf("F5 should be bound but disabled on input, got %+v %s", v.LastKey, v.Step)
	}
	for _, k := range v.Keys {
		if k.Key == "F5" && k.Enabled {
			t.Errorf("F5 hint should be disabled on input")
		}
	}
}

func TestRouteParamSeedsAndLooksUp(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")

	v := decodeView(t, tm.do(http.MethodGet, "/transactions/view/0000000000683580", ""))
	if v.Screen != "transaction-view" || v.Step != screen.StepConfirm {
		t.Fatalf("expected transaction loaded from the route, got %s %s (%s)", v.Screen, v.Step, v.Error)
	}
}

func TestFieldEndpointFiltersInput(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")

	rec := tm.do(http.MethodPost, "/accounts/view/fields", `{"name":"accountId","value":"12ab"}`)
	v := decodeView(t, rec)
	if v.Accepted == nil || *v.Accepted {
		t.Fatalf("non-digits should be rejected, got %+v", v.Accepted)
	}

	v = decodeView(t, tm.do(http.MethodPost, "/accounts/view/fields", `{"name":"accountId","value":"123"}`))
	if v.Accepted == nil || !*v.Accepted {
		t.Fatalf("digits should be accepted")
	}
}

func TestRejectedTokenEndsSession(t *testing.T) {
	tm := newTerminal(t)
	tm.do(http.MethodGet, "/login", "")

	err := tm.store.Login(context.Background(), tm.browserID(), &domain.Session{
		UserID:       "USER001",
		Role:         domain.RoleBackOffice,
		AccessToken:  "revoked",
		RefreshToken: "revoked",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}

	expectRedirect(t, tm.do(http.MethodGet, domain.PathMainMenu, ""), domain.PathLogin)
	if s, _ := tm.store.Get(context.Background(), tm.browserID()); s != nil {
		t.Errorf("session should be destroyed after a 401")
	}
}

func TestTokenRefreshedBeforeExpiry(t *testing.T) {
	tm := newTerminal(t)
	tm.do(http.MethodGet, "/login", "")

	res, err := tm.gw.Login(context.Background(), "USER001", "PASSWORD")
	if err != nil {
		t.Fatal(err)
	}
	s := res.Session(time.Now())
	s.ExpiresAt = time.Now().Add(5 * time.Second)
	if err := tm.store.Login(context.Background(), tm.browserID(), s); err != nil {
		t.Fatal(err)
	}

	decodeView(t, tm.do(http.MethodGet, domain.PathMainMenu, ""))

	got, err := tm.store.Get(context.Background(), tm.browserID())
	if err != nil || got == nil {
		t.Fatalf("session should survive the refresh: %v", err)
	}
	if got.AccessToken == s.AccessToken {
		t.Error("access token should have been replaced")
	}
	if got.RefreshToken != s.RefreshToken || got.Role != s.Role {
		t.Error("refresh must keep identity and refresh token")
	}
}

func TestFailedRefreshEndsSession(t *testing.T) {
	tm := newTerminal(t)
	tm.do(http.MethodGet, "/login", "")

	err := tm.store.Login(context.Background(), tm.browserID(), &domain.Session{
		UserID:       "USER001",
		Role:         domain.RoleBackOffice,
		AccessToken:  "stale",
		RefreshToken: "unknown",
		ExpiresAt:    time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}

	expectRedirect(t, tm.do(http.MethodGet, domain.PathMainMenu, ""), domain.PathLogin)
}

func TestLogoutRoute(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("ADMIN001")

	expectRedirect(t, tm.do(http.MethodPost, "/logout", ""), domain.PathLogin)
	expectRedirect(t, tm.do(http.MethodGet, domain.PathAdminMenu, ""), domain.PathLogin)
}

func fieldValue(v handlers.View, name string) string {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func objectField(t *testing.T, obj any, name string) any {
	t.Helper()
	m, ok := obj.(map[string]any)
	if !ok {
		t.Fatalf("expected an object, got %T", obj)
	}
	return m[name]
}

// viewAccount loads accountID on the account view screen.
func (tm *terminal) viewAccount(accountID string) handlers.View {
	tm.t.Helper()
	v := decodeView(tm.t, tm.do(http.MethodGet, "/accounts/view?accountId="+accountID, ""))
	if v.Step != screen.StepConfirm {
		tm.t.Fatalf("account %s: expected confirm, got %s (%s)", accountID, v.Step, v.Error)
	}
	return v
}

func TestUpdateCommitsTheConfirmedAccount(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")
	tm.do(http.MethodGet, "/accounts/update", "")

	v := decodeView(t, tm.key("/accounts/update", "ENTER", map[string]string{"accountId": "00000000001"}))
	if v.Step != screen.StepConfirm {
		t.Fatalf("expected confirm, got %s (%s)", v.Step, v.Error)
	}
	for _, f := range v.Fields {
		if f.Name == "accountId" && f.Editable {
			t.Error("the account id should be read-only while confirming")
		}
	}

	v = decodeView(t, tm.key("/accounts/update", "F5", map[string]string{"accountId": "00000000002"}))
	if v.Step != screen.StepSuccess {
		t.Fatalf("expected success, got %s (%s)", v.Step, v.Error)
	}
	if got := fieldValue(v, "accountId"); got != "00000000001" {
		t.Errorf("account id changed during confirm: %s", got)
	}
	if got := objectField(t, v.Result, "accountId"); got != "00000000001" {
		t.Errorf("expected account 1 updated, got %v", got)
	}

	if got := objectField(t, tm.viewAccount("00000000002").Data, "creditLimit"); got != 6190.0 {
		t.Errorf("account 2 must be untouched, credit limit %v", got)
	}
}

func TestClearWhileConfirmingStartsOver(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")
	tm.do(http.MethodGet, "/accounts/update", "")

	decodeView(t, tm.key("/accounts/update", "ENTER", map[string]string{"accountId": "00000000001"}))
	v := decodeView(t, tm.key("/accounts/update", "F4", nil))
	if v.Step != screen.StepInput || fieldValue(v, "accountId") != "" {
		t.Fatalf("expected an empty input step, got %s %q", v.Step, fieldValue(v, "accountId"))
	}

	v = decodeView(t, tm.key("/accounts/update", "ENTER", map[string]string{"accountId": "00000000002"}))
	if v.Step != screen.StepConfirm {
		t.Fatalf("expected confirm, got %s (%s)", v.Step, v.Error)
	}
	if got := objectField(t, v.Data, "accountId"); got != "00000000002" {
		t.Errorf("expected account 2 looked up, got %v", got)
	}
}

func TestBillPaymentPaysTheConfirmedAccount(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")
	tm.do(http.MethodGet, "/billing/pay", "")

	v := decodeView(t, tm.key("/billing/pay", "ENTER", map[string]string{"accountId": "00000000001"}))
	if v.Step != screen.StepConfirm {
		t.Fatalf("expected confirm, got %s (%s)", v.Step, v.Error)
	}

	v = decodeView(t, tm.key("/billing/pay", "ENTER", map[string]string{"accountId": "00000000002"}))
	if v.Step != screen.StepSuccess {
		t.Fatalf("expected success, got %s (%s)", v.Step, v.Error)
	}

	if got := objectField(t, tm.viewAccount("00000000001").Data, "currentBalance"); got != 0.0 {
		t.Errorf("account 1 should be paid off, balance %v", got)
	}
}

func TestNewQueryKeyLooksUpAgain(t *testing.T) {
	tm := newTerminal(t)
	tm.signOn("USER001")

	v := tm.viewAccount("00000000001")
	if got := objectField(t, v.Data, "accountId"); got != "00000000001" {
		t.Fatalf("expected account 1, got %v", got)
	}

	v = tm.viewAccount("00000000002")
	if got := objectField(t, v.Data, "accountId"); got != "00000000002" {
		t.Errorf("expected account 2 after the key changed, got %v", got)
	}
	if got := fieldValue(v, "accountId"); got != "00000000002" {
		t.Errorf("unexpected field %q", got)
	}

	// A zero balance account has nothing to pay, whatever was on screen before.
	v = decodeView(t, tm.do(http.MethodGet, "/billing/pay?accountId=00000000001", ""))
	if v.Step != screen.StepConfirm {
		t.Fatalf("expected confirm, got %s (%s)", v.Step, v.Error)
	}
	v = decodeView(t, tm.do(http.MethodGet, "/billing/pay?accountId=00000000002", ""))
	if v.Step != screen.StepAlreadyDone {
		t.Errorf("expected already-done for account 2, got %s", v.Step)
	}
}

func TestBackOnSignOnClearsInPlace(t *testing.T) {
	tm := newTerminal(t)
	tm.do(http.MethodGet, "/login", "")

	decodeView(t, tm.key("/login", "ENTER", map[string]string{"userId": "USER001", "password": "WRONG"}))
	v := decodeView(t, tm.key("/login", "F3", nil))
	if v.LastKey == nil || v.LastKey.Action != "back" {
		t.Fatalf("expected back to be bound, got %+v", v.LastKey)
	}
	if v.Step != screen.StepInput || v.Error != "" || fieldValue(v, "userId") != "" {
		t.Errorf("expected a fresh sign-on form, got %s %q %q", v.Step, v.Error, fieldValue(v, "userId"))
	}
}
