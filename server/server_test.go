package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udap-tools/udap-client-app/flows"
	"github.com/udap-tools/udap-client-app/internal/config"
	"github.com/udap-tools/udap-client-app/server"
	"github.com/udap-tools/udap-client-app/servers"
	"github.com/udap-tools/udap-client-app/servers/fakerepo"
	"github.com/udap-tools/udap-client-app/sessions"
	"github.com/udap-tools/udap-client-app/udap/udapfakes"
)

type testApp struct {
	server  *server.Server
	service *flows.Service
	repo    *sessions.InMemoryRepo
	factory *udapfakes.FakeFactory
}

func newTestApp(t *testing.T, profiles ...servers.Profile) *testApp {
	t.Helper()

	registry, err := servers.Load(fakerepo.NewFakeStore())
	require.NoError(t, err)
	for _, p := range profiles {
		require.NoError(t, registry.Upsert(p))
	}

	repo := sessions.NewInMemoryRepo()
	factory := &udapfakes.FakeFactory{}
	identity := flows.Identity{
		ClientName:  "Test App",
		RedirectURL: "http://localhost:3000/callback",
	}
	service, err := flows.NewService(identity, registry, repo, factory.Factory())
	require.NoError(t, err)

	srv, err := server.New(config.New(), service, repo)
	require.NoError(t, err)

	return &testApp{server: srv, service: service, repo: repo, factory: factory}
}

// establishSession performs an initial page load and returns the session
// cookie the middleware issued.
func (a *testApp) establishSession(t *testing.T) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "udap_session" {
			return cookie
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

func registeredTestProfile() servers.Profile {
	return servers.Profile{
		Name:             "Acme FHIR",
		ServerBaseURL:    "https://fhir.acme.test",
		CCScopes:         "system/Patient.read",
		CCClientID:       "cc-client",
		AuthCodeScopes:   "user/Patient.read",
		AuthCodeClientID: "ac-client",
	}
}

func TestIndexIssuesSessionCookie(t *testing.T) {
	app := newTestApp(t)

	cookie := app.establishSession(t)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)

	_, err := app.repo.Get(cookie.Value)
	require.NoError(t, err)
}

func TestIndexReusesExistingSession(t *testing.T) {
	app := newTestApp(t)
	cookie := app.establishSession(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		require.NotEqual(t, "udap_session", c.Name, "an existing session must not be replaced")
	}
}

func TestIndexShowsMustAddServerWithEmptyRegistry(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No UDAP servers are configured yet.")
}

func TestActionGetB2CTokenRedirectsToAuthorize(t *testing.T) {
	app := newTestApp(t, registeredTestProfile())
	cookie := app.establishSession(t)

	rec := app.postForm(t, "/", url.Values{"action": {"getB2cToken"}}, cookie)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "authorize")

	sess, err := app.repo.Get(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, "fake-state", sess.AuthzState)
	require.Equal(t, sessions.PhaseCallbackPending, sess.AuthCodePhase)
}

func TestActionClearSessionDestroysSession(t *testing.T) {
	app := newTestApp(t, registeredTestProfile())
	cookie := app.establishSession(t)

	rec := app.postForm(t, "/", url.Values{"action": {"clearSession"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := app.repo.Get(cookie.Value)
	require.ErrorIs(t, err, sessions.ErrSessionNotFound)
}

func TestActionServerSelection(t *testing.T) {
	other := registeredTestProfile()
	other.Name = "Other FHIR"
	app := newTestApp(t, other, registeredTestProfile())
	cookie := app.establishSession(t)

	rec := app.postForm(t, "/", url.Values{"dropDownServerSelect": {"Other FHIR"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	selected, found := app.service.Selected()
	require.True(t, found)
	require.Equal(t, "Other FHIR", selected.Name)
}

func TestCallbackStateMismatch(t *testing.T) {
	app := newTestApp(t, registeredTestProfile())
	cookie := app.establishSession(t)

	sess, err := app.repo.Get(cookie.Value)
	require.NoError(t, err)
	sess.AuthzState = "expected-state"
	sess.AuthCodePhase = sessions.PhaseCallbackPending
	require.NoError(t, app.repo.Upsert(cookie.Value, sess))

	req := httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=auth-code", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "An invalid authorization code state was sent.")
}

func TestCallbackCompletesFlow(t *testing.T) {
	app := newTestApp(t, registeredTestProfile())
	cookie := app.establishSession(t)

	sess, err := app.repo.Get(cookie.Value)
	require.NoError(t, err)
	sess.AuthzState = "expected-state"
	sess.AuthCodePhase = sessions.PhaseCallbackPending
	require.NoError(t, app.repo.Upsert(cookie.Value, sess))

	req := httptest.NewRequest(http.MethodGet, "/callback?state=expected-state&code=auth-code", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	sess, err = app.repo.Get(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, "fake-b2c-token", sess.B2CToken)
	require.Equal(t, sessions.PhaseCompleted, sess.AuthCodePhase)
}

func TestSaveServerPersistsProfile(t *testing.T) {
	app := newTestApp(t)
	cookie := app.establishSession(t)

	rec := app.postForm(t, "/saveserver", url.Values{
		"action":         {"saveServer"},
		"serverName":     {"Acme FHIR"},
		"serverBaseUrl":  {"https://fhir.acme.test/"},
		"ccScopes":       {"system/Patient.read"},
		"authCodeScopes": {"user/Patient.read"},
	}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	selected, found := app.service.Selected()
	require.True(t, found)
	require.Equal(t, "Acme FHIR", selected.Name)
	require.Equal(t, "https://fhir.acme.test", selected.ServerBaseURL, "trailing slash is trimmed")
	require.Empty(t, selected.CCClientID)
}

func TestSaveServerRequiresName(t *testing.T) {
	app := newTestApp(t)
	cookie := app.establishSession(t)

	rec := app.postForm(t, "/saveserver", url.Values{
		"action":        {"saveServer"},
		"serverBaseUrl": {"https://fhir.acme.test"},
	}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.True(t, app.service.MustAddServer(), "nothing is persisted without a name")
}

func TestGetMetadataPrefillsAddServerForm(t *testing.T) {
	app := newTestApp(t)
	cookie := app.establishSession(t)

	rec := app.postForm(t, "/getmetadata", url.Values{
		"action":        {"getMetaData"},
		"serverName":    {"Acme FHIR"},
		"serverBaseUrl": {"https://fhir.acme.test/"},
	}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	// Probing persists nothing; the advertised scopes show up pre-filled on
	// the next page load.
	require.True(t, app.service.MustAddServer())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	page := httptest.NewRecorder()
	app.server.ServeHTTP(page, req)
	require.Contains(t, page.Body.String(), "system/Patient.read user/Patient.read")
}
