package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"member-portal/internal/auth/credentials"
	"member-portal/internal/logger"
	"member-portal/internal/middleware"
	"member-portal/internal/session"
	"member-portal/internal/users"
	"member-portal/internal/view"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	router   *gin.Engine
	users    *users.MemoryStore
	sessions *session.RedisStore
	creds    *credentials.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith lets a test wrap the session store the handler sees.
func newTestEnvWith(t *testing.T, wrap func(session.Store) session.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	views, err := view.New()
	if err != nil {
		t.Fatalf("view.New: %v", err)
	}

	userStore := users.NewMemoryStore()
	sessionStore := session.NewRedisStore(rdb)
	creds := credentials.NewService(userStore, bcrypt.MinCost)

	var handlerStore session.Store = sessionStore
	if wrap != nil {
		handlerStore = wrap(sessionStore)
	}

	r := gin.New()
	r.Use(middleware.LoadSession(sessionStore))
	NewHandler(creds, userStore, handlerStore, views, session.CookieOptions{}).RegisterRoutes(r)

	return &testEnv{router: r, users: userStore, sessions: sessionStore, creds: creds}
}

func (e *testEnv) do(method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signup(t *testing.T, name, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(http.MethodPost, "/signup", url.Values{
		"name":     {name},
		"username": {username},
		"password": {password},
	}, nil)
}

func (e *testEnv) login(t *testing.T, username, password string) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	rec := e.do(http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {password},
	}, nil)
	return rec, sessionCookie(rec)
}

func (e *testEnv) addUser(t *testing.T, name, username, password string, role users.Role) {
	t.Helper()
	if _, err := e.creds.Provision(context.Background(), name, username, password, role); err != nil {
		t.Fatalf("provision %s: %v", username, err)
	}
}

// recordingStore counts writes and can fail deletes.
type recordingStore struct {
	session.Store

	mu        sync.Mutex
	creates   []session.Session
	updates   []session.Session
	deleteErr error
}

func (s *recordingStore) Create(ctx context.Context, sess session.Session) error {
	s.mu.Lock()
	s.creates = append(s.creates, sess)
	s.mu.Unlock()
	return s.Store.Create(ctx, sess)
}

func (s *recordingStore) Update(ctx context.Context, sess session.Session) error {
	s.mu.Lock()
	s.updates = append(s.updates, sess)
	s.mu.Unlock()
	return s.Store.Update(ctx, sess)
}

func (s *recordingStore) Delete(ctx context.Context, sessionID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Store.Delete(ctx, sessionID)
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestSignupLoginScenario(t *testing.T) {
	env := newTestEnv(t)

	rec := env.signup(t, "Ann", "ann1", "secret123")
	if rec.Code != http.StatusOK || rec.Body.String() != "Successfully created user!" {
		t.Fatalf("signup: status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec, cookie := env.login(t, "ann1", "secret123")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/members" {
		t.Fatalf("login: status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	if cookie == nil || cookie.MaxAge != 3600 {
		t.Fatalf("unexpected session cookie: %+v", cookie)
	}

	sess, err := env.sessions.Get(context.Background(), cookie.Value)
	if err != nil || sess == nil {
		t.Fatalf("session not stored: %v", err)
	}
	if !sess.Authenticated || sess.Admin || sess.Name != "Ann" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	rec = env.do(http.MethodGet, "/members", nil, cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Hello, Ann.") {
		t.Fatalf("members: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, bad := env.login(t, "ann1", "wrong")
	if rec.Code != http.StatusFound {
		t.Fatalf("wrong password status = %d", rec.Code)
	}
	loc, _ := url.Parse(rec.Header().Get("Location"))
	if loc.Path != "/login" || loc.Query().Get("msg") != "Invalid Username/Password!" {
		t.Fatalf("wrong password location = %q", rec.Header().Get("Location"))
	}
	if bad != nil {
		t.Fatal("failed login issued a session cookie")
	}
}

func TestSignupValidationRedirects(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]url.Values{
		"missing username": {"name": {"Ann"}, "password": {"pw"}},
		"symbols":          {"name": {"Ann"}, "username": {"ann!"}, "password": {"pw"}},
		"long password":    {"name": {"Ann"}, "username": {"ann1"}, "password": {strings.Repeat("x", 21)}},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/signup", form, nil)
			if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/signup" {
				t.Fatalf("status=%d location=%q", rec.Code, rec.Header().Get("Location"))
			}
		})
	}

	list, _ := env.users.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("invalid signups stored users: %#v", list)
	}
}

func TestLoginValidationUsesGenericMessage(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.login(t, strings.Repeat("a", 21), "pw")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != loginFailureURL {
		t.Fatalf("status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	rec, _ = env.login(t, "ghost", "pw")
	if rec.Header().Get("Location") != loginFailureURL {
		t.Fatalf("unknown user location=%q", rec.Header().Get("Location"))
	}
}

func TestMembersRequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	for _, cookie := range []*http.Cookie{nil, {Name: session.CookieName, Value: "forged"}} {
		rec := env.do(http.MethodGet, "/members", nil, cookie)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
			t.Fatalf("status=%d location=%q", rec.Code, rec.Header().Get("Location"))
		}
		if strings.Contains(rec.Body.String(), "Hello") {
			t.Fatal("member content rendered without login")
		}
	}
}

func TestAdminForbiddenForMembers(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "Ann", "ann1", "secret123", users.RoleUser)

	_, cookie := env.login(t, "ann1", "secret123")
	rec := env.do(http.MethodGet, "/admin", nil, cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if rec.Body.String() != "You are not authorized to view this page" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestAdminRedirectsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/admin", nil, nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestAdminListsUsersWithoutHashes(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "Root", "root", "toor", users.RoleAdmin)
	env.addUser(t, "Ann", "ann1", "secret123", users.RoleUser)

	rec, cookie := env.login(t, "root", "toor")
	if rec.Code != http.StatusFound {
		t.Fatalf("login status = %d", rec.Code)
	}
	sess, _ := env.sessions.Get(context.Background(), cookie.Value)
	if sess == nil || !sess.Admin || !sess.Authenticated {
		t.Fatalf("admin session not flagged: %+v", sess)
	}

	rec = env.do(http.MethodGet, "/admin", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<td>ann1</td><td>user</td>") || !strings.Contains(body, "<td>root</td><td>admin</td>") {
		t.Fatalf("listing incomplete: %s", body)
	}

	matches, _ := env.users.FindByUsername(context.Background(), "ann1")
	if strings.Contains(body, matches[0].PasswordHash) || strings.Contains(body, "$2a$") {
		t.Fatal("password hash leaked into admin page")
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "Ann", "ann1", "secret123", users.RoleUser)

	_, cookie := env.login(t, "ann1", "secret123")

	rec := env.do(http.MethodGet, "/logout", nil, cookie)
	if rec.Code != http.StatusOK || rec.Body.String() != "You have been logged out" {
		t.Fatalf("logout: status=%d body=%q", rec.Code, rec.Body.String())
	}
	if cleared := sessionCookie(rec); cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", cleared)
	}

	sess, err := env.sessions.Get(context.Background(), cookie.Value)
	if err != nil || sess != nil {
		t.Fatalf("session still stored: %+v err=%v", sess, err)
	}

	rec = env.do(http.MethodGet, "/members", nil, cookie)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("old cookie still authenticates: status=%d", rec.Code)
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/logout", nil, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "You have been logged out" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestLoginReplacesPreviousSession(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "Ann", "ann1", "secret123", users.RoleUser)

	_, first := env.login(t, "ann1", "secret123")

	rec := env.do(http.MethodPost, "/login", url.Values{
		"username": {"ann1"},
		"password": {"secret123"},
	}, first)
	second := sessionCookie(rec)
	if second == nil || second.Value == first.Value {
		t.Fatalf("expected a fresh session id, got %+v", second)
	}

	old, _ := env.sessions.Get(context.Background(), first.Value)
	if old != nil {
		t.Fatal("previous session was not removed")
	}
}

func TestAdminLoginWritesFlagBack(t *testing.T) {
	rec := &recordingStore{}
	env := newTestEnvWith(t, func(s session.Store) session.Store {
		rec.Store = s
		return rec
	})
	env.addUser(t, "Root", "root1", "secret123", users.RoleAdmin)
	env.addUser(t, "Ann", "ann1", "secret123", users.RoleUser)

	_, cookie := env.login(t, "root1", "secret123")
	if cookie == nil {
		t.Fatal("admin login set no cookie")
	}
	if len(rec.creates) != 1 || rec.creates[0].Admin {
		t.Fatalf("creates = %+v, want one non-admin session", rec.creates)
	}
	if len(rec.updates) != 1 || !rec.updates[0].Admin || rec.updates[0].SessionID != cookie.Value {
		t.Fatalf("updates = %+v, want admin write-back for %s", rec.updates, cookie.Value)
	}

	stored, err := env.sessions.Get(context.Background(), cookie.Value)
	if err != nil || stored == nil || !stored.Admin || !stored.Authenticated {
		t.Fatalf("stored session = %+v, err = %v", stored, err)
	}

	_, _ = env.login(t, "ann1", "secret123")
	if len(rec.updates) != 1 {
		t.Fatalf("member login wrote back %d extra sessions", len(rec.updates)-1)
	}
}

func TestLoginSucceedsWhenPreviousSessionDeleteFails(t *testing.T) {
	rec := &recordingStore{deleteErr: errors.New("redis down")}
	env := newTestEnvWith(t, func(s session.Store) session.Store {
		rec.Store = s
		return rec
	})
	env.addUser(t, "Ann", "ann1", "secret123", users.RoleUser)

	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	res := env.do(http.MethodPost, "/login", url.Values{
		"username": {"ann1"},
		"password": {"secret123"},
	}, &http.Cookie{Name: session.CookieName, Value: "stale"})
	if res.Code != http.StatusFound || res.Header().Get("Location") != "/members" {
		t.Fatalf("status=%d location=%q", res.Code, res.Header().Get("Location"))
	}
	if sessionCookie(res) == nil {
		t.Fatal("login set no cookie")
	}
	if !strings.Contains(logs.String(), "previous session delete failed") {
		t.Fatalf("delete failure not logged: %s", logs.String())
	}
}

func TestPageRoutesAnswerHead(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/", "/signup", "/login"} {
		rec := env.do(http.MethodHead, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("HEAD %s: status=%d", path, rec.Code)
		}
	}

	rec := env.do(http.MethodHead, "/members", nil, nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("HEAD /members: status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestAuthenticatedUserIsRedirectedFromPublicPages(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "Ann", "ann1", "secret123", users.RoleUser)
	_, cookie := env.login(t, "ann1", "secret123")

	for _, path := range []string{"/", "/signup", "/login"} {
		rec := env.do(http.MethodGet, path, nil, cookie)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/members" {
			t.Fatalf("%s: status=%d location=%q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestPublicPagesRender(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/", "/signup", "/login"} {
		rec := env.do(http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
			t.Fatalf("%s: status=%d content-type=%q", path, rec.Code, rec.Header().Get("Content-Type"))
		}
	}
}

func TestLoginMessageIsEscaped(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/login?msg="+url.QueryEscape("<script>alert(1)</script>"), nil, nil)
	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatalf("msg rendered unescaped: %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Fatalf("msg missing: %s", body)
	}
}

func TestStaticAssetsAndNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/Red.svg", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Fatalf("asset: status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/does/not/exist", nil, nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Oops Error 404!") {
		t.Fatalf("404: status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestMembersImageIsOneOfDecorations(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "Ann", "ann1", "secret123", users.RoleUser)
	_, cookie := env.login(t, "ann1", "secret123")

	body := env.do(http.MethodGet, "/members", nil, cookie).Body.String()
	found := 0
	for _, img := range decorations {
		if strings.Contains(body, `src="`+img+`"`) {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("expected exactly one decoration, found %d: %s", found, body)
	}
}

// Known defect: usernames are not unique, so concurrent signups with the
// same username both succeed and the username can no longer log in.
func TestConcurrentDuplicateSignups(t *testing.T) {
	env := newTestEnv(t)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = env.signup(t, "Ann", "ann1", "secret123").Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("signup %d status = %d", i, code)
		}
	}

	rec, cookie := env.login(t, "ann1", "secret123")
	if rec.Header().Get("Location") != loginFailureURL || cookie != nil {
		t.Fatalf("ambiguous login should fail, location=%q", rec.Header().Get("Location"))
	}
}
