package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/vidstream-accounts/internal/application"
	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	repo "github.com/oksasatya/vidstream-accounts/internal/domain/repository"
	"github.com/oksasatya/vidstream-accounts/internal/interface/middleware"
	"github.com/oksasatya/vidstream-accounts/pkg/apperror"
	"github.com/oksasatya/vidstream-accounts/pkg/helpers"
	"github.com/oksasatya/vidstream-accounts/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	helpers.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// memRepo is a minimal in-memory account store.
type memRepo struct {
	mu   sync.Mutex
	byID map[string]entity.Account
}

func (r *memRepo) Create(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byID {
		if e.Username == a.Username || e.Email == a.Email {
			return repo.ErrDuplicateAccount
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt, a.UpdatedAt = time.Now(), time.Now()
	r.byID[a.ID] = *a
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrAccountNotFound
	}
	return &a, nil
}

func (r *memRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if (username != "" && a.Username == username) || (email != "" && a.Email == email) {
			return &a, nil
		}
	}
	return nil, repo.ErrAccountNotFound
}

func (r *memRepo) update(id string, fn func(a *entity.Account)) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrAccountNotFound
	}
	fn(&a)
	r.byID[id] = a
	return &a, nil
}

func (r *memRepo) SetRefreshToken(_ context.Context, id string, token *string) error {
	_, err := r.update(id, func(a *entity.Account) { a.RefreshToken = token })
	return err
}

func (r *memRepo) UpdatePassword(_ context.Context, id, hash string) error {
	_, err := r.update(id, func(a *entity.Account) { a.Password = hash })
	return err
}

func (r *memRepo) UpdateDetails(_ context.Context, id string, d repo.AccountDetails) (*entity.Account, error) {
	return r.update(id, func(a *entity.Account) { a.Fullname, a.Email = d.Fullname, d.Email })
}

func (r *memRepo) UpdateAvatar(_ context.Context, id, url string) (*entity.Account, error) {
	return r.update(id, func(a *entity.Account) { a.AvatarURL = url })
}

func (r *memRepo) UpdateCoverImage(_ context.Context, id, url string) (*entity.Account, error) {
	return r.update(id, func(a *entity.Account) { a.CoverImageURL = url })
}

type memUploader struct{}

func (memUploader) Upload(_ context.Context, folder string, f *application.FileInput) (application.UploadResult, error) {
	b, err := io.ReadAll(f.Body)
	if err != nil || len(b) == 0 {
		return application.UploadResult{}, errors.New("empty upload")
	}
	return application.UploadResult{URL: "https://cdn.test/" + folder + "/" + f.Filename}, nil
}

type testServer struct {
	engine *gin.Engine
	repo   *memRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	r := &memRepo{byID: map[string]entity.Account{}}
	jwt := helpers.NewJWTManager("access", "refresh", time.Minute, time.Hour)
	deps := application.Deps{Uploader: memUploader{}}
	accounts := application.NewAccountService(r, jwt, deps)
	profiles := application.NewProfileService(r, deps)

	ah := NewAccountHandler(accounts, helpers.NewCookieManager("", true), nil, 1<<10)
	ph := NewProfileHandler(profiles, nil, 1<<10)

	e := gin.New()
	e.Use(middleware.RequestIDMiddleware())
	users := e.Group("/api/users")
	users.POST("/register", Handle(nil, ah.Register))
	users.POST("/login", Handle(nil, ah.Login))
	users.POST("/refresh-token", Handle(nil, ah.Refresh))
	auth := users.Group("", middleware.Auth(jwt, accounts, nil))
	auth.POST("/logout", Handle(nil, ah.Logout))
	auth.POST("/change-password", Handle(nil, ah.ChangePassword))
	auth.GET("/current-user", Handle(nil, ph.CurrentUser))
	auth.PATCH("/update-account", Handle(nil, ph.UpdateAccount))
	auth.PATCH("/avatar", Handle(nil, ph.UpdateAvatar))
	auth.PATCH("/cover-image", Handle(nil, ph.UpdateCoverImage))
	auth.GET("/search", Handle(nil, ph.Search))
	return &testServer{engine: e, repo: r}
}

type envelope struct {
	Status    int             `json:"status"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Error     json.RawMessage `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.Status, "status mirrored in body")
	return env
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, content := range files {
		fw, err := w.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (s *testServer) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, username, email string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, map[string]string{
		"fullname": "A B", "username": username, "email": email, "password": "x",
	}, map[string]string{"avatar": "png"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", body)
	req.Header.Set("Content-Type", ct)
	return s.do(req)
}

func jsonReq(method, path string, v any) *http.Request {
	b, _ := json.Marshal(v)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func cookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func (s *testServer) login(t *testing.T) (access, refresh *http.Cookie) {
	t.Helper()
	rec := s.do(jsonReq(http.MethodPost, "/api/users/login", map[string]string{"username": "ab", "password": "x"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ck := cookies(rec)
	return ck[helpers.AccessTokenCookie], ck[helpers.RefreshTokenCookie]
}

func TestRegister_CreatedThenConflict(t *testing.T) {
	s := newTestServer(t)

	rec := s.register(t, "ab", "a@b.com")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.RequestID)
	var pub map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &pub))
	assert.Equal(t, "ab", pub["username"])
	assert.Equal(t, "https://cdn.test/avatars/avatar.png", pub["avatar_url"])
	assert.NotContains(t, pub, "password")
	assert.NotContains(t, pub, "refresh_token")

	rec = s.register(t, "ab", "a@b.com")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t)

	body, ct := multipartBody(t, map[string]string{"fullname": "A B", "username": "ab", "email": "a@b.com", "password": "x"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", body)
	req.Header.Set("Content-Type", ct)
	rec := s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Avatar file is required", decode(t, rec).Message)

	rec = s.register(t, " ", "a@b.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required", decode(t, rec).Message)

	big, ct := multipartBody(t, map[string]string{"fullname": "A", "username": "u", "email": "e@x.io", "password": "x"},
		map[string]string{"avatar": strings.Repeat("a", 2<<10)})
	req = httptest.NewRequest(http.MethodPost, "/api/users/register", big)
	req.Header.Set("Content-Type", ct)
	assert.Equal(t, http.StatusBadRequest, s.do(req).Code)

	req = jsonReq(http.MethodPost, "/api/users/register", map[string]string{"username": "ab"})
	assert.Equal(t, http.StatusBadRequest, s.do(req).Code)

	assert.Empty(t, s.repo.byID)
}

func TestLogin_SetsCookiesAndTokens(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "ab", "a@b.com")

	rec := s.do(jsonReq(http.MethodPost, "/api/users/login", map[string]string{"email": "a@b.com", "password": "x"}))
	require.Equal(t, http.StatusOK, rec.Code)
	ck := cookies(rec)
	for _, name := range []string{helpers.AccessTokenCookie, helpers.RefreshTokenCookie} {
		require.Contains(t, ck, name)
		assert.True(t, ck[name].HttpOnly, name)
		assert.True(t, ck[name].Secure, name)
	}

	var data loginResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, "ab", data.User.Username)
	assert.Equal(t, ck[helpers.AccessTokenCookie].Value, data.AccessToken)
	assert.Equal(t, ck[helpers.RefreshTokenCookie].Value, data.RefreshToken)

	wrong := s.do(jsonReq(http.MethodPost, "/api/users/login", map[string]string{"username": "ab", "password": "nope"}))
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	missing := s.do(jsonReq(http.MethodPost, "/api/users/login", map[string]string{"username": "ghost", "password": "x"}))
	assert.Equal(t, http.StatusNotFound, missing.Code)
	blank := s.do(jsonReq(http.MethodPost, "/api/users/login", map[string]string{"password": "x"}))
	assert.Equal(t, http.StatusBadRequest, blank.Code)
}

func TestRefresh_RotatesAndRejectsReuse(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "ab", "a@b.com")
	_, refresh := s.login(t)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/users/refresh-token", nil), refresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := cookies(rec)[helpers.RefreshTokenCookie]
	require.NotNil(t, next)
	assert.NotEqual(t, refresh.Value, next.Value)

	assert.Equal(t, http.StatusUnauthorized, s.do(httptest.NewRequest(http.MethodPost, "/api/users/refresh-token", nil), refresh).Code)

	viaBody := s.do(jsonReq(http.MethodPost, "/api/users/refresh-token", map[string]string{"refreshToken": next.Value}))
	assert.Equal(t, http.StatusOK, viaBody.Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(httptest.NewRequest(http.MethodPost, "/api/users/refresh-token", nil)).Code)
}

func TestLogout_ClearsCookiesAndSession(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "ab", "a@b.com")
	access, refresh := s.login(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)).Code)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/users/logout", nil), access)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, ck := range cookies(rec) {
		assert.Empty(t, ck.Value)
		assert.Negative(t, ck.MaxAge)
	}

	assert.Equal(t, http.StatusUnauthorized, s.do(httptest.NewRequest(http.MethodPost, "/api/users/refresh-token", nil), refresh).Code)
	// access tokens stay valid until they expire
	assert.Equal(t, http.StatusOK, s.do(httptest.NewRequest(http.MethodPost, "/api/users/logout", nil), access).Code)
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "ab", "a@b.com")
	access, _ := s.login(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/users/current-user", nil), access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"username":"ab"`)

	rec = s.do(jsonReq(http.MethodPatch, "/api/users/update-account", map[string]string{"fullname": "New", "email": "n@b.com"}), access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(decode(t, rec).Data), `"email":"n@b.com"`)

	rec = s.do(jsonReq(http.MethodPatch, "/api/users/update-account", map[string]string{"fullname": "New"}), access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct := multipartBody(t, nil, map[string]string{"coverImage": "jpg"})
	req := httptest.NewRequest(http.MethodPatch, "/api/users/cover-image", body)
	req.Header.Set("Content-Type", ct)
	rec = s.do(req, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(decode(t, rec).Data), "https://cdn.test/covers/coverImage.png")

	body, ct = multipartBody(t, nil, nil)
	req = httptest.NewRequest(http.MethodPatch, "/api/users/avatar", body)
	req.Header.Set("Content-Type", ct)
	rec = s.do(req, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Avatar file is missing", decode(t, rec).Message)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/users/search?q=ab", nil), access)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec)
	assert.Contains(t, rec.Body.String(), `"count":0`)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/users/search?q=%20", nil), access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePassword_Endpoint(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "ab", "a@b.com")
	access, _ := s.login(t)

	rec := s.do(jsonReq(http.MethodPost, "/api/users/change-password", map[string]string{"oldPassword": "x"}), access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(decode(t, rec).Error), "newPassword")

	rec = s.do(jsonReq(http.MethodPost, "/api/users/change-password", map[string]string{"oldPassword": "bad", "newPassword": "y"}), access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(jsonReq(http.MethodPost, "/api/users/change-password", map[string]string{"oldPassword": "x", "newPassword": "y"}), access)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandle_LogsServerErrorsOnly(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	e := gin.New()
	e.GET("/boom", Handle(logger, func(*gin.Context) error { return errors.New("db down") }))
	e.GET("/bad", Handle(logger, func(*gin.Context) error { return apperror.Validation("nope") }))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "db down", hook.LastEntry().Data[logrus.ErrorKey])
	assert.Equal(t, "/boom", hook.LastEntry().Data["path"])

	hook.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, hook.AllEntries())
}
