package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"blogapi/internal/db/dbtest"
	"blogapi/internal/services"
	"blogapi/internal/services/servicestest"
	"blogapi/internal/store"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InstallValidator()
}

type app struct {
	t       *testing.T
	engine  *gin.Engine
	users   *store.UserStore
	mailer  *servicestest.Mailer
	storage *servicestest.Storage
}

func newApp(t *testing.T) *app {
	t.Helper()
	gdb := dbtest.Open(t)
	log := zap.NewNop()

	users := store.NewUserStore(gdb)
	tokens := store.NewTokenStore(gdb)
	posts := store.NewPostStore(gdb)
	hasher := services.NewBcryptHasher(4)
	signer := services.NewSessionSigner("test-secret", 72*time.Hour)
	mailer := &servicestest.Mailer{}
	storage := servicestest.NewStorage()

	engine := New(Deps{
		Auth:           services.NewAuthService(users, tokens, hasher, signer, mailer, "http://client.test"),
		Sessions:       signer,
		Users:          services.NewUserService(users, posts, hasher, storage, log),
		Posts:          services.NewPostService(posts, storage, log),
		Comments:       services.NewCommentService(store.NewCommentStore(gdb), users, posts),
		Categories:     services.NewCategoryService(store.NewCategoryStore(gdb)),
		Log:            log,
		ClientOrigin:   "http://client.test",
		UploadMaxBytes: 1 << 20,
	})
	return &app{t: t, engine: engine, users: users, mailer: mailer, storage: storage}
}

func (a *app) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *app) json(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token)
}

func (a *app) multipart(method, path string, fields map[string]string, filename, contentType string, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(a.t, err)
		_, err = part.Write([]byte("\x89PNG fake image"))
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req, token)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["message"].(string)
}

type loginResponse struct {
	ID       uint   `json:"id"`
	IsAdmin  bool   `json:"isAdmin"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Photo    struct {
		URL string `json:"url"`
	} `json:"profilePhoto"`
}

// signup registers, verifies and logs in, returning the session.
func (a *app) signup(username, email, password string) loginResponse {
	a.t.Helper()
	w := a.json(http.MethodPost, "/api/auth/register", map[string]string{"username": username, "email": email, "password": password}, "")
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	mail := a.mailer.Last(a.t)
	m := servicestest.VerifyLink.FindStringSubmatch(mail.HTML)
	require.Len(a.t, m, 3)
	w = a.json(http.MethodGet, "/api/auth/"+m[1]+"/verify/"+m[2], nil, "")
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	w = a.json(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[loginResponse](a.t, w)
}

func (a *app) makeAdmin(id uint) string {
	a.t.Helper()
	_, err := a.users.Update(context.Background(), id, map[string]any{"is_admin": true})
	require.NoError(a.t, err)
	token, err := services.NewSessionSigner("test-secret", time.Hour).Sign(id, true)
	require.NoError(a.t, err)
	return token
}

func TestScenario_RegisterVerifyLogin(t *testing.T) {
	a := newApp(t)
	w := a.json(http.MethodPost, "/api/auth/register", map[string]string{"username": "alice", "email": "alice@example.com", "password": "Str0ngP@ss"}, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, services.MsgCheckEmail, messageOf(t, w))

	m := servicestest.VerifyLink.FindStringSubmatch(a.mailer.Last(t).HTML)
	require.Len(t, m, 3)
	verify := "/api/auth/" + m[1] + "/verify/" + m[2]

	w = a.json(http.MethodGet, verify, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Email Verified. Please login", messageOf(t, w))

	w = a.json(http.MethodGet, verify, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Link", messageOf(t, w))

	w = a.json(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": "Str0ngP@ss"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	session := decode[loginResponse](t, w)
	assert.NotEmpty(t, session.Token)
	assert.False(t, session.IsAdmin)
	assert.Equal(t, "alice", session.Username)
	assert.NotEmpty(t, session.Photo.URL)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestScenario_UnverifiedLogin(t *testing.T) {
	a := newApp(t)
	w := a.json(http.MethodPost, "/api/auth/register", map[string]string{"username": "bob", "email": "bob@example.com", "password": "Str0ngP@ss"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.json(http.MethodPost, "/api/auth/login", map[string]string{"email": "bob@example.com", "password": "Str0ngP@ss"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please verify your email", messageOf(t, w))
	assert.NotContains(t, w.Body.String(), "token")
	assert.Equal(t, 2, a.mailer.Count())
	assert.Equal(t, services.SubjectVerifyEmail, a.mailer.Last(t).Subject)
}

func TestScenario_ResetUnknownEmail(t *testing.T) {
	a := newApp(t)
	w := a.json(http.MethodPost, "/api/password/reset-password-link", map[string]string{"email": "nobody@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User With This Email Not Found", messageOf(t, w))
}

func TestScenario_ResetThenLogin(t *testing.T) {
	a := newApp(t)
	a.signup("alice", "alice@example.com", "Str0ngP@ss")

	w := a.json(http.MethodPost, "/api/password/reset-password-link", map[string]string{"email": "alice@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Reset Password Link Sent To Your Email", messageOf(t, w))

	m := servicestest.ResetLink.FindStringSubmatch(a.mailer.Last(t).HTML)
	require.Len(t, m, 3)
	link := "/api/password/reset-password/" + m[1] + "/" + m[2]

	w = a.json(http.MethodGet, link, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Valid Link", messageOf(t, w))

	w = a.json(http.MethodPost, link, map[string]string{"password": "weak"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.json(http.MethodPost, link, map[string]string{"password": "N3wStr0ng!"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password Reset Successfully Please Login", messageOf(t, w))

	w = a.json(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": "Str0ngP@ss"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Email or Password", messageOf(t, w))

	w = a.json(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": "N3wStr0ng!"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.json(http.MethodGet, link, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_ValidationAndBadLinks(t *testing.T) {
	a := newApp(t)

	w := a.json(http.MethodPost, "/api/auth/register", map[string]string{"username": "al", "email": "nope", "password": "Str0ngP@ss"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `"email" must be a valid email`, messageOf(t, w))

	w = a.json(http.MethodPost, "/api/auth/register", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.json(http.MethodPost, "/api/auth/register", map[string]string{"username": "wei", "email": "wei@example.com", "password": "Aa1" + strings.Repeat("密", 47)}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `"password" should not be longer than 72 bytes`, messageOf(t, w))

	w = a.json(http.MethodPost, "/api/auth/login", map[string]string{"email": "ghost@example.com", "password": "Str0ngP@ss"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Email or Password", messageOf(t, w))

	for _, path := range []string{"/api/auth/abc/verify/tok", "/api/auth/42/verify/tok", "/api/password/reset-password/abc/tok"} {
		w = a.json(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "Invalid Link", messageOf(t, w))
	}
}

func TestNotFoundRoute(t *testing.T) {
	a := newApp(t)
	w := a.json(http.MethodGet, "/api/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found - /api/nothing-here", messageOf(t, w))
}

func TestUsers(t *testing.T) {
	a := newApp(t)
	alice := a.signup("alice", "alice@example.com", "Str0ngP@ss")
	bob := a.signup("bob", "bob@example.com", "Str0ngP@ss")
	admin := a.makeAdmin(bob.ID)
	aliceURL := fmt.Sprintf("/api/users/profile/%d", alice.ID)

	w := a.json(http.MethodGet, "/api/users/profile", nil, alice.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Allow for Admins Only", messageOf(t, w))

	w = a.json(http.MethodGet, "/api/users/profile", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)
	assert.NotContains(t, w.Body.String(), `"password"`)

	w = a.json(http.MethodGet, "/api/users/count", nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Body.String())

	w = a.json(http.MethodGet, aliceURL, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = a.json(http.MethodGet, "/api/users/profile/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User Not Found!", messageOf(t, w))
	w = a.json(http.MethodGet, "/api/users/profile/xyz", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Id", messageOf(t, w))

	w = a.json(http.MethodPut, aliceURL, map[string]string{"bio": "hi"}, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Allow for User himself Only", messageOf(t, w))
	w = a.json(http.MethodPut, aliceURL, map[string]string{"bio": "hi", "username": "Alice"}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[map[string]any](t, w)
	assert.Equal(t, "hi", updated["bio"])
	assert.Equal(t, "Alice", updated["username"])

	w = a.multipart(http.MethodPost, "/api/users/profile/profile-photo-upload", nil, "me.png", "image/png", alice.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "your profile photo uploaded successfully", messageOf(t, w))
	w = a.multipart(http.MethodPost, "/api/users/profile/profile-photo-upload", nil, "", "", alice.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.multipart(http.MethodPost, "/api/users/profile/profile-photo-upload", nil, "me.txt", "text/plain", alice.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.json(http.MethodDelete, aliceURL, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No Token Provided!", messageOf(t, w))
	w = a.json(http.MethodDelete, aliceURL, nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User Deleted Successfully!", messageOf(t, w))
	assert.Zero(t, a.storage.Len())
}

func TestPostsCommentsCategories(t *testing.T) {
	a := newApp(t)
	alice := a.signup("alice", "alice@example.com", "Str0ngP@ss")
	bob := a.signup("bob", "bob@example.com", "Str0ngP@ss")
	admin := a.makeAdmin(bob.ID)
	fields := map[string]string{"title": "First post", "description": "Some **markdown** body", "category": "go"}

	w := a.multipart(http.MethodPost, "/api/posts", fields, "", "", alice.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No Image Provided", messageOf(t, w))

	w = a.multipart(http.MethodPost, "/api/posts", map[string]string{"title": "x", "description": "Some markdown body", "category": "go"}, "c.png", "image/png", alice.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `"title" length must be at least 2 characters long`, messageOf(t, w))

	w = a.multipart(http.MethodPost, "/api/posts", fields, "c.png", "image/png", alice.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Post Created Successfully!", messageOf(t, w))
	postID := uint(decode[map[string]any](t, w)["post"].(map[string]any)["id"].(float64))
	postURL := fmt.Sprintf("/api/posts/%d", postID)

	w = a.json(http.MethodGet, "/api/posts?pageNumber=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
	w = a.json(http.MethodGet, "/api/posts?category=rust", nil, "")
	assert.Empty(t, decode[[]map[string]any](t, w))
	w = a.json(http.MethodGet, "/api/posts/count", nil, "")
	assert.Equal(t, "1", w.Body.String())

	w = a.json(http.MethodGet, postURL, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]any](t, w)["descriptionHtml"], "<strong>markdown</strong>")
	w = a.json(http.MethodGet, "/api/posts/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post Not Found", messageOf(t, w))

	w = a.json(http.MethodPut, postURL, map[string]string{"title": "Edited"}, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access Denied", messageOf(t, w))
	w = a.json(http.MethodPut, postURL, map[string]string{"title": "Edited"}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Edited", decode[map[string]any](t, w)["title"])

	w = a.multipart(http.MethodPut, fmt.Sprintf("/api/posts/update-image/%d", postID), nil, "new.png", "image/png", alice.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, a.storage.Len())

	w = a.json(http.MethodPut, fmt.Sprintf("/api/posts/like/%d", postID), nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string]any](t, w)["likes"], 1)

	w = a.json(http.MethodPost, "/api/comments", map[string]any{"postId": postID, "text": "Nice!"}, bob.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode[map[string]any](t, w)
	assert.Equal(t, "bob", comment["username"])
	commentURL := fmt.Sprintf("/api/comments/%d", uint(comment["id"].(float64)))

	w = a.json(http.MethodGet, "/api/comments", nil, alice.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.json(http.MethodGet, "/api/comments", nil, admin)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.json(http.MethodPut, commentURL, map[string]string{"text": "Edited"}, alice.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.json(http.MethodDelete, commentURL, nil, alice.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.json(http.MethodDelete, commentURL, nil, bob.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Comment Has Been Deleted!", messageOf(t, w))
	w = a.json(http.MethodDelete, commentURL, nil, bob.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Comment Not Found", messageOf(t, w))

	w = a.json(http.MethodPost, "/api/categories", map[string]string{"title": "Go"}, alice.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.json(http.MethodPost, "/api/categories", map[string]string{"title": "Go"}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	categoryID := uint(decode[map[string]any](t, w)["id"].(float64))
	w = a.json(http.MethodGet, "/api/categories", nil, "")
	assert.Len(t, decode[[]map[string]any](t, w), 1)
	w = a.json(http.MethodDelete, fmt.Sprintf("/api/categories/%d", categoryID), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, categoryID, decode[map[string]any](t, w)["categoryId"])
	w = a.json(http.MethodDelete, fmt.Sprintf("/api/categories/%d", categoryID), nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Category Not Found!", messageOf(t, w))

	w = a.json(http.MethodDelete, postURL, nil, bob.Token)
	require.Equal(t, http.StatusForbidden, w.Code, "bob's token predates his promotion")
	assert.Equal(t, "access denied, forbidden", messageOf(t, w))
	w = a.json(http.MethodDelete, postURL, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "post has been deleted successfully", messageOf(t, w))
	assert.Zero(t, a.storage.Len())
}
