package controllers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/shopitbackend/config"
	"github.com/princinho/shopitbackend/controllers"
	"github.com/princinho/shopitbackend/database"
	"github.com/princinho/shopitbackend/database/databasetest"
	"github.com/princinho/shopitbackend/mail/mailtest"
	"github.com/princinho/shopitbackend/models"
	"github.com/princinho/shopitbackend/routes"
	"github.com/princinho/shopitbackend/storage"
	"github.com/princinho/shopitbackend/storage/storagetest"
	"github.com/princinho/shopitbackend/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	users  *databasetest.MemoryUserStore
	files  *storagetest.Fake
	mailer *mailtest.Fake
	tokens *utils.TokenIssuer
	hasher utils.PasswordHasher
	router *gin.Engine
	now    time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithStore(t, nil)
}

// newTestAppWithStore lets a test put its own store in front of the memory
// store the app inspects.
func newTestAppWithStore(t *testing.T, wrap func(*databasetest.MemoryUserStore) database.UserStore) *testApp {
	t.Helper()
	app := &testApp{
		users:  databasetest.NewMemoryUserStore(),
		files:  &storagetest.Fake{},
		mailer: &mailtest.Fake{},
		tokens: utils.NewTokenIssuer("controller-test-secret", time.Hour, false),
		hasher: utils.NewPasswordHasher(bcrypt.MinCost),
		now:    time.Now().UTC(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var users database.UserStore = app.users
	if wrap != nil {
		users = wrap(app.users)
	}

	auth := &controllers.AuthController{
		Users:        users,
		Tokens:       app.tokens,
		Hasher:       app.hasher,
		Storage:      app.files,
		Images:       storage.NewImageValidator([]string{"image/png", "image/jpeg"}, 1<<20),
		Mailer:       app.mailer,
		Logger:       logger,
		FrontendURL:  "https://shop.test",
		AvatarFolder: "shopit/avatars",
		ResetTTL:     30 * time.Minute,
		Now:          func() time.Time { return app.now },
	}
	app.router = routes.NewRouter(config.ServerConfig{Env: "test", MaxBodyBytes: 2 << 20}, logger, auth)
	return app
}

type response struct {
	*httptest.ResponseRecorder
	body map[string]any
}

func (r response) message() string {
	m, _ := r.body["message"].(string)
	return m
}

func (r response) user() map[string]any {
	u, _ := r.body["user"].(map[string]any)
	return u
}

func (app *testApp) do(t *testing.T, method, path string, body any, token string) response {
	t.Helper()
	var buf io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: utils.TokenCookieName, Value: token})
	}

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	res := response{ResponseRecorder: w}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res.body), w.Body.String())
	}
	return res
}

// register creates an account through the API and returns its id and token.
func (app *testApp) register(t *testing.T, name, email, password string) (string, string) {
	t.Helper()
	res := app.do(t, http.MethodPost, "/api/v1/register", gin.H{
		"name": name, "email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	id, _ := res.user()["_id"].(string)
	token, _ := res.body["token"].(string)
	return id, token
}

// seedAdmin stores an admin directly and returns a token for it.
func (app *testApp) seedAdmin(t *testing.T) (*models.User, string) {
	t.Helper()
	hash, err := app.hasher.Hash("adminpass")
	require.NoError(t, err)
	admin := &models.User{Name: "Root", Email: "root@shop.test", PasswordHash: hash, Role: models.RoleAdmin}
	require.NoError(t, app.users.Create(t.Context(), admin))
	tok, err := app.tokens.Issue(admin.ID.Hex())
	require.NoError(t, err)
	return admin, tok
}

func tokenCookie(t *testing.T, res response) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == utils.TokenCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", utils.TokenCookieName)
	return nil
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0x01}, 64)...)

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}
