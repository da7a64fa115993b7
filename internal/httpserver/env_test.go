package httpserver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog/internal/events"
	"github.com/Skotchmaster/catalog/internal/httpserver"
	"github.com/Skotchmaster/catalog/internal/metrics"
	"github.com/Skotchmaster/catalog/internal/middleware"
	"github.com/Skotchmaster/catalog/internal/repo"
	"github.com/Skotchmaster/catalog/internal/search"
	"github.com/Skotchmaster/catalog/internal/service"
	"github.com/Skotchmaster/catalog/internal/testutil"
	loggingmw "github.com/Skotchmaster/catalog/pkg/middleware/logging"
)

type testEnv struct {
	E       *echo.Echo
	Repo    *repo.GormRepo
	Events  *events.Recorder
	Metrics *metrics.Collector
	Reg     *prometheus.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	rp := repo.New(db)
	iss := testutil.NewIssuer(t)
	rec := &events.Recorder{}
	reg := prometheus.NewRegistry()
	col := metrics.NewCollector(reg)

	e := echo.New()
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Use(loggingmw.RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: rp, Tokens: iss, Events: rec, Metrics: col}},
		ItemHandler: &httpserver.ItemHTTP{Svc: &service.ItemService{Repo: rp, Index: search.Nop{}, Events: rec}},
		Gate:        middleware.NewGate(iss, rp, col),
		DB:          db,
		Gatherer:    reg,
	})

	return &testEnv{E: e, Repo: rp, Events: rec, Metrics: col, Reg: reg}
}

type response struct {
	Code   int
	Header http.Header
	Body   map[string]any
	Raw    string
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) response {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return env.serve(t, req, token)
}

func (env *testEnv) doForm(t *testing.T, method, path string, form url.Values, token string) response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return env.serve(t, req, token)
}

func (env *testEnv) serve(t *testing.T, req *http.Request, token string) response {
	t.Helper()
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	res := response{Code: rec.Code, Header: rec.Header(), Raw: rec.Body.String()}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res.Body), rec.Body.String())
	}
	return res
}

// first returns data[0] of a success envelope.
func (r response) first(t *testing.T) map[string]any {
	t.Helper()
	data, ok := r.Body["data"].([]any)
	require.True(t, ok, "data is not an array: %s", r.Raw)
	require.NotEmpty(t, data)
	obj, ok := data[0].(map[string]any)
	require.True(t, ok)
	return obj
}

func (env *testEnv) signup(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()
	res := env.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Raw)
	data := res.first(t)
	return data["access_token"].(string), data["refresh_token"].(string)
}

func formatID(id float64) string {
	return strconv.FormatUint(uint64(id), 10)
}
