package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cha-revelacao/guest-sync/internal/localstore"
	"github.com/cha-revelacao/guest-sync/internal/session"
	"github.com/cha-revelacao/guest-sync/pkg/config"
	apperrors "github.com/cha-revelacao/guest-sync/pkg/errors"
	"github.com/cha-revelacao/guest-sync/pkg/logger"
	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"
)

const (
	writeRetryAttempts = 3
	writeRetryInterval = time.Second
)

type Opts struct {
	fx.In

	Config   *config.Config
	Logger   logger.Logger
	Sessions session.Store
	Store    localstore.Store
}

type HttpImpl struct {
	http     *http.Client
	baseURL  string
	cfg      *config.Config
	logger   logger.Logger
	sessions session.Store
	store    localstore.Store

	eventGroup singleflight.Group
}

func New(opts Opts) *HttpImpl {
	return &HttpImpl{
		http:     &http.Client{Timeout: opts.Config.Api.Timeout},
		baseURL:  strings.TrimRight(opts.Config.Api.BaseURL, "/"),
		cfg:      opts.Config,
		logger:   opts.Logger.WithComponent("ApiClient"),
		sessions: opts.Sessions,
		store:    opts.Store,
	}
}

var _ Client = (*HttpImpl)(nil)

// doJSON performs one round trip. body and out may be nil. Transport
// failures and non-2xx statuses are mapped onto the error taxonomy.
func (c *HttpImpl) doJSON(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		c.authorize(ctx, req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUnreachable, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Sprintf("decoding %s %s response", method, path))
	}
	return nil
}

func (c *HttpImpl) authorize(ctx context.Context, req *http.Request) {
	if s := c.sessions.Current(ctx); s != nil && s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
}

// statusError maps an HTTP status onto the taxonomy, preferring the server's
// own message when the body carries one.
func (c *HttpImpl) statusError(resp *http.Response) error {
	message := serverMessage(resp.Body)

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = apperrors.ErrUnauthorized
		if message == "" {
			message = "não autorizado"
		}
	case resp.StatusCode == http.StatusForbidden:
		sentinel = apperrors.ErrForbidden
		if message == "" {
			message = "acesso negado"
		}
	case resp.StatusCode == http.StatusNotFound:
		sentinel = apperrors.ErrNotFound
		if message == "" {
			message = "recurso não encontrado"
		}
	case resp.StatusCode == http.StatusConflict:
		sentinel = apperrors.ErrConflict
		if message == "" {
			message = "este email já está em uso"
		}
	case resp.StatusCode >= 500:
		sentinel = apperrors.ErrInternalServer
		if message == "" {
			message = "ocorreu um erro interno no servidor"
		}
	default:
		sentinel = apperrors.ErrValidation
		if message == "" {
			message = "requisição inválida"
		}
	}

	return apperrors.Wrap(sentinel, message)
}

// serverMessage pulls the field-level message the backend attaches to error
// responses. Both the Portuguese and English field names occur in the wild.
func serverMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}

	var payload struct {
		Message  string `json:"message"`
		Mensagem string `json:"mensagem"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Mensagem
}

// TestConnection probes unauthenticated first, then authenticated. Any HTTP
// status counts as reachable; only a network-level failure does not.
func (c *HttpImpl) TestConnection(ctx context.Context) bool {
	if c.probe(ctx, "/api/eventos", false) {
		return true
	}
	return c.probe(ctx, "/api/galeria", true)
}

func (c *HttpImpl) probe(ctx context.Context, path string, authed bool) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false
	}
	if authed {
		c.authorize(ctx, req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("Connection probe failed", "path", path, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return true
}
