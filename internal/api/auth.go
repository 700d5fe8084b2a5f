package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/cha-revelacao/guest-sync/internal/domain"
)

// Server-issued tokens carry no expiry on the wire; the original client
// assumed one hour.
const defaultTokenLifetime = time.Hour

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Usuario struct {
		Nome       string `json:"nome"`
		Email      string `json:"email"`
		FotoPerfil string `json:"fotoPerfil"`
	} `json:"usuario"`
}

type registerRequest struct {
	Nome       string `json:"nome"`
	Email      string `json:"email"`
	Senha      string `json:"senha"`
	FotoPerfil string `json:"fotoPerfil,omitempty"`
}

type registerResponse struct {
	Token      string `json:"token"`
	Nome       string `json:"nome"`
	Email      string `json:"email"`
	FotoPerfil string `json:"fotoPerfil"`
	ExpiresIn  int64  `json:"expiresIn"` // ms, optional
}

func (c *HttpImpl) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var resp loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Senha: password}, &resp, false)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		Token:     resp.Token,
		ExpiresAt: time.Now().Add(defaultTokenLifetime).UnixMilli(),
		User: domain.UserProfile{
			Name:  resp.Usuario.Nome,
			Email: resp.Usuario.Email,
			Photo: resp.Usuario.FotoPerfil,
		},
	}, nil
}

func (c *HttpImpl) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	var resp registerResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/registrar", registerRequest{
		Nome:       req.Name,
		Email:      req.Email,
		Senha:      req.Password,
		FotoPerfil: req.Photo,
	}, &resp, false)
	if err != nil {
		return AuthResult{}, err
	}

	lifetime := defaultTokenLifetime
	if resp.ExpiresIn > 0 {
		lifetime = time.Duration(resp.ExpiresIn) * time.Millisecond
	}

	result := AuthResult{
		Token:     resp.Token,
		ExpiresAt: time.Now().Add(lifetime).UnixMilli(),
		User: domain.UserProfile{
			Name:  resp.Nome,
			Email: resp.Email,
			Photo: resp.FotoPerfil,
		},
	}
	if result.User.Name == "" {
		result.User.Name = req.Name
	}
	if result.User.Email == "" {
		result.User.Email = req.Email
	}
	if result.User.Photo == "" {
		result.User.Photo = req.Photo
	}
	return result, nil
}

func (c *HttpImpl) ForgotPassword(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.doJSON(ctx, http.MethodPost, "/auth/esqueci-senha", body, nil, false)
}

func (c *HttpImpl) VerifyResetToken(ctx context.Context, token string) (bool, error) {
	var resp struct {
		Valido bool `json:"valido"`
	}
	path := "/auth/verificar-token?token=" + url.QueryEscape(token)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp, false); err != nil {
		return false, err
	}
	return resp.Valido, nil
}

func (c *HttpImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := struct {
		Token     string `json:"token"`
		NovaSenha string `json:"novaSenha"`
	}{Token: token, NovaSenha: newPassword}
	return c.doJSON(ctx, http.MethodPost, "/auth/redefinir-senha", body, nil, false)
}
