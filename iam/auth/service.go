package auth

import (
	"context"

	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/pkg/config"
)

// Service verifica credenciales del operador y emite tokens.
// No hay base de usuarios: un único par de credenciales viene de la
// configuración del despliegue.
type Service struct {
	tokens    TokenService
	passwords PasswordService
	cfg       config.AuthConfig
}

func NewService(tokens TokenService, passwords PasswordService, cfg config.AuthConfig) *Service {
	return &Service{
		tokens:    tokens,
		passwords: passwords,
		cfg:       cfg,
	}
}

// Login verifica usuario y contraseña y devuelve el par de tokens
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if username != s.cfg.OperatorUsername ||
		!s.passwords.VerifyPassword(s.cfg.OperatorPasswordHash, password) {
		logx.Error("🔒 Failed login attempt for user %q", username)
		return nil, ErrInvalidCredentials()
	}

	accessToken, err := s.tokens.GenerateAccessToken(username, "Operator")
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(username)
	if err != nil {
		return nil, err
	}

	logx.Info("🔓 Operator %s logged in", username)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Refresh valida un refresh token y emite un nuevo par
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateAccessToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.Username != s.cfg.OperatorUsername {
		return nil, ErrTokenValidationFailed().WithDetail("error", "unknown subject")
	}

	accessToken, err := s.tokens.GenerateAccessToken(claims.Username, "Operator")
	if err != nil {
		return nil, err
	}

	newRefreshToken, err := s.tokens.GenerateRefreshToken(claims.Username)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}
