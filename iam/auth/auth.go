// Package auth autenticación del operador con JWT y bcrypt.
package auth

import "time"

// TokenClaims claims decodificados de un token de acceso válido
type TokenClaims struct {
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenPair par de tokens emitidos en el login
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
