package auth

// TokenService define el contrato para el manejo de tokens JWT
type TokenService interface {
	GenerateAccessToken(username, name string) (string, error)
	GenerateRefreshToken(username string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// PasswordService define el contrato para el hash de contraseñas
type PasswordService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) bool
}
