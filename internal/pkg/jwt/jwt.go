package jwt

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	GenerateAccessToken(employeeID string, employeeCode string, email string, role employee.Role) (token string, expiresAt int64, err error)
	PrincipalFromClaims(claims map[string]interface{}) (auth.Principal, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(employeeID string, employeeCode string, email string, role employee.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"employee_id":   employeeID,
		"employee_code": employeeCode,
		"email":         email,
		"role":          string(role),
		"type":          "access",
		"exp":           expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// PrincipalFromClaims turns verified access-token claims into the caller identity.
func (j *JWTService) PrincipalFromClaims(claims map[string]interface{}) (auth.Principal, error) {
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		return auth.Principal{}, auth.ErrInvalidToken
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return auth.Principal{}, auth.ErrInvalidToken
	}

	role, ok := claims["role"].(string)
	if !ok || !employee.Role(role).IsValid() {
		return auth.Principal{}, auth.ErrInvalidToken
	}

	employeeCode, _ := claims["employee_code"].(string)
	email, _ := claims["email"].(string)

	return auth.Principal{
		EmployeeID:   employeeID,
		EmployeeCode: employeeCode,
		Email:        email,
		Role:         employee.Role(role),
	}, nil
}
