package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	// RoleRequester is implicit: requesters are anonymous and never carry a
	// token.
	RoleRequester Role = "requester"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// Identity is the verified subject behind a bearer credential.
type Identity struct {
	ID   primitive.ObjectID
	Role Role
	Name string
}

// Satisfies reports whether this identity's role meets the required role.
// Admin satisfies volunteer-level checks; the reverse does not hold. This is
// a role relation only — assignment ownership compares identity, never role.
func (i Identity) Satisfies(required Role) bool {
	if i.Role == required {
		return true
	}
	return i.Role == RoleAdmin && required == RoleVolunteer
}

type JWTClaims struct {
	Role Role   `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func GenerateToken(subjectID primitive.ObjectID, role Role, name, secretKey string) (string, error) {
	claims := &JWTClaims{
		Role: role,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(JWTTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    AppName,
			Subject:   subjectID.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

func ValidateToken(tokenString, secretKey string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	subjectID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, errors.New("invalid subject in token")
	}

	return &Identity{
		ID:   subjectID,
		Role: claims.Role,
		Name: claims.Name,
	}, nil
}
