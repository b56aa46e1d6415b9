package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token dashboard diterbitkan oleh layanan auth; service ini hanya memverifikasi.
type StaffClaims struct {
	Role          string   `json:"role"`
	RestaurantIDs []string `json:"restaurant_ids"`
	jwt.RegisteredClaims
}

// CanAccessRestaurant -> admin boleh semua restoran, staff hanya restoran miliknya
func (c *StaffClaims) CanAccessRestaurant(restaurantID string) bool {
	if c.Role == "admin" {
		return true
	}
	for _, id := range c.RestaurantIDs {
		if id == restaurantID {
			return true
		}
	}
	return false
}

func GenerateToken(secret []byte, staffID, role string, restaurantIDs []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &StaffClaims{
		Role:          role,
		RestaurantIDs: restaurantIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseToken(secret []byte, tokenString string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*StaffClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
