package jwttoken

import (
	"alyra/pkg/domain"
	dErrors "alyra/pkg/domain-errors"
)

// IdentityAdapter exposes JWTService as a middleware.IdentityValidator.
type IdentityAdapter struct {
	service *JWTService
}

func NewIdentityAdapter(service *JWTService) *IdentityAdapter {
	return &IdentityAdapter{service: service}
}

func (a *IdentityAdapter) ValidateToken(tokenString string) (domain.Identity, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	identity, err := domain.ParseIdentity(claims.Identity)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token identity")
	}
	return identity, nil
}
