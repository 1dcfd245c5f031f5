package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/x-xyz/treemarket/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	// Nonce issues the message the wallet must personal_sign
	Nonce(c ctx.Ctx, address Address) (string, error)
	// SignIn verifies the signature over the last issued nonce and returns a session token
	SignIn(c ctx.Ctx, address Address, signature string) (string, error)
	SignToken(c ctx.Ctx, address Address) (string, error)
	ParseToken(c ctx.Ctx, token string) (Address, error)
}
