package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/ethereum"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/keys"
	"github.com/x-xyz/treemarket/service/chain/contract"
	"github.com/x-xyz/treemarket/service/redis"
)

var timeNow = time.Now

const (
	defaultNonceTTL = 10 * time.Minute
	defaultTokenTTL = 24 * time.Hour
)

type AuthUseCaseCfg struct {
	JwtSecret string
	Redis     redis.Service
	// MessageTemplate must hold exactly one %s for the nonce
	MessageTemplate string
	// Erc1271 verifies contract wallets when ecrecover does not match. Optional.
	Erc1271  contract.Erc1271Contract
	NonceTTL time.Duration
	TokenTTL time.Duration
}

type impl struct {
	jwtSecret []byte
	redis     redis.Service
	template  string
	erc1271   contract.Erc1271Contract
	nonceTTL  time.Duration
	tokenTTL  time.Duration
}

func New(cfg *AuthUseCaseCfg) domain.AuthUsecase {
	im := &impl{
		jwtSecret: []byte(cfg.JwtSecret),
		redis:     cfg.Redis,
		template:  cfg.MessageTemplate,
		erc1271:   cfg.Erc1271,
		nonceTTL:  cfg.NonceTTL,
		tokenTTL:  cfg.TokenTTL,
	}
	if im.nonceTTL <= 0 {
		im.nonceTTL = defaultNonceTTL
	}
	if im.tokenTTL <= 0 {
		im.tokenTTL = defaultTokenTTL
	}
	return im
}

func nonceKey(address domain.Address) string {
	return keys.RedisKey(keys.PfxNonce, address.ToLowerStr())
}

func (im *impl) message(nonce string) []byte {
	return []byte(fmt.Sprintf(im.template, nonce))
}

func (im *impl) Nonce(c ctx.Ctx, address domain.Address) (string, error) {
	if !address.IsValid() {
		return "", domain.ErrInvalidAddress
	}
	nonce := uuid.New().String()
	if err := im.redis.Set(c, nonceKey(address), []byte(nonce), im.nonceTTL); err != nil {
		c.WithFields(log.Fields{"err": err, "address": address}).Error("failed to redis.Set")
		return "", err
	}
	return string(im.message(nonce)), nil
}

func (im *impl) SignIn(c ctx.Ctx, address domain.Address, signature string) (string, error) {
	if !address.IsValid() {
		return "", domain.ErrInvalidAddress
	}
	c = ctx.WithValues(c, map[string]interface{}{
		"address":   address,
		"signature": signature,
	})

	key := nonceKey(address)
	nonce, err := im.redis.Get(c, key)
	if errors.Is(err, redis.ErrNotFound) {
		return "", xerrors.Errorf("%w: no pending nonce", domain.ErrUnauthorized)
	} else if err != nil {
		c.WithField("err", err).Error("failed to redis.Get")
		return "", err
	}

	// a nonce is good for one attempt
	if _, err := im.redis.Del(c, key); err != nil {
		c.WithField("err", err).Warn("failed to redis.Del")
	}

	ok, err := im.verify(c, address, im.message(string(nonce)), signature)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrInvalidSignature
	}
	return im.SignToken(c, address)
}

func (im *impl) verify(c ctx.Ctx, address domain.Address, msg []byte, signature string) (bool, error) {
	ok, err := ethereum.ValidateMsgSignature(msg, signature, string(address))
	if err != nil {
		c.WithField("err", err).Warn("ValidateMsgSignature failed")
		if im.erc1271 == nil {
			return false, xerrors.Errorf("%w: %v", domain.ErrInvalidSignature, err)
		}
	}
	if ok || im.erc1271 == nil {
		return ok, nil
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return false, xerrors.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	valid, err := im.erc1271.IsValidSignature(c, address, common.BytesToHash(accounts.TextHash(msg)), sig)
	if err != nil {
		c.WithField("err", err).Warn("erc1271.IsValidSignature failed")
		return false, nil
	}
	return valid, nil
}

func (im *impl) SignToken(c ctx.Ctx, address domain.Address) (string, error) {
	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: timeNow().Add(im.tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		c.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(c ctx.Ctx, str string) (domain.Address, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", xerrors.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return domain.Address(claims.Address), nil
	}
	return "", domain.ErrUnauthorized
}
