package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultIssuer     = "catalog"
)

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string

	now    func() time.Time
	newJTI func() string
}

// Issued is a freshly signed token together with the values the ledger needs.
type Issued struct {
	Token     string
	JTI       string
	Type      Type
	Identity  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("tokens: signing secrets must not be empty")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.AccessTTL >= cfg.RefreshTTL {
		return nil, fmt.Errorf("tokens: access ttl %s must be shorter than refresh ttl %s", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}

	return &Issuer{
		accessSecret:  cfg.AccessSecret,
		refreshSecret: cfg.RefreshSecret,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
		newJTI:        uuid.NewString,
	}, nil
}

// WithClock swaps the time source used for iat/exp and for expiry checks.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

func (i *Issuer) TTL(typ Type) time.Duration {
	if typ == Refresh {
		return i.refreshTTL
	}
	return i.accessTTL
}

func (i *Issuer) secret(typ Type) ([]byte, error) {
	switch typ {
	case Access:
		return i.accessSecret, nil
	case Refresh:
		return i.refreshSecret, nil
	default:
		return nil, fmt.Errorf("unknown token type %q", typ)
	}
}

func (i *Issuer) Issue(identity string, typ Type) (*Issued, error) {
	if identity == "" {
		return nil, errors.New("tokens: empty identity")
	}
	secret, err := i.secret(typ)
	if err != nil {
		return nil, err
	}

	now := i.now().UTC()
	exp := now.Add(i.TTL(typ))
	jti := i.newJTI()

	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   identity,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", typ, err)
	}

	return &Issued{
		Token:     signed,
		JTI:       jti,
		Type:      typ,
		Identity:  identity,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Decode verifies signature, issuer and expiry. The signing key is picked by
// the token's own typ claim so a token signed for one type never verifies
// against the other type's key.
func (i *Issuer) Decode(raw string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		c, ok := t.Claims.(*Claims)
		if !ok {
			return nil, errors.New("unexpected claims type")
		}
		return i.secret(c.Type)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing sub or jti", ErrInvalidToken)
	}

	return &claims, nil
}

// WrongTypeError is returned by DecodeType for a valid token of another type.
type WrongTypeError struct {
	Want Type
}

func (e *WrongTypeError) Error() string {
	return "Only " + string(e.Want) + " tokens are allowed"
}

func (e *WrongTypeError) Unwrap() error { return ErrInvalidToken }

// DecodeType decodes and additionally requires the given token type.
func (i *Issuer) DecodeType(raw string, want Type) (*Claims, error) {
	claims, err := i.Decode(raw)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, &WrongTypeError{Want: want}
	}
	return claims, nil
}
