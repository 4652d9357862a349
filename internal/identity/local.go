// Package identity implements the local, single-machine identity provider:
// bcrypt password hashes kept in a slot record and HS256 session tokens.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/slot"
	"golang.org/x/crypto/bcrypt"
)

// CredentialsKey is the slot record holding accounts and the signing secret.
const CredentialsKey = "identity-credentials"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var (
	// ErrInvalidCredentials is returned when email or password don't match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserExists is returned when registering a taken email or username.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidInput is returned when registration fields are malformed.
	ErrInvalidInput = errors.New("invalid registration input")

	// ErrInvalidToken is returned when a session token fails validation.
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims are the JWT claims carried by a session token.
type Claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type account struct {
	User         models.User `json:"user"`
	PasswordHash string      `json:"passwordHash"`
}

type credentials struct {
	Secret   string    `json:"secret"`
	Accounts []account `json:"accounts"`
}

// LocalOptions configures a Local provider.
type LocalOptions struct {
	Slot slot.Slot
	// Key overrides CredentialsKey.
	Key string
	// Secret signs tokens. Empty means use (or generate and persist) the
	// secret stored in the credentials record.
	Secret string
	// TokenTTL defaults to 24h.
	TokenTTL time.Duration
	// Cost is the bcrypt cost. Zero means bcrypt.DefaultCost.
	Cost int
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Local is an identity provider backed by a slot record.
type Local struct {
	mu     sync.Mutex
	slot   slot.Slot
	key    string
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
	creds  credentials
}

// NewLocal loads the credentials record, creating it when missing.
func NewLocal(ctx context.Context, opts LocalOptions) (*Local, error) {
	if opts.Slot == nil {
		return nil, fmt.Errorf("identity: slot is required")
	}
	p := &Local{
		slot: opts.Slot,
		key:  opts.Key,
		ttl:  opts.TokenTTL,
		cost: opts.Cost,
		now:  opts.Clock,
	}
	if p.key == "" {
		p.key = CredentialsKey
	}
	if p.ttl <= 0 {
		p.ttl = 24 * time.Hour
	}
	if p.cost == 0 {
		p.cost = bcrypt.DefaultCost
	}
	if p.now == nil {
		p.now = time.Now
	}

	data, err := p.slot.Load(ctx, p.key)
	switch {
	case errors.Is(err, slot.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("loading credentials: %w", err)
	default:
		if err := json.Unmarshal(data, &p.creds); err != nil {
			return nil, fmt.Errorf("loading credentials: parsing: %w", err)
		}
	}

	if opts.Secret != "" {
		p.secret = []byte(opts.Secret)
		return p, nil
	}
	if p.creds.Secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generating token secret: %w", err)
		}
		p.creds.Secret = hex.EncodeToString(buf)
		if err := p.persist(ctx); err != nil {
			return nil, err
		}
	}
	p.secret = []byte(p.creds.Secret)
	return p, nil
}

// Register creates an account and signs it in.
func (p *Local) Register(ctx context.Context, username, email, password string) (models.Session, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" {
		return models.Session{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return models.Session{}, fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, email)
	}
	if len(password) < MinPasswordLength {
		return models.Session{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return models.Session{}, fmt.Errorf("hashing password: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, a := range p.creds.Accounts {
		if a.User.Email == email || strings.EqualFold(a.User.Username, username) {
			return models.Session{}, ErrUserExists
		}
	}

	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		IsActive:  true,
		CreatedAt: p.now().UTC(),
	}
	p.creds.Accounts = append(p.creds.Accounts, account{User: user, PasswordHash: string(hash)})
	if err := p.persist(ctx); err != nil {
		p.creds.Accounts = p.creds.Accounts[:len(p.creds.Accounts)-1]
		return models.Session{}, err
	}

	return p.issue(user)
}

// Login verifies the password for email and returns a new session.
func (p *Local) Login(ctx context.Context, email, password string) (models.Session, error) {
	email = normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	idx := -1
	for i, a := range p.creds.Accounts {
		if a.User.Email == email {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Session{}, ErrInvalidCredentials
	}
	a := p.creds.Accounts[idx]
	if !a.User.IsActive {
		return models.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return models.Session{}, ErrInvalidCredentials
	}

	now := p.now().UTC()
	prev := a.User.LastLoginAt
	a.User.LastLoginAt = &now
	p.creds.Accounts[idx] = a
	if err := p.persist(ctx); err != nil {
		a.User.LastLoginAt = prev
		p.creds.Accounts[idx] = a
		return models.Session{}, err
	}

	return p.issue(a.User)
}

// Validate parses and verifies a session token.
func (p *Local) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (p *Local) issue(user models.User) (models.Session, error) {
	now := p.now()
	claims := &Claims{
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return models.Session{}, fmt.Errorf("signing session token: %w", err)
	}
	return models.Session{User: user, Token: signed}, nil
}

func (p *Local) persist(ctx context.Context) error {
	data, err := json.Marshal(p.creds)
	if err != nil {
		return fmt.Errorf("saving credentials: marshaling: %w", err)
	}
	if err := p.slot.Save(ctx, p.key, data); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
