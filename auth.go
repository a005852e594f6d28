package folio

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// tokenBytes is the amount of randomness in a session token.
const tokenBytes = 24

// AuthConfig holds AuthService options.
type AuthConfig struct {
	// AdminUsername names the default account. It may delete any image.
	AdminUsername string
	// AdminPassword is used by the login bootstrap allowance.
	AdminPassword string
	// AllowLoginBootstrap lets a login for AdminUsername create the account
	// when it does not exist yet. This silently re-creates a privileged
	// account at runtime and is meant for first-run convenience only.
	AllowLoginBootstrap bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type AuthService struct {
	store *DataStore
	cfg   AuthConfig
	now   func() time.Time
}

func NewAuthService(store *DataStore, cfg AuthConfig) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{store: store, cfg: cfg, now: time.Now}
}

// AdminUsername returns the configured default account name.
func (a *AuthService) AdminUsername() string {
	return a.cfg.AdminUsername
}

// IsAdmin reports whether username is the default account.
func (a *AuthService) IsAdmin(username string) bool {
	return a.cfg.AdminUsername != "" && username == a.cfg.AdminUsername
}

func (a *AuthService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), a.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// addUser appends a user and its empty gallery. The caller holds the document.
func addUser(doc *Document, username, hash string, now time.Time) User {
	u := User{Username: username, PasswordHash: hash, CreatedAt: now.UTC()}
	doc.Users = append(doc.Users, u)
	if _, ok := doc.Galleries[username]; !ok {
		doc.Galleries[username] = []ImageRecord{}
	}
	return u
}

// BootstrapDefaultAccount creates username with password unless it already
// exists. It reports whether an account was created.
func (a *AuthService) BootstrapDefaultAccount(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, fmt.Errorf("bootstrap account: %w: username and password are required", ErrInvalidInput)
	}

	var exists bool
	if err := a.store.View(ctx, func(doc *Document) error {
		exists = doc.FindUser(username) >= 0
		return nil
	}); err != nil {
		return false, fmt.Errorf("bootstrap account: %w", err)
	}
	if exists {
		return false, nil
	}

	// Hash outside the lock; bcrypt is deliberately slow.
	hash, err := a.hash(password)
	if err != nil {
		return false, fmt.Errorf("bootstrap account: %w", err)
	}

	created := false
	err = a.store.Update(ctx, func(doc *Document) error {
		if doc.FindUser(username) >= 0 {
			return errNoChange
		}
		addUser(doc, username, hash, a.now())
		created = true
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("bootstrap account: %w", err)
	}

	return created, nil
}

// errNoChange aborts an Update without saving.
var errNoChange = errors.New("no change")

// Register creates a new user with a bcrypt-hashed password.
func (a *AuthService) Register(ctx context.Context, username, password string) (User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return User{}, fmt.Errorf("register: %w: username and password are required", ErrInvalidInput)
	}

	hash, err := a.hash(password)
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}

	var user User
	err = a.store.Update(ctx, func(doc *Document) error {
		if doc.FindUser(username) >= 0 {
			return fmt.Errorf("register %s: %w", username, ErrUsernameTaken)
		}
		user = addUser(doc, username, hash, a.now())
		return nil
	})
	if err != nil {
		return User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues a new session token.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("login: %w: username and password are required", ErrInvalidInput)
	}

	hash, err := a.lookupHash(ctx, username)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	if hash == "" && a.cfg.AllowLoginBootstrap && a.IsAdmin(username) && a.cfg.AdminPassword != "" {
		slog.Warn("creating default account on login; disable auth.allow_login_bootstrap in production", "username", username)
		if _, err := a.BootstrapDefaultAccount(ctx, username, a.cfg.AdminPassword); err != nil {
			return "", fmt.Errorf("login: %w", err)
		}
		if hash, err = a.lookupHash(ctx, username); err != nil {
			return "", fmt.Errorf("login: %w", err)
		}
	}

	if hash == "" {
		return "", fmt.Errorf("login: %w", ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", fmt.Errorf("login: %w", ErrInvalidCredentials)
	}

	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	err = a.store.Update(ctx, func(doc *Document) error {
		if doc.FindUser(username) < 0 {
			return fmt.Errorf("login: %w", ErrInvalidCredentials)
		}
		doc.Sessions[token] = Session{Username: username, CreatedAt: a.now().UTC()}
		return nil
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

// Validate returns the username owning token.
func (a *AuthService) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("validate token: %w", ErrUnauthorized)
	}

	var username string
	err := a.store.View(ctx, func(doc *Document) error {
		s, ok := doc.Sessions[token]
		if !ok {
			return fmt.Errorf("validate token: %w", ErrUnauthorized)
		}
		username = s.Username
		return nil
	})
	if err != nil {
		return "", err
	}

	return username, nil
}

// Logout removes the session for token. Unknown tokens are ignored.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	err := a.store.Update(ctx, func(doc *Document) error {
		if _, ok := doc.Sessions[token]; !ok {
			return errNoChange
		}
		delete(doc.Sessions, token)
		return nil
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (a *AuthService) lookupHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := a.store.View(ctx, func(doc *Document) error {
		if i := doc.FindUser(username); i >= 0 {
			hash = doc.Users[i].PasswordHash
		}
		return nil
	})
	return hash, err
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
