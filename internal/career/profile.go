package career

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/careercoach/internal/auth"
	"github.com/kiranshivaraju/careercoach/internal/store"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

const minPasswordLen = 8

type ProfileService struct {
	store store.Store
	jwt   *auth.JWTManager
}

func NewProfileService(st store.Store, jwt *auth.JWTManager) *ProfileService {
	return &ProfileService{store: st, jwt: jwt}
}

// Session is returned on signup and login.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   *models.Profile `json:"profile"`
}

func (s *ProfileService) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "is not a valid address")
	}
	if len(password) < minPasswordLen {
		return nil, invalid("password", "must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &models.Profile{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Skills:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.session(p)
}

func (s *ProfileService) Login(ctx context.Context, email, password string) (*Session, error) {
	p, err := s.store.GetProfileByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(p.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(p)
}

func (s *ProfileService) Get(ctx context.Context, ownerID string) (*models.Profile, error) {
	id, ok := profileID(ownerID)
	if !ok {
		return nil, ErrGuestNotAllowed
	}
	return s.store.GetProfile(ctx, id)
}

type ProfileUpdate struct {
	Name       *string
	TargetRole *string
	Skills     []string
}

func (s *ProfileService) Update(ctx context.Context, ownerID string, u ProfileUpdate) (*models.Profile, error) {
	id, ok := profileID(ownerID)
	if !ok {
		return nil, ErrGuestNotAllowed
	}

	var opts []store.ProfileUpdateOption
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, invalid("name", "must not be empty")
		}
		opts = append(opts, store.WithName(name))
	}
	if u.TargetRole != nil {
		opts = append(opts, store.WithTargetRole(strings.TrimSpace(*u.TargetRole)))
	}
	if u.Skills != nil {
		opts = append(opts, store.WithSkills(normalizeSkills(u.Skills)))
	}
	return s.store.UpdateProfile(ctx, id, opts...)
}

func (s *ProfileService) session(p *models.Profile) (*Session, error) {
	token, expires, err := s.jwt.Issue(p.OwnerID(), p.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, Profile: p}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
