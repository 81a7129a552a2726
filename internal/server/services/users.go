package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pacpoom/interface-vdc/internal/common"
	"github.com/pacpoom/interface-vdc/internal/server/audit"
	"github.com/pacpoom/interface-vdc/internal/server/auth"
	"github.com/pacpoom/interface-vdc/internal/server/config"
	"github.com/pacpoom/interface-vdc/internal/server/models"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/repomanager"
)

// Role granted to a user whose API key is active.
const roleActiveAPI = "active_api"

// UserService verifies credentials and mints bearer tokens. It does not
// create or manage users; api_user rows are seeded externally.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	audit                       audit.Recorder
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, rec audit.Recorder, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		audit:                       rec,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Login checks the password against the stored bcrypt hash and the API key
// status, then returns a signed token plus the principal embedded in it.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.Principal, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.audit.Record(ctx, audit.LevelWarn, SourceAuth, "login failed: unknown user",
				map[string]string{"username": username}, username)
			return "", nil, common.ErrUnauthorized
		}
		return "", nil, common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.audit.Record(ctx, audit.LevelWarn, SourceAuth, "login failed: bad password",
			map[string]string{"username": username}, username)
		return "", nil, common.ErrUnauthorized
	}

	if user.APIKeyStatus != 1 {
		s.audit.Record(ctx, audit.LevelWarn, SourceAuth, "login rejected: api key inactive",
			map[string]string{"username": username}, username)
		return "", nil, common.ErrAPIKeyInactive
	}

	principal := models.Principal{UserID: user.ID, Username: user.Username, Role: roleActiveAPI}

	token, err := auth.GenerateToken(principal, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrInternal
	}

	s.audit.Record(ctx, audit.LevelInfo, SourceAuth, "login successful",
		map[string]string{"username": username}, username)
	return token, &principal, nil
}
