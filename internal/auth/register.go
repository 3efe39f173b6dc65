package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/eyewantit/eyewantit-backend/internal/collections"
	"github.com/eyewantit/eyewantit-backend/internal/users"
	"github.com/eyewantit/eyewantit-backend/pkg/config"
	"github.com/eyewantit/eyewantit-backend/pkg/db"
	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
	pkgerrors "github.com/eyewantit/eyewantit-backend/pkg/errors"
	"github.com/eyewantit/eyewantit-backend/pkg/security"
	"gorm.io/gorm"
)

// defaultCollectionName is given to the collection provisioned for every new
// account. That collection is the only one flagged is_default and keeps its
// name/emoji for life.
const defaultCollectionName = "My Wishlist"

// RegisterService handles the account-provisioning transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type registerCollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
// Repo factories bind each repo to the transaction the flow runs in.
type RegisterServiceParams struct {
	TxRunner              txRunner
	UserRepoFactory       func(tx *gorm.DB) registerUserRepository
	CollectionRepoFactory func(tx *gorm.DB) registerCollectionRepository
	PasswordConfig        config.PasswordConfig
}

type registerService struct {
	tx             txRunner
	userRepos      func(tx *gorm.DB) registerUserRepository
	collectionRepo func(tx *gorm.DB) registerCollectionRepository
	passwordCfg    config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.UserRepoFactory == nil {
		params.UserRepoFactory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	if params.CollectionRepoFactory == nil {
		params.CollectionRepoFactory = func(tx *gorm.DB) registerCollectionRepository {
			return collections.NewRepository(tx)
		}
	}
	return &registerService{
		tx:             params.TxRunner,
		userRepos:      params.UserRepoFactory,
		collectionRepo: params.CollectionRepoFactory,
		passwordCfg:    params.PasswordConfig,
	}, nil
}

// Register creates the user plus their default collection in one transaction.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepos(tx)
		collectionRepo := s.collectionRepo(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  displayName,
		})
		if err != nil {
			// Concurrent registration can slip past the FindByEmail check.
			if db.IsUniqueViolation(err, "users_email_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if err := collectionRepo.Create(ctx, &models.Collection{
			OwnerID:   user.ID,
			Name:      defaultCollectionName,
			Emoji:     models.DefaultCollectionEmoji,
			Color:     models.DefaultCollectionColor,
			IsDefault: true,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create default collection")
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users.FromModel(created), nil
}
