// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"permitdesk/internal/domain/entity"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/domain/repository"
	"permitdesk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByOIDCSubject retrieves a single user by the identity provider's subject claim.
// The subject is the stable provisioning key; email and name may change between logins.
func (repo *userRepository) FindByOIDCSubject(ctx context.Context, subject string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).
		Where("oidc_subject = ?", subject).
		First(&userM).Error; err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		// Otherwise, return the original database error.
		return nil, errors.Wrap(err, "failed to find user by oidc subject")
	}

	// Map the persistence model back to a pure domain entity before returning.
	return toUserDomain(&userM), nil
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity to the database.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	// Map the pure domain entity to a GORM persistence model.
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrProvisioningFailed.WrapMessage("user with the same subject or email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrProvisioningFailed.WrapMessage("missing required user information")
		}
		// For other database errors, return a generic database error
		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the user entity with the generated ID and timestamps
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update modifies an existing user entity in the database.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userM.ID).
		Updates(map[string]any{
			"email":  userM.Email,
			"name":   userM.Name,
			"active": userM.Active,
		})
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrProvisioningFailed.WrapMessage("email already in use")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user")
	}

	// If no rows were affected, the user does not exist.
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// UpdateLastLogin stamps the user's last successful login time.
func (repo *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("last_login_at", at)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update last login time")
	}

	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// FindRolesByUserID returns the roles currently assigned to a user, ordered by name
// so token role claims are stable across logins.
func (repo *userRepository) FindRolesByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Role, error) {
	var roleModels []*model.RoleModel
	if err := repo.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Find(&roleModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find roles by user id")
	}

	roles := make([]*entity.Role, 0, len(roleModels))
	for _, roleM := range roleModels {
		roles = append(roles, toRoleDomain(roleM))
	}

	return roles, nil
}

// FindRoleByName looks up a role in the reference data by its normalized name.
func (repo *userRepository) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	var roleM model.RoleModel
	if err := repo.db.WithContext(ctx).
		Where("name = ?", name).
		First(&roleM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoleNotFound
		}

		return nil, errors.Wrap(err, "failed to find role by name")
	}

	return toRoleDomain(&roleM), nil
}

// AssignRole grants a role to a user, recording who granted it.
func (repo *userRepository) AssignRole(ctx context.Context, userID, roleID uuid.UUID, grantedBy string) error {
	assignment := &model.UserRoleModel{
		UserID:    userID,
		RoleID:    roleID,
		GrantedAt: time.Now(),
		GrantedBy: grantedBy,
	}

	if err := repo.db.WithContext(ctx).Create(assignment).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			// Assignment already present; claim sync treats this as satisfied.
			return nil
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrProvisioningFailed.WrapMessage("invalid user or role reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to assign role")
	}

	return nil
}

// ClearRoles removes all role assignments for a user. Clearing zero rows is not
// an error; a freshly created user has no assignments yet.
func (repo *userRepository) ClearRoles(ctx context.Context, userID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.UserRoleModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear user roles")
	}

	return nil
}

// --- Mapper Functions ---

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:          data.ID,
		OIDCSubject: data.OIDCSubject,
		Email:       data.Email,
		Name:        data.Name,
		Active:      data.Active,
		LastLoginAt: data.LastLoginAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:          data.ID,
		OIDCSubject: data.OIDCSubject,
		Email:       data.Email,
		Name:        data.Name,
		Active:      data.Active,
		LastLoginAt: data.LastLoginAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// toRoleDomain converts a GORM RoleModel to a domain Role entity.
func toRoleDomain(data *model.RoleModel) *entity.Role {
	if data == nil {
		return nil
	}

	return &entity.Role{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
	}
}
