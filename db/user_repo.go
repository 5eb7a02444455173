package db

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/relayhub/models"
	"gorm.io/gorm"
)

// UserRepository reads identity records owned by the external identity
// service. FindOrCreateGuest is the only write path: the public intake
// flow provisions a guest sender keyed by contact email.
type UserRepository interface {
	FindUserByID(id uuid.UUID) (*models.User, error)
	FindUserByEmail(email string) (*models.User, error)
	FindOrCreateGuest(user *models.User) (*models.User, error)
}

type userRepo struct {
	DB *gorm.DB
}

func NewUserRepo(db *GormDB) UserRepository {
	return &userRepo{db.DB}
}

func (r *userRepo) FindUserByID(id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	if err := r.DB.Where("id = ?", id).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	if err := r.DB.Where("email = ?", email).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) FindOrCreateGuest(user *models.User) (*models.User, error) {
	existing := &models.User{}
	err := r.DB.Where("email = ?", user.Email).First(existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "could not look up guest user")
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.IsGuest = true
	user.Role = models.RoleSender
	if err := r.DB.Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			if err := r.DB.Where("email = ?", user.Email).First(existing).Error; err != nil {
				return nil, errors.Wrap(err, "could not re-read guest user after create race")
			}
			return existing, nil
		}
		return nil, errors.Wrap(err, "could not create guest user")
	}
	return user, nil
}
