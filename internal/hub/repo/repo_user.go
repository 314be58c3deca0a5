package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/synchub/synchub/internal/hub/model"
)

type IUserRepository interface {
	Get(id uint64) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	// GetOrCreateByEmail returns the user with the given (lowercased) email,
	// creating an empty one when none exists. The second return value
	// reports whether a row was created.
	GetOrCreateByEmail(email string) (*model.User, bool, error)
	Save(user *model.User) error

	GetUserOrg(userID, orgID uint64) (*model.UserOrg, error)
	GetOrCreateUserOrg(userID, orgID uint64) (*model.UserOrg, bool, error)
	SaveUserOrg(userOrg *model.UserOrg) error

	CreateInvitation(invitation *model.UserInvitation) error
}

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) IUserRepository {
	return &UserRepo{db: db}
}

func (r *UserRepo) Get(id uint64) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) GetOrCreateByEmail(email string) (*model.User, bool, error) {
	email = strings.ToLower(email)
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	user = model.User{Email: email}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

func (r *UserRepo) Save(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepo) GetUserOrg(userID, orgID uint64) (*model.UserOrg, error) {
	var userOrg model.UserOrg
	err := r.db.Where("user_id = ? AND org_id = ?", userID, orgID).First(&userOrg).Error
	if err != nil {
		return nil, err
	}
	return &userOrg, nil
}

func (r *UserRepo) GetOrCreateUserOrg(userID, orgID uint64) (*model.UserOrg, bool, error) {
	var userOrg model.UserOrg
	err := r.db.Where("user_id = ? AND org_id = ?", userID, orgID).First(&userOrg).Error
	if err == nil {
		return &userOrg, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	userOrg = model.UserOrg{UserID: userID, OrgID: orgID}
	if err := r.db.Create(&userOrg).Error; err != nil {
		return nil, false, err
	}
	return &userOrg, true, nil
}

func (r *UserRepo) SaveUserOrg(userOrg *model.UserOrg) error {
	return r.db.Save(userOrg).Error
}

func (r *UserRepo) CreateInvitation(invitation *model.UserInvitation) error {
	return r.db.Create(invitation).Error
}
