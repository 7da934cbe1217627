package database

import (
	"context"

	"github.com/thereayou/blog-api/internal/models"
)

func (d *Database) SaveUser(ctx context.Context, user *models.User) error {
	return d.db.WithContext(ctx).Create(user).Error
}

func (d *Database) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.findUserBy(ctx, "email", email)
}

func (d *Database) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return d.findUserBy(ctx, "username", username)
}

func (d *Database) findUserBy(ctx context.Context, column, value string) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).Where(column+" = ?", value).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (d *Database) EmailTaken(ctx context.Context, email string) (bool, error) {
	return d.userExists(ctx, "email", email)
}

func (d *Database) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return d.userExists(ctx, "username", username)
}

func (d *Database) userExists(ctx context.Context, column, value string) (bool, error) {
	var n int64
	if err := d.db.WithContext(ctx).Model(&models.User{}).Where(column+" = ?", value).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
