package upload

import (
	"errors"

	"pdf2tsv/internal/database/model"

	"gorm.io/gorm"
)

const defaultEmail = "default@local"

// EnsureDefaultUser finds or creates a default user and returns its ID.
func EnsureDefaultUser(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, errors.New("nil db")
	}
	var u model.User
	err := db.Where("email = ?", defaultEmail).First(&u).Error
	if err == nil {
		return u.ID, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		newUser := model.User{Email: defaultEmail}
		if e := db.Create(&newUser).Error; e != nil {
			return 0, e
		}
		return newUser.ID, nil
	}
	return 0, err
}

// FindBySha256 returns an earlier upload of the same bytes, or nil.
func FindBySha256(db *gorm.DB, sha string) (*model.Document, error) {
	var doc model.Document
	err := db.Where("sha256 = ?", sha).Order("id").First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
