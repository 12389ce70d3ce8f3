package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a unique relationship already exists
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidID is returned when an id cannot be parsed as a MongoDB ObjectID
	ErrInvalidID = errors.New("invalid id format")
)

// translate maps driver errors onto the package sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), mongo.IsDuplicateKeyError(err):
		return ErrAlreadyExists
	default:
		return err
	}
}
