package blocks

import (
	"errors"
	"time"
)

var (
	ErrCannotBlockSelf = errors.New("cannot block yourself")
	ErrBlockNotFound   = errors.New("block not found")
)

// Block is a directed block relation
type Block struct {
	ID        int64     `json:"id" db:"id"`
	BlockerID int64     `json:"blocker_id" db:"blocker_id"`
	BlockedID int64     `json:"blocked_id" db:"blocked_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateBlockDTO is the body of a block request
type CreateBlockDTO struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}
