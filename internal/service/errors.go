package service

import "errors"

// 业务错误，调用方用 errors.Is 判断类别
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrNotMember     = errors.New("not a member")
	ErrNotCreator    = errors.New("not the creator")
	ErrWrongPassword = errors.New("wrong password")
	ErrEmailMismatch = errors.New("email does not match")
	ErrInvalidInput  = errors.New("invalid input")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
