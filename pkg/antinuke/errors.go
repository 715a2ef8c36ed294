package antinuke

import "errors"

var (
	// ErrPersistence wraps every store failure on the evaluation path. An
	// evaluation that fails with it was not counted.
	ErrPersistence = errors.New("antinuke persistence failure")

	// ErrMemberNotFound is returned by Membership when the user left the guild.
	ErrMemberNotFound = errors.New("member not found")

	ErrOwnerOnly          = errors.New("only the guild owner can manage antinuke admins")
	ErrNotAdmin           = errors.New("antinuke admin required")
	ErrInvalidLimit       = errors.New("limit must be at least 1")
	ErrAlreadyWhitelisted = errors.New("user already whitelisted")
	ErrNotWhitelisted     = errors.New("user not whitelisted")
	ErrAlreadyAdmin       = errors.New("user is already an antinuke admin")
	ErrNotAnAdmin         = errors.New("user is not an antinuke admin")
)
