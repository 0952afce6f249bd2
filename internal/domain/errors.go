package domain

import "errors"

var (
	ErrInvalidAmount    = errors.New("amount matches no status tier")
	ErrInvalidBuildType = errors.New("invalid build type")
	ErrInvalidStatus    = errors.New("invalid status")

	ErrMatrixNotFound      = errors.New("matrix not found")
	ErrMatrixFull          = errors.New("matrix is full")
	ErrBranchFull          = errors.New("first-level branch is full")
	ErrBranchNotFound      = errors.New("first-level branch not found")
	ErrNodeAlreadyAttached = errors.New("node already attached to matrix")

	ErrUserNotFound      = errors.New("telegram user not found")
	ErrUserExists        = errors.New("telegram user already exists")
	ErrNoHouse           = errors.New("house account is not initialized")
	ErrHouseCannotDonate = errors.New("house account cannot donate")

	ErrDonateNotFound        = errors.New("donate not found")
	ErrTransactionNotFound   = errors.New("donate transaction not found")
	ErrPendingDonationExists = errors.New("user already has a pending donation")
	ErrDonationCanceled      = errors.New("donation was canceled")
	ErrStatusNotUpgrade      = errors.New("status tier is not above the current one")
)
