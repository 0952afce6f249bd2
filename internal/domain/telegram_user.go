package domain

import (
	"fmt"
	"time"
)

type TelegramUser struct {
	ID            string
	UserID        int64
	Username      string
	FirstName     string
	SponsorUserID *int64
	InvitesCount  int
	Depth         int
	TrinaryStatus Status
	BinaryStatus  Status
	TrinaryBill   float64
	BinaryBill    float64
	IsAdmin       bool
	IsBanned      bool
	CreatedAt     time.Time
}

func (u *TelegramUser) StatusFor(bt BuildType) Status {
	if bt == BuildTypeBinary {
		return u.BinaryStatus
	}
	return u.TrinaryStatus
}

// SetStatus only ever raises the tier. Returns true when the status changed.
func (u *TelegramUser) SetStatus(bt BuildType, s Status) bool {
	if s.Rank() <= u.StatusFor(bt).Rank() {
		return false
	}
	if bt == BuildTypeBinary {
		u.BinaryStatus = s
	} else {
		u.TrinaryStatus = s
	}
	return true
}

func (u *TelegramUser) BillFor(bt BuildType) float64 {
	if bt == BuildTypeBinary {
		return u.BinaryBill
	}
	return u.TrinaryBill
}

func (u *TelegramUser) AddBill(bt BuildType, amount float64) {
	if bt == BuildTypeBinary {
		u.BinaryBill += amount
	} else {
		u.TrinaryBill += amount
	}
}

func (u *TelegramUser) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return fmt.Sprintf("id%d", u.UserID)
}
