// Package member models the people taking part in the savings pool.
package member

import (
	"fmt"
	"strings"
	"time"

	"github.com/natillera-ledger/internal/domain/shared"
)

// Role distinguishes administrators from regular members
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "socio"
)

var (
	ErrEmptyUsername        = fmt.Errorf("%w: username cannot be empty", shared.ErrInvalidInput)
	ErrEmptyName            = fmt.Errorf("%w: name cannot be empty", shared.ErrInvalidInput)
	ErrInvalidRole          = fmt.Errorf("%w: role must be admin or socio", shared.ErrInvalidInput)
	ErrInvalidLotteryNumber = fmt.Errorf("%w: lottery number must be between 0 and 9999", shared.ErrInvalidInput)
)

// Member is a participant of the natillera
type Member struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Name          string    `json:"name"`
	Phone         *string   `json:"phone,omitempty"`
	Email         *string   `json:"email,omitempty"`
	LotteryNumber *int      `json:"lottery_number,omitempty"`
	Role          Role      `json:"role"`
	Active        bool      `json:"active"`
	RegisteredAt  time.Time `json:"registered_at"`
}

// NewMember normalizes and validates a member before it is stored
func NewMember(username, name string, phone, email *string, lotteryNumber *int, role Role, now time.Time) (*Member, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, ErrEmptyUsername
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if role == "" {
		role = RoleMember
	}
	if role != RoleAdmin && role != RoleMember {
		return nil, ErrInvalidRole
	}
	if lotteryNumber != nil && (*lotteryNumber < 0 || *lotteryNumber > 9999) {
		return nil, ErrInvalidLotteryNumber
	}

	return &Member{
		Username:      username,
		Name:          name,
		Phone:         blankToNil(phone),
		Email:         blankToNil(email),
		LotteryNumber: lotteryNumber,
		Role:          role,
		Active:        true,
		RegisteredAt:  now,
	}, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
