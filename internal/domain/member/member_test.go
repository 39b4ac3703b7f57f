package member

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestNewMember(t *testing.T) {
	now := time.Now()

	t.Run("NormalizesFields", func(t *testing.T) {
		m, err := NewMember("  Ana.Perez ", " Ana Pérez ", strPtr("3001234567"), strPtr("  "), intPtr(7), "", now)
		require.NoError(t, err)
		assert.Equal(t, "ana.perez", m.Username)
		assert.Equal(t, "Ana Pérez", m.Name)
		assert.Equal(t, "3001234567", *m.Phone)
		assert.Nil(t, m.Email)
		assert.Equal(t, 7, *m.LotteryNumber)
		assert.Equal(t, RoleMember, m.Role)
		assert.True(t, m.Active)
		assert.Equal(t, now, m.RegisteredAt)
	})

	testCases := []struct {
		name     string
		username string
		fullName string
		lottery  *int
		role     Role
		err      error
	}{
		{"EmptyUsername", "   ", "Ana", nil, RoleMember, ErrEmptyUsername},
		{"EmptyName", "ana", "", nil, RoleMember, ErrEmptyName},
		{"UnknownRole", "ana", "Ana", nil, Role("tesorero"), ErrInvalidRole},
		{"LotteryNumberTooLarge", "ana", "Ana", intPtr(10000), RoleAdmin, ErrInvalidLotteryNumber},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewMember(tc.username, tc.fullName, nil, nil, tc.lottery, tc.role, now)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestErrMemberNotFound_Is(t *testing.T) {
	err := fmt.Errorf("lookup: %w", ErrMemberNotFound{MemberID: 5})

	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.True(t, errors.Is(err, ErrMemberNotFound{}))
	assert.True(t, errors.Is(err, ErrMemberNotFound{MemberID: 5}))
	assert.False(t, errors.Is(err, ErrMemberNotFound{MemberID: 6}))
	assert.Equal(t, "member not found: 5", ErrMemberNotFound{MemberID: 5}.Error())
}
