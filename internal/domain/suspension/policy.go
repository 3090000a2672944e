// Package suspension decides member standing from overdue borrowing and unpaid fines.
package suspension

import "github.com/library-lending-engine/internal/domain/member"

// OverdueThreshold is the number of simultaneously overdue transactions that suspends a member
const OverdueThreshold = 3

// Decide returns the status a member should have and whether it differs from current.
// It is pure and idempotent; closed members are never transitioned.
func Decide(current member.Status, overdueCount int, hasUnpaidFines bool) (member.Status, bool) {
	switch current {
	case member.StatusActive:
		if overdueCount >= OverdueThreshold {
			return member.StatusSuspended, true
		}
	case member.StatusSuspended:
		if overdueCount == 0 && !hasUnpaidFines {
			return member.StatusActive, true
		}
	}
	return current, false
}
