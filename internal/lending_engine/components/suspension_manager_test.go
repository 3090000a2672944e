package components

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSuspensionManager_Apply(t *testing.T) {
	dbError := errors.New("db error")

	tests := []struct {
		name         string
		status       member.Status
		overdue      int
		hasUnpaid    bool
		setStatusErr error
		wantStatus   member.Status
		wantChanged  bool
		wantErr      error
	}{
		{name: "active below threshold", status: member.StatusActive, overdue: 2, wantStatus: member.StatusActive},
		{name: "active at threshold suspends", status: member.StatusActive, overdue: 3, wantStatus: member.StatusSuspended, wantChanged: true},
		{name: "suspended with overdue stays", status: member.StatusSuspended, overdue: 1, wantStatus: member.StatusSuspended},
		{name: "suspended with unpaid fine stays", status: member.StatusSuspended, hasUnpaid: true, wantStatus: member.StatusSuspended},
		{name: "suspended and clear reactivates", status: member.StatusSuspended, wantStatus: member.StatusActive, wantChanged: true},
		{name: "closed never changes", status: member.StatusClosed, overdue: 5, wantStatus: member.StatusClosed},
		{name: "status write fails", status: member.StatusActive, overdue: 4, setStatusErr: dbError, wantStatus: member.StatusActive, wantErr: dbError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := new(MockMemberRepo)
			transactions := new(MockTransactionRepo)
			fines := new(MockFineRepo)
			m := &member.Member{ID: uuid.New(), Status: tt.status}

			transactions.On("CountOverdueByMember", mock.Anything, m.ID).Return(tt.overdue, nil)
			fines.On("HasUnpaidByMember", mock.Anything, m.ID).Return(tt.hasUnpaid, nil)
			if tt.wantChanged || tt.setStatusErr != nil {
				next := tt.wantStatus
				if tt.setStatusErr != nil {
					next = member.StatusSuspended
				}
				members.On("SetStatus", mock.Anything, m.ID, next).Return(tt.setStatusErr)
			}

			manager := NewSuspensionManager(members, transactions, fines, newTestLogger())
			previous, changed, err := manager.Apply(context.Background(), nil, m)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.status, previous)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantStatus, m.Status)
			members.AssertExpectations(t)
		})
	}
}

func TestSuspensionManager_Apply_CountFails(t *testing.T) {
	dbError := errors.New("db error")
	transactions := new(MockTransactionRepo)
	m := &member.Member{ID: uuid.New(), Status: member.StatusActive}
	transactions.On("CountOverdueByMember", mock.Anything, m.ID).Return(0, dbError)

	manager := NewSuspensionManager(new(MockMemberRepo), transactions, new(MockFineRepo), newTestLogger())
	_, changed, err := manager.Apply(context.Background(), nil, m)

	assert.ErrorIs(t, err, dbError)
	assert.False(t, changed)
}
