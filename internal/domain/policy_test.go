package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	admin := &SessionUser{ID: 1, Username: "admin", Role: RoleAdmin}
	abc := &SessionUser{ID: 2, Username: "abc", Role: RoleClient}
	stray := &SessionUser{ID: 9, Username: "ghost", Role: "auditor"}
	own := &Resource{OwnerID: 2}
	other := &Resource{OwnerID: 3}

	tests := []struct {
		name   string
		user   *SessionUser
		action Action
		res    *Resource
		want   error
	}{
		{"anonymous", nil, ActionListOwnReports, nil, ErrUnauthorized},
		{"admin lists all", admin, ActionListAllReports, nil, nil},
		{"admin uploads", admin, ActionUploadReport, nil, nil},
		{"admin downloads any", admin, ActionDownload, other, nil},
		{"admin lists clients", admin, ActionListClients, nil, nil},
		{"client lists own", abc, ActionListOwnReports, own, nil},
		{"client lists all", abc, ActionListAllReports, nil, ErrForbidden},
		{"client uploads", abc, ActionUploadReport, nil, ErrForbidden},
		{"client lists clients", abc, ActionListClients, nil, ErrForbidden},
		{"client downloads own", abc, ActionDownload, own, nil},
		{"client downloads other", abc, ActionDownload, other, ErrForbidden},
		{"client download without resource", abc, ActionDownload, nil, ErrForbidden},
		{"unknown role", stray, ActionListOwnReports, nil, ErrUnauthorized},
		{"unknown role download", stray, ActionDownload, &Resource{OwnerID: 9}, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.user, tt.action, tt.res))
		})
	}
}

func TestContainerName(t *testing.T) {
	assert.Equal(t, "client-42", ContainerName(42))
}

func TestSessionUser(t *testing.T) {
	u := &User{ID: 3, Username: "xyz", Role: RoleClient, PasswordHash: "secret", Name: "XYZ Corporation"}
	su := NewSessionUser(u)
	assert.Equal(t, &SessionUser{ID: 3, Username: "xyz", Role: RoleClient}, su)
	assert.False(t, su.IsAdmin())
	assert.True(t, u.IsClient())

	var none *SessionUser
	assert.False(t, none.IsAdmin())
}
