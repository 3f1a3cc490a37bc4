package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/yourusername/members-only/internal/mock"
	"github.com/yourusername/members-only/internal/models"
	"github.com/yourusername/members-only/internal/web"
)

func TestRequireSessionRedirectsAnonymous(t *testing.T) {
	m := newTestManager(mock.NewMockUserStore(gomock.NewController(t)))
	r := newTestRouter(m)

	rec := get(r, "/members", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = get(r, "/admin", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireSessionExpired(t *testing.T) {
	m := newTestManager(mock.NewMockUserStore(gomock.NewController(t)))
	r := newTestRouter(m)
	cookies := loginAs(t, m, "Alice", models.RoleUser)

	require.Equal(t, http.StatusOK, get(r, "/members", cookies).Code)

	m.sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	rec := get(r, "/members", cookies)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	// 期限切れのセッションは破棄され、失効したクッキーが返ります。
	expired := rec.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Less(t, expired[0].MaxAge, 0)
}

func TestRequireAdmin(t *testing.T) {
	m := newTestManager(mock.NewMockUserStore(gomock.NewController(t)))
	r := newTestRouter(m)

	rec := get(r, "/admin", loginAs(t, m, "Alice", models.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), web.MessageNotAuthorized)
	assert.NotContains(t, rec.Body.String(), "admin area")

	rec = get(r, "/admin", loginAs(t, m, "root", models.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin area", rec.Body.String())
}
