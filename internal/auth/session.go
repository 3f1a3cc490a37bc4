package auth

import (
	"time"

	"github.com/gin-contrib/sessions"

	"github.com/yourusername/members-only/internal/models"
	"github.com/yourusername/members-only/internal/session"
)

const (
	sessionKeyAuthenticated = "authenticated"
	sessionKeyName          = "name"
	sessionKeyUserType      = "user_type"
	sessionKeyExpiresAt     = "expires_at"
)

// DefaultSessionMaxAge はセッションの既定の有効期間です。
const DefaultSessionMaxAge = time.Hour

// Identity はログイン時点でセッションに写し取ったユーザー情報です。
type Identity struct {
	Name string
	Role models.Role
}

// IsAdmin は管理者かどうかを返します。
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// SessionManager はセッションの開始・検証・破棄を担います。
type SessionManager struct {
	options sessions.Options
	maxAge  time.Duration
	now     func() time.Time
}

// NewSessionManager は SessionManager を作成します。
// options はクッキー属性の既定値で、MaxAge は maxAge から決まります。
func NewSessionManager(maxAge time.Duration, options sessions.Options) *SessionManager {
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	options.MaxAge = int(maxAge.Seconds())
	return &SessionManager{
		options: options,
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// CookieOptions はセッションストアに設定するクッキー属性を返します。
func (m *SessionManager) CookieOptions() sessions.Options {
	return m.options
}

// Start は認証済みセッションを開始し、ストアへ保存します。
// ログイン前のセッションIDは引き継がず、ストアに新しいIDを発行させます。
func (m *SessionManager) Start(s sessions.Session, name string, role models.Role) error {
	s.Clear()
	s.Set(session.RenewIDKey, true)
	s.Set(sessionKeyAuthenticated, true)
	s.Set(sessionKeyName, name)
	s.Set(sessionKeyUserType, string(role))
	s.Set(sessionKeyExpiresAt, m.now().Add(m.maxAge).Unix())
	s.Options(m.options)
	return s.Save()
}

// Identity は有効な認証済みセッションであればユーザー情報を返します。
func (m *SessionManager) Identity(s sessions.Session) (Identity, bool) {
	if !m.IsAuthenticated(s) {
		return Identity{}, false
	}
	name, _ := s.Get(sessionKeyName).(string)
	role, _ := s.Get(sessionKeyUserType).(string)
	return Identity{Name: name, Role: models.ParseRole(role)}, true
}

// IsAuthenticated は認証済みフラグが立っていて、期限切れでない場合に true を返します。
func (m *SessionManager) IsAuthenticated(s sessions.Session) bool {
	authenticated, _ := s.Get(sessionKeyAuthenticated).(bool)
	return authenticated && !m.Expired(s)
}

// Expired はセッションの有効期限を過ぎているかを返します。期限が無いセッションも期限切れ扱いです。
func (m *SessionManager) Expired(s sessions.Session) bool {
	expiresAt := readUnix(s.Get(sessionKeyExpiresAt))
	return expiresAt.IsZero() || !m.now().Before(expiresAt)
}

// Destroy はセッションをストアから即座に削除し、クッキーを失効させます。
func (m *SessionManager) Destroy(s sessions.Session) error {
	s.Clear()
	opts := m.options
	opts.MaxAge = -1
	s.Options(opts)
	return s.Save()
}

func readUnix(v interface{}) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	default:
		return time.Time{}
	}
}
