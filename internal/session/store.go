// Package session は gin-contrib/sessions 向けの Redis セッションストアを提供します。
//
// クッキーにはセッションIDのみを署名付きで保存し、セッションの中身は
// 暗号化したうえで Redis に TTL 付きで保存します。
package session

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"net/http"
	"time"

	ginsessions "github.com/gin-contrib/sessions"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	defaultMaxAge    = 3600
)

// RenewIDKey をセッション値に true で設定して保存すると、ストアは旧セッションを削除し
// 新しいIDで保存し直します。このキー自体は保存されません。
const RenewIDKey = "_renew_id"

// RedisStore はセッションを Redis に保存するストアです。
type RedisStore struct {
	rdb          *redis.Client
	cookieCodecs []securecookie.Codec
	valueCodecs  []securecookie.Codec
	options      *sessions.Options
}

var _ ginsessions.Store = (*RedisStore)(nil)

// NewRedisStore は RedisStore を作成します。
// cookieSecret はセッションIDの署名に、storeSecret はペイロードの暗号化に使います。
func NewRedisStore(rdb *redis.Client, cookieSecret, storeSecret []byte) *RedisStore {
	cookieHash := sha512.Sum512(cookieSecret)
	valueHash := sha512.Sum512(storeSecret)
	valueBlock := sha256.Sum256(storeSecret)

	valueCodec := securecookie.New(valueHash[:], valueBlock[:])
	// Redis に置く値なのでクッキー長の上限は不要
	valueCodec.MaxLength(0)

	s := &RedisStore{
		rdb:          rdb,
		cookieCodecs: []securecookie.Codec{securecookie.New(cookieHash[:], nil)},
		valueCodecs:  []securecookie.Codec{valueCodec},
	}
	s.Options(ginsessions.Options{Path: "/", MaxAge: defaultMaxAge, HttpOnly: true})
	return s
}

// Options はクッキーとセッションの既定オプションを設定します。
func (s *RedisStore) Options(opts ginsessions.Options) {
	s.options = opts.ToGorillaOptions()
	if opts.MaxAge > 0 {
		setMaxAge(s.cookieCodecs, opts.MaxAge)
		setMaxAge(s.valueCodecs, opts.MaxAge)
	}
}

func setMaxAge(codecs []securecookie.Codec, age int) {
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(age)
		}
	}
}

// Get はリクエスト単位でキャッシュされたセッションを返します。
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New はクッキーが指すセッションを Redis から読み込みます。
// クッキーが無い・不正・期限切れの場合は空の新規セッションを返します。
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.cookieCodecs...); err != nil {
		return session, nil
	}

	found, err := s.load(r.Context(), id, session)
	if err != nil {
		return session, err
	}
	if found {
		session.ID = id
		session.IsNew = false
	}
	return session, nil
}

// Save はセッションを Redis に保存し、セッションIDをクッキーに書き込みます。
// MaxAge が負の場合は Redis 上のセッションを削除し、クッキーを失効させます。
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()

	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.Delete(ctx, session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if renew, _ := session.Values[RenewIDKey].(bool); renew {
		delete(session.Values, RenewIDKey)
		if session.ID != "" {
			if err := s.Delete(ctx, session.ID); err != nil {
				return err
			}
		}
		session.ID = ""
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.store(ctx, session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.cookieCodecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Delete は指定IDのセッションを即座に削除します。
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string, session *sessions.Session) (bool, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	if err := securecookie.DecodeMulti(session.Name(), data, &session.Values, s.valueCodecs...); err != nil {
		// 鍵の更新などで復号できないセッションは存在しないものとして扱う
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) store(ctx context.Context, session *sessions.Session) error {
	encoded, err := securecookie.EncodeMulti(session.Name(), session.Values, s.valueCodecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	maxAge := session.Options.MaxAge
	if maxAge == 0 {
		maxAge = defaultMaxAge
	}
	ttl := time.Duration(maxAge) * time.Second
	if err := s.rdb.Set(ctx, sessionKey(session.ID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
