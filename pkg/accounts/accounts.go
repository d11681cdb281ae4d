// Package accounts provides local email/password accounts, the persisted
// session, per-email profile overrides and teacher account linking.
package accounts

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/kv"
	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/agentstation/coursemap/pkg/store"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// User-visible messages.
const (
	MsgEmailRegistered    = "Email already registered"
	MsgInvalidCredentials = "Invalid email or password"
)

// Profile fields stored under per-email override keys.
const (
	ProfileName    = "name"
	ProfilePhone   = "phone"
	ProfileAddress = "address"
	ProfileDOB     = "dob"
	ProfilePhoto   = "photo"
)

var profileFields = []string{ProfileName, ProfilePhone, ProfileAddress, ProfileDOB, ProfilePhoto}

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Email    string
	Password string
	Role     Role
	Name     string
	Address  string
	DOB      string
	Phone    string
	PhotoURL string
}

// Accounts manages users and the current session.
type Accounts struct {
	kv    kv.Store
	users *store.Local[User]
	log   zerolog.Logger
	cost  int

	// mu serializes the check-then-write sequences on the user list.
	mu sync.Mutex

	sessionMu sync.RWMutex
	session   *Session
}

// Option configures Accounts.
type Option func(*config)

type config struct {
	logger    *zerolog.Logger
	cost      int
	storeOpts []store.Option
}

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
		c.storeOpts = append(c.storeOpts, store.WithLogger(l))
	}
}

// WithHashCost sets the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(c *config) {
		c.cost = cost
	}
}

// WithStoreOptions passes options to the user collection.
func WithStoreOptions(opts ...store.Option) Option {
	return func(c *config) {
		c.storeOpts = append(c.storeOpts, opts...)
	}
}

// New creates Accounts over kvs.
func New(ctx context.Context, kvs kv.Store, opts ...Option) *Accounts {
	c := &config{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(c)
	}
	logger := c.logger
	if logger == nil {
		logger = logging.Default()
	}
	users := store.NewLocal(ctx, kvs, store.Config[User]{
		Key:      constants.UsersKey,
		Resource: "user",
		Seed:     []User{},
	}, c.storeOpts...)
	return &Accounts{
		kv:    kvs,
		users: users,
		log:   logger.With().Str("component", "accounts").Logger(),
		cost:  c.cost,
	}
}

// Register creates an account and signs it in.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return Session{}, errors.NewValidationError("email", in.Email, "email is required")
	}
	if len(in.Password) < constants.MinPasswordLength {
		return Session{}, errors.NewValidationError("password", nil, "password must be at least 6 characters")
	}
	role := resolveRole(email, in.Role)
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return Session{}, errors.NewValidationError("password", nil, err.Error())
	}

	a.mu.Lock()
	if _, found := a.findByEmail(ctx, email); found {
		a.mu.Unlock()
		return Session{}, errors.NewValidationError("email", email, MsgEmailRegistered)
	}
	user, err := a.users.Create(ctx, User{
		Email:    email,
		Password: string(hash),
		Role:     role,
		Name:     in.Name,
		Address:  in.Address,
		DOB:      in.DOB,
		Phone:    in.Phone,
		PhotoURL: in.PhotoURL,
	})
	a.mu.Unlock()
	if err != nil {
		return Session{}, err
	}

	overrides := map[string]string{
		ProfileName:    in.Name,
		ProfilePhone:   in.Phone,
		ProfileAddress: in.Address,
		ProfileDOB:     in.DOB,
	}
	for _, field := range profileFields {
		if v := overrides[field]; v != "" {
			if err := a.SetProfileField(ctx, email, field, v); err != nil {
				a.log.Warn().Err(err).Str("field", field).Msg("profile override not saved")
			}
		}
	}

	session := sessionFor(user)
	a.setSession(ctx, &session)
	a.log.Info().Str("user", user.ID).Str("role", role.String()).Msg("account registered")
	return session, nil
}

// Login checks credentials and signs the user in. A plaintext password left
// by an older client is accepted once and replaced by a hash.
func (a *Accounts) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	user, found := a.findByEmail(ctx, email)
	if !found {
		return Session{}, errors.NewAuthenticationError(email, MsgInvalidCredentials)
	}

	if isHash(user.Password) {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
			return Session{}, errors.NewAuthenticationError(email, MsgInvalidCredentials)
		}
	} else {
		if user.Password == "" || user.Password != password {
			return Session{}, errors.NewAuthenticationError(email, MsgInvalidCredentials)
		}
		a.upgradePassword(ctx, user, password)
	}

	session := sessionFor(user)
	a.setSession(ctx, &session)
	return session, nil
}

// Logout ends the session.
func (a *Accounts) Logout(ctx context.Context) error {
	a.sessionMu.Lock()
	a.session = nil
	a.sessionMu.Unlock()
	return errors.WrapStorage("delete", constants.SessionKey, a.kv.Delete(ctx, constants.SessionKey))
}

// Current returns the signed-in session, if any.
func (a *Accounts) Current(ctx context.Context) (Session, bool) {
	a.sessionMu.RLock()
	s := a.session
	a.sessionMu.RUnlock()
	if s != nil {
		return *s, true
	}

	raw, ok, err := a.kv.Get(ctx, constants.SessionKey)
	if err != nil {
		a.log.Warn().Err(errors.WrapStorage("read", constants.SessionKey, err)).Msg("session unreadable")
		return Session{}, false
	}
	if !ok || raw == "" {
		return Session{}, false
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.ID == "" {
		a.log.Warn().Err(errors.WrapStorage("read", constants.SessionKey, err)).Msg("session unreadable")
		return Session{}, false
	}
	return session, true
}

// SetProfileField stores a profile override for email.
func (a *Accounts) SetProfileField(ctx context.Context, email, field, value string) error {
	if err := checkProfileField(field); err != nil {
		return err
	}
	key := ProfileKey(field, email)
	return errors.WrapStorage("write", key, a.kv.Set(ctx, key, value))
}

// ProfileField returns a profile override for email.
func (a *Accounts) ProfileField(ctx context.Context, email, field string) (string, bool, error) {
	if err := checkProfileField(field); err != nil {
		return "", false, err
	}
	key := ProfileKey(field, email)
	v, ok, err := a.kv.Get(ctx, key)
	if err != nil {
		return "", false, errors.WrapStorage("read", key, err)
	}
	return v, ok, nil
}

// Profile returns every profile override stored for email.
func (a *Accounts) Profile(ctx context.Context, email string) (map[string]string, error) {
	out := map[string]string{}
	for _, field := range profileFields {
		v, ok, err := a.ProfileField(ctx, email, field)
		if err != nil {
			return nil, err
		}
		if ok {
			out[field] = v
		}
	}
	return out, nil
}

// ProfileKey returns the key-value key of a profile override.
func ProfileKey(field, email string) string {
	return constants.ProfileKeyPrefix + field + "_" + email
}

// LinkTeacherAccount creates or updates the teacher-role account of teacherID.
func (a *Accounts) LinkTeacherAccount(ctx context.Context, teacherID, name, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if teacherID == "" {
		return User{}, errors.NewValidationError("teacherId", teacherID, "teacher id is required")
	}
	if email == "" {
		return User{}, errors.NewValidationError("email", email, "email is required")
	}
	if len(password) < constants.MinPasswordLength {
		return User{}, errors.NewValidationError("password", nil, "password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return User{}, errors.NewValidationError("password", nil, err.Error())
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	users := a.users.Raw(ctx)
	for _, u := range users {
		if u.Email == email && u.TeacherID != teacherID {
			return User{}, errors.NewValidationError("email", email, MsgEmailRegistered)
		}
	}
	for _, u := range users {
		if u.Role == RoleTeacher && u.TeacherID == teacherID {
			updated, err := a.users.Update(ctx, u.ID, store.Patch{
				"email":    email,
				"password": string(hash),
				"name":     name,
			})
			return redact(updated), err
		}
	}
	created, err := a.users.Create(ctx, User{
		Email:     email,
		Password:  string(hash),
		Role:      RoleTeacher,
		TeacherID: teacherID,
		Name:      name,
	})
	return redact(created), err
}

// TeacherAccounts maps teacher ids to their linked account emails.
func (a *Accounts) TeacherAccounts(ctx context.Context) map[string]string {
	out := map[string]string{}
	for _, u := range a.users.Raw(ctx) {
		if u.Role == RoleTeacher && u.TeacherID != "" {
			out[u.TeacherID] = u.Email
		}
	}
	return out
}

// Users returns every account without password data.
func (a *Accounts) Users(ctx context.Context) ([]User, error) {
	users, err := a.users.GetAll(ctx, catalogs.FilterSpec{})
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = redact(users[i])
	}
	return users, nil
}

// Count returns the number of accounts.
func (a *Accounts) Count(ctx context.Context) int {
	return a.users.Count(ctx)
}

// Reset removes every account, the session and all profile overrides.
func (a *Accounts) Reset(ctx context.Context) error {
	a.sessionMu.Lock()
	a.session = nil
	a.sessionMu.Unlock()

	keys, err := a.kv.Keys(ctx, constants.ProfileKeyPrefix)
	if err != nil {
		return errors.WrapStorage("read", constants.ProfileKeyPrefix+"*", err)
	}
	keys = append(keys, constants.SessionKey)
	if err := a.kv.Delete(ctx, keys...); err != nil {
		return errors.WrapStorage("delete", constants.SessionKey, err)
	}
	return a.users.Clear(ctx)
}

func (a *Accounts) findByEmail(ctx context.Context, email string) (User, bool) {
	for _, u := range a.users.Raw(ctx) {
		if u.Email == email {
			return u, true
		}
	}
	return User{}, false
}

func (a *Accounts) upgradePassword(ctx context.Context, user User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		a.log.Warn().Err(err).Str("user", user.ID).Msg("password upgrade skipped")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.users.Update(ctx, user.ID, store.Patch{"password": string(hash)}); err != nil {
		a.log.Warn().Err(err).Str("user", user.ID).Msg("password upgrade skipped")
		return
	}
	a.log.Debug().Str("user", user.ID).Msg("plaintext password upgraded")
}

func (a *Accounts) setSession(ctx context.Context, s *Session) {
	a.sessionMu.Lock()
	a.session = s
	a.sessionMu.Unlock()

	b, err := json.Marshal(s)
	if err == nil {
		err = a.kv.Set(ctx, constants.SessionKey, string(b))
	}
	if err != nil {
		a.log.Warn().Err(errors.WrapStorage("write", constants.SessionKey, err)).Msg("session kept in memory")
	}
}

// resolveRole makes admin-domain emails admins and otherwise keeps the
// requested role. Unrecognized roles register as students.
func resolveRole(email string, requested Role) Role {
	if IsAdminEmail(email) {
		return RoleAdmin
	}
	switch requested {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return requested
	default:
		return RoleStudent
	}
}

func checkProfileField(field string) error {
	for _, f := range profileFields {
		if f == field {
			return nil
		}
	}
	return errors.NewValidationError("field", field, "unknown profile field")
}

func isHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

func redact(u User) User {
	u.Password = ""
	return u
}
