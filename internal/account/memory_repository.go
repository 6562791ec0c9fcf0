package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a thread-safe in-memory store implementing every
// storage interface in this package. It backs tests and local development;
// production uses PostgresRepository.
type MemoryRepository struct {
	mu           sync.RWMutex
	masterSecret []byte
	users        map[uuid.UUID]*User
	usersByEmail map[string]uuid.UUID
	keys         map[uuid.UUID]*EncryptionKey
	emails       map[uuid.UUID][]*EmailAddress
	devices      map[uuid.UUID]*TOTPDevice
	tokens       map[string]*VerificationToken
}

func NewMemoryRepository(masterSecret []byte) *MemoryRepository {
	return &MemoryRepository{
		masterSecret: masterSecret,
		users:        make(map[uuid.UUID]*User),
		usersByEmail: make(map[string]uuid.UUID),
		keys:         make(map[uuid.UUID]*EncryptionKey),
		emails:       make(map[uuid.UUID][]*EmailAddress),
		devices:      make(map[uuid.UUID]*TOTPDevice),
		tokens:       make(map[string]*VerificationToken),
	}
}

// CreateUser stores the user, its primary email record, and a freshly wrapped
// encryption key. Key attachment is a no-op when a key reference is already
// set, so a retried create never duplicates keys.
func (r *MemoryRepository) CreateUser(ctx context.Context, user *User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[user.Email]; exists {
		return ErrEmailTaken
	}
	for _, u := range r.users {
		if u.Username == user.Username && u.ID != user.ID {
			return ErrUsernameTaken
		}
	}

	if user.EncryptionKeyID == nil {
		key, err := r.wrapNewKey(user.ID)
		if err != nil {
			return err
		}
		r.keys[key.ID] = key
		user.EncryptionKeyID = &key.ID
	}

	stored := *user
	r.users[user.ID] = &stored
	r.usersByEmail[user.Email] = user.ID
	r.emails[user.ID] = append(r.emails[user.ID], &EmailAddress{
		ID:        uuid.New(),
		UserID:    user.ID,
		Email:     user.Email,
		Primary:   true,
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *MemoryRepository) wrapNewKey(userID uuid.UUID) (*EncryptionKey, error) {
	plaintext, err := GenerateUserKey()
	if err != nil {
		return nil, err
	}
	wrapped, err := EncryptSecretKey(r.masterSecret, plaintext)
	if err != nil {
		return nil, err
	}
	return &EncryptionKey{
		ID:        uuid.New(),
		UserID:    userID,
		Key:       wrapped,
		CreatedAt: time.Now(),
	}, nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usersByEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *r.users[id]
	return &u, nil
}

func (r *MemoryRepository) UpdateUser(ctx context.Context, user *User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	stored := *user
	stored.UpdatedAt = time.Now()
	// Login bookkeeping is owned by RecordLogin, not by profile updates.
	stored.LastLogin = current.LastLogin
	r.users[user.ID] = &stored
	return nil
}

// RecordLogin stamps the user's last sign-in time.
func (r *MemoryRepository) RecordLogin(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	now := time.Now()
	user.LastLogin = &now
	return nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) GetEncryptionKey(ctx context.Context, userID uuid.UUID) (*EncryptionKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok || user.EncryptionKeyID == nil {
		return nil, ErrUserNotFound
	}
	key, ok := r.keys[*user.EncryptionKeyID]
	if !ok {
		return nil, ErrUserNotFound
	}
	k := *key
	return &k, nil
}

func (r *MemoryRepository) GetEmailAddress(ctx context.Context, userID uuid.UUID, email string) (*EmailAddress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, addr := range r.emails[userID] {
		if addr.Email == email {
			a := *addr
			return &a, nil
		}
	}
	return nil, ErrEmailNotFound
}

func (r *MemoryRepository) ListEmailAddresses(ctx context.Context, userID uuid.UUID) ([]*EmailAddress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*EmailAddress, 0, len(r.emails[userID]))
	for _, addr := range r.emails[userID] {
		a := *addr
		out = append(out, &a)
	}
	return out, nil
}

func (r *MemoryRepository) AddEmailAddress(ctx context.Context, addr *EmailAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.emails[addr.UserID] {
		if existing.Email == addr.Email {
			return ErrEmailAlreadyExists
		}
	}
	a := *addr
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.emails[addr.UserID] = append(r.emails[addr.UserID], &a)
	return nil
}

func (r *MemoryRepository) MarkEmailVerified(ctx context.Context, userID uuid.UUID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, addr := range r.emails[userID] {
		if addr.Email == email {
			addr.Verified = true
			return nil
		}
	}
	return ErrEmailNotFound
}

func (r *MemoryRepository) DeleteEmailAddress(ctx context.Context, userID uuid.UUID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	addrs := r.emails[userID]
	for i, addr := range addrs {
		if addr.Email != email {
			continue
		}
		if addr.Primary {
			return ErrPrimaryEmail
		}
		r.emails[userID] = append(addrs[:i], addrs[i+1:]...)
		return nil
	}
	return ErrEmailNotFound
}

func (r *MemoryRepository) SetPrimaryEmail(ctx context.Context, userID uuid.UUID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var target *EmailAddress
	for _, addr := range r.emails[userID] {
		if addr.Email == email {
			target = addr
		}
	}
	if target == nil {
		return ErrEmailNotFound
	}
	if !target.Verified {
		return ErrEmailNotFound
	}

	for _, addr := range r.emails[userID] {
		addr.Primary = addr == target
	}
	if user, ok := r.users[userID]; ok {
		// The old primary must stop resolving, same as the column-backed
		// lookup in the Postgres store.
		delete(r.usersByEmail, user.Email)
		user.Email = email
		r.usersByEmail[email] = userID
	}
	return nil
}

func (r *MemoryRepository) GetDevice(ctx context.Context, userID uuid.UUID) (*TOTPDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[userID]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	d := *device
	return &d, nil
}

func (r *MemoryRepository) GetConfirmedDevice(ctx context.Context, userID uuid.UUID) (*TOTPDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[userID]
	if !ok || !device.Confirmed {
		return nil, ErrDeviceNotFound
	}
	d := *device
	return &d, nil
}

func (r *MemoryRepository) CreateDevice(ctx context.Context, device *TOTPDevice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := *device
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	r.devices[device.UserID] = &d
	return nil
}

func (r *MemoryRepository) ConfirmDevice(ctx context.Context, deviceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, device := range r.devices {
		if device.ID == deviceID {
			device.Confirmed = true
			return nil
		}
	}
	return ErrDeviceNotFound
}

func (r *MemoryRepository) DeleteDevice(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[userID]; !ok {
		return ErrDeviceNotFound
	}
	delete(r.devices, userID)
	return nil
}

func (r *MemoryRepository) CreateToken(ctx context.Context, token *VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := *token
	r.tokens[token.TokenHash] = &t
	return nil
}

func (r *MemoryRepository) ConsumeToken(ctx context.Context, tokenHash, purpose string) (*VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenHash]
	if !ok || token.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	delete(r.tokens, tokenHash)
	t := *token
	return &t, nil
}
