package crud

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"hash"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"yatube/domain"
	"yatube/errs"
)

// UserService manages Users. It also contains the part of the authentication system
// that handles database interactions and token creation / hashing. It's basically
// the "backend" of the auth system, with http/auth.go dealing with requests, middleware
// and cookies being the "frontend". It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	hmac   *HMAC
	pepper string
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, pepper, hmacKey string) *UserService {
	return &UserService{
		userValidator{
			hmac:   newHMAC(hmacKey),
			pepper: pepper,
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted username and password for existence and correctness.
// Both failures yield the same message, so the form does not reveal which usernames exist.
func (uv *userValidator) Authenticate(username, password string) (*domain.User, error) {
	found, err := uv.userGorm.ByUsername(strings.TrimSpace(username))
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, errs.Errorf(errs.EINVALID, "Please enter a correct username and password.")
		}
		return nil, err
	}

	// Append the pepper to the submitted password and compare it to the stored bcrypt hash.
	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password+uv.pepper))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return nil, errs.Errorf(errs.EINVALID, "Please enter a correct username and password.")
		}
		return nil, err
	}
	return found, nil
}

// MakeRememberToken is helper to generate remember tokens of a predetermined byte size.
func (uv *userValidator) MakeRememberToken() (string, error) {
	return bytesToString(RememberTokenBytes)
}

// ByRemember hashes a user's remember token and passes the hash on to
// userGorm.ByRemember, which looks it up in the database.
func (uv *userValidator) ByRemember(token string) (*domain.User, error) {
	user := domain.User{
		Remember: token,
	}
	if err := runUserValFns(&user, uv.rememberHmac); err != nil {
		return nil, err
	}
	if user.RememberHash == "" {
		return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	}
	return uv.userGorm.ByRemember(user.RememberHash)
}

// Create runs validations needed for creating new User database records.
// It will create a remember token if none is provided.
func (uv *userValidator) Create(user *domain.User) error {
	err := runUserValFns(user,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.rememberSetIfUnset,
		uv.rememberMinBytes,
		uv.rememberHmac,
		uv.rememberHashRequired,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.usernameIsAvail)
	if err != nil {
		return err
	}
	return uv.userGorm.Create(user)
}

// Update runs validations needed for updating a User record in the database.
// It will hash a remember token if it is provided (and will not return an error if it's not).
func (uv *userValidator) Update(user *domain.User) error {
	err := runUserValFns(user,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.rememberMinBytes,
		uv.rememberHmac,
		uv.rememberHashRequired,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.usernameIsAvail,
	)
	if err != nil {
		return err
	}
	return uv.userGorm.Update(user)
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(user *domain.User) error

// usernameIsAvail makes sure that a provided username is not yet taken.
func (uv *userValidator) usernameIsAvail(user *domain.User) error {
	existing, err := uv.userGorm.ByUsername(user.Username)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		// Username is not taken.
		return nil
	}
	if err != nil {
		return err
	}
	if user.ID != existing.ID {
		return errs.FieldErrorf(errs.EINVALID, "username", "A user with that username already exists.")
	}
	return nil
}

// usernameNormalize trims the username's surrounding whitespace.
func (uv *userValidator) usernameNormalize(user *domain.User) error {
	user.Username = strings.TrimSpace(user.Username)
	user.Name = strings.TrimSpace(user.Name)
	return nil
}

// usernameRequired makes sure that the username is not the empty string.
func (uv *userValidator) usernameRequired(user *domain.User) error {
	if user.Username == "" {
		return errs.FieldErrorf(errs.EINVALID, "username", "A username is required.")
	}
	return nil
}

// passwordBcrypt hashes a user's password with a predefined pepper.
// It bcrypts it, if the Password field is not the empty string.
// It then clears the password on the user object in memory.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	pwBytes := []byte(user.Password + uv.pepper)
	hashedBytes, err := bcrypt.GenerateFromPassword(pwBytes, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

// passwordHashRequired makes sure that the user's password hash is not the empty string.
func (uv *userValidator) passwordHashRequired(user *domain.User) error {
	if user.PasswordHash == "" {
		return errs.FieldErrorf(errs.EINVALID, "password1", "A password is required.")
	}
	return nil
}

// passwordMinLength makes sure that the user's password is at least 8 characters long.
func (uv *userValidator) passwordMinLength(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < 8 {
		return errs.FieldErrorf(errs.EINVALID, "password1", "The password must have at least 8 characters.")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.Password == "" {
		return errs.FieldErrorf(errs.EINVALID, "password1", "A password is required.")
	}
	return nil
}

// rememberHashRequired makes sure the user's remember token hash is not the empty string.
func (uv *userValidator) rememberHashRequired(user *domain.User) error {
	if user.RememberHash == "" {
		return errs.RememberHashEmpty
	}
	return nil
}

// rememberHmac creates the user's remember token hash, if a remember token has been provided.
func (uv *userValidator) rememberHmac(user *domain.User) error {
	if user.Remember == "" {
		return nil
	}
	user.RememberHash = uv.hmac.hash(user.Remember)
	return nil
}

// rememberMinBytes makes sure that the user's remember token is not too short.
func (uv *userValidator) rememberMinBytes(user *domain.User) error {
	if user.Remember == "" {
		return nil
	}
	n, err := nBytes(user.Remember)
	if err != nil {
		return err
	}
	if n < RememberTokenBytes {
		return errs.RememberTooShort
	}
	return nil
}

// rememberSetIfUnset creates the user's remember token if none is provided.
func (uv *userValidator) rememberSetIfUnset(user *domain.User) error {
	if user.Remember != "" {
		return nil
	}
	token, err := uv.MakeRememberToken()
	if err != nil {
		return err
	}
	user.Remember = token
	return nil
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(id int) (*domain.User, error) {
	var user domain.User
	db := ug.db.Where("id = ?", id)
	if err := first(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ByUsername retrieves a User database record by its unique username.
func (ug *userGorm) ByUsername(username string) (*domain.User, error) {
	var user domain.User
	db := ug.db.Where("username = ?", username)
	if err := first(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ByRemember retrieves a User database record by its hashed remember token.
// The checkUser middleware calls this on every request, trying to identify a user
// by matching a request cookie's remember token to a hashed remember token in the database.
func (ug *userGorm) ByRemember(rememberHash string) (*domain.User, error) {
	var user domain.User
	db := ug.db.Where("remember_hash = ?", rememberHash)
	if err := first(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(user *domain.User) error {
	return translate(ug.db.Create(user).Error, "username", "A user with that username already exists.")
}

// Update saves changes to an existing user record in the database.
func (ug *userGorm) Update(user *domain.User) error {
	return translate(ug.db.Save(user).Error, "username", "A user with that username already exists.")
}

// first is a helper for getting the first database record that matches a given query.
// A missing record is reported as errs.ENOTFOUND.
func first(db *gorm.DB, dst interface{}) error {
	err := db.First(dst).Error
	if err == gorm.ErrRecordNotFound {
		return errs.Errorf(errs.ENOTFOUND, "The %s does not exist.", recordName(dst))
	}
	return err
}

// recordName names the model behind dst for not found messages.
func recordName(dst interface{}) string {
	switch dst.(type) {
	case *domain.User:
		return "user"
	case *domain.Group:
		return "group"
	case *domain.Post:
		return "post"
	case *domain.Follow:
		return "follow"
	default:
		return "record"
	}
}

// translate turns a unique constraint violation into a validation error on field.
func translate(err error, field, message string) error {
	if err == nil {
		return nil
	}
	if err == gorm.ErrDuplicatedKey || strings.Contains(strings.ToLower(err.Error()), "unique") {
		return errs.FieldErrorf(errs.EINVALID, field, message)
	}
	return err
}

// HMAC is a wrapper around the crypto/hmac package making it easier to use.
type HMAC struct {
	mu   sync.Mutex
	hmac hash.Hash
}

// newHMAC creates and returns a new HMAC object.
func newHMAC(key string) *HMAC {
	h := hmac.New(sha256.New, []byte(key))
	return &HMAC{
		hmac: h,
	}
}

// hash hashes an input string using HMAC with the secret key
// provided when the HMAC object was created in NewUserService.
func (h *HMAC) hash(input string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hmac.Reset()
	h.hmac.Write([]byte(input))
	b := h.hmac.Sum(nil)
	return base64.URLEncoding.EncodeToString(b)
}

// RememberTokenBytes is the size of a freshly generated remember token.
const RememberTokenBytes = 32

// randomBytes generates n random bytes or returns an error. It uses the
// crypto/rand package, so it can be used for things like remember tokens.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// nBytes returns the number of bytes used in a base64 URL encoded string.
func nBytes(base64String string) (int, error) {
	b, err := base64.URLEncoding.DecodeString(base64String)
	if err != nil {
		return -1, err
	}
	return len(b), nil
}

// bytesToString generates a byte slice of size nBytes and then returns a
// string that is the base64 URL encoded version of that byte slice.
func bytesToString(nBytes int) (string, error) {
	b, err := randomBytes(nBytes)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
