package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"movie-tracker/internal/domain"
	"movie-tracker/internal/email"
	"movie-tracker/internal/repository"
)

var (
	ErrDuplicateEmail        = errors.New("duplicate email")
	ErrMissingToken          = errors.New("verification token is required")
	ErrTokenInvalidOrExpired = errors.New("invalid or expired verification token")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrOAuthInvalid          = errors.New("oauth data invalid")
)

// ValidationError agrupa los errores de validación por campo.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// AccountService coordina registro, verificación de email y sign-in.
type AccountService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	tokens      repository.VerificationTokenRepository
	emailSender email.Sender
	bcryptCost  int
	tokenTTL    time.Duration

	// now se puede sustituir en tests.
	now func() time.Time
}

func NewAccountService(
	logger *zap.Logger,
	users repository.UserRepository,
	tokens repository.VerificationTokenRepository,
	emailSender email.Sender,
	bcryptCost int,
	tokenTTL time.Duration,
) *AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = 12
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AccountService{
		logger:      logger,
		users:       users,
		tokens:      tokens,
		emailSender: emailSender,
		bcryptCost:  bcryptCost,
		tokenTTL:    tokenTTL,
		now:         time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register valida la entrada, crea el usuario sin verificar y emite un token
// de verificación. El envío del correo es best-effort: su fallo se loguea y
// el registro se reporta exitoso igualmente.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (string, error) {
	if verr := validateRegisterInput(input); verr != nil {
		return "", verr
	}

	// El email se guarda tal cual (recortado, sin lowercasing); la constraint
	// única de la columna es la red de seguridad real contra duplicados.
	emailAddr := strings.TrimSpace(input.Email)

	_, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return "", ErrDuplicateEmail
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		CreatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	token := domain.VerificationToken{
		Identifier: emailAddr,
		Token:      uuid.NewString(),
		ExpiresAt:  now.Add(s.tokenTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", err
	}

	if err := s.emailSender.SendVerificationEmail(ctx, emailAddr, token.Token); err != nil {
		s.logger.Warn("send verification email failed",
			zap.Error(err),
			zap.String("email", emailAddr),
		)
	}

	return "Account created. Please check your email for verification.", nil
}

// VerifyEmail consume un token de verificación y marca el email como verificado.
// La transición UNVERIFIED -> VERIFIED es de una sola vía.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}

	now := s.now().UTC()
	record, err := s.tokens.GetValid(ctx, token, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTokenInvalidOrExpired
		}
		return err
	}

	user, err := s.users.GetByEmail(ctx, record.Identifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Token huérfano: existe pero su dueño no. Anomalía de consistencia.
			s.logger.Error("verification token without owning user",
				zap.String("identifier", record.Identifier),
			)
			return ErrUserNotFound
		}
		return err
	}

	// Borrado condicional primero: el perdedor de una verificación concurrente
	// ve el mismo error que un token expirado.
	if err := s.tokens.Consume(ctx, token, now); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTokenInvalidOrExpired
		}
		return err
	}

	return s.users.VerifyEmail(ctx, user.ID, s.now().UTC())
}

// Authenticate valida credenciales email+password para el gateway de sesiones.
func (s *AccountService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	// Cuentas sólo-OAuth no tienen hash.
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

type OAuthInput struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// UpsertOAuthUser resuelve un sign-in federado: busca por (provider, subject),
// enlaza a una cuenta existente con el mismo email, o crea el usuario en el
// primer sign-in. Un proveedor OAuth ya acreditó el email, así que la cuenta
// queda verificada.
func (s *AccountService) UpsertOAuthUser(ctx context.Context, input OAuthInput) (domain.User, error) {
	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	subject := strings.TrimSpace(input.Subject)
	emailAddr := strings.TrimSpace(input.Email)
	name := strings.TrimSpace(input.Name)

	if provider == "" || subject == "" {
		return domain.User{}, ErrOAuthInvalid
	}

	user, err := s.users.GetByAuth(ctx, provider, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	if emailAddr != "" {
		existing, err := s.users.GetByEmail(ctx, emailAddr)
		if err == nil {
			if err := s.users.LinkOAuth(ctx, existing.ID, provider, subject); err != nil {
				return domain.User{}, err
			}
			verifiedAt := s.now().UTC()
			if existing.EmailVerifiedAt == nil {
				if err := s.users.VerifyEmail(ctx, existing.ID, verifiedAt); err != nil {
					return domain.User{}, err
				}
				existing.EmailVerifiedAt = &verifiedAt
			}
			existing.AuthProvider = provider
			existing.AuthSubject = subject
			return existing, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, err
		}
	}

	verifiedAt := s.now().UTC()
	user = domain.User{
		ID:              uuid.NewString(),
		Name:            name,
		Email:           emailAddr,
		AuthProvider:    provider,
		AuthSubject:     subject,
		EmailVerifiedAt: &verifiedAt,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// validateRegisterInput corre todas las reglas y agrega los errores por campo;
// no corta en el primer fallo.
func validateRegisterInput(input RegisterInput) *ValidationError {
	fields := make(map[string]string)

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		fields["name"] = "Name is required"
	case len([]rune(name)) < 2:
		fields["name"] = "Name must be at least 2 characters"
	}

	if !emailShape.MatchString(strings.TrimSpace(input.Email)) {
		fields["email"] = "Please enter a valid email"
	}

	// Largo primero; sólo un error de password por request.
	if len(input.Password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	} else if !hasPasswordClasses(input.Password) {
		fields["password"] = "Password must include uppercase, lowercase, and number"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func hasPasswordClasses(password string) bool {
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
