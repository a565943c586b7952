package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduworld/portal/internal/form"
	"github.com/eduworld/portal/internal/middleware"
	"github.com/eduworld/portal/internal/model"
	"github.com/eduworld/portal/internal/store"
	"github.com/eduworld/portal/pkg/logger"
	"github.com/eduworld/portal/pkg/metrics"
	"github.com/eduworld/portal/pkg/tracing"
)

var (
	// ErrInvalidRole is returned when the selected role is not enumerated.
	ErrInvalidRole = errors.New("role must be student or faculty")
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("invalid email, password or role")
)

// rememberMeTTL replaces the token lifetime when "Keep me signed in" is set.
const rememberMeTTL = 30 * 24 * time.Hour

// AccountConfig configures token issuing.
type AccountConfig struct {
	JWTSecret     string
	JWTExpiration time.Duration
	BcryptCost    int
}

// AccountService registers and authenticates portal users.
type AccountService struct {
	users  store.UserStore
	forms  *form.Validator
	logger *logger.Logger
	tracer trace.Tracer
	cfg    AccountConfig
	now    func() time.Time
}

// NewAccountService creates an account service over users.
func NewAccountService(users store.UserStore, forms *form.Validator, log *logger.Logger, cfg AccountConfig) *AccountService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.JWTExpiration <= 0 {
		cfg.JWTExpiration = 24 * time.Hour
	}
	return &AccountService{
		users:  users,
		forms:  forms,
		logger: log,
		tracer: tracing.Tracer("github.com/eduworld/portal/internal/service"),
		cfg:    cfg,
		now:    time.Now,
	}
}

// Register validates a registration form, stores the user with the role
// chosen on the page and signs them in.
func (s *AccountService) Register(ctx context.Context, req *model.AuthRequest) (*model.AuthResponse, error) {
	ctx, span := s.tracer.Start(ctx, "account.register", trace.WithAttributes(attribute.String("user.role", string(req.Role))))
	defer span.End()

	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	fields, err := form.Fields(form.ModeRegister)
	if err != nil {
		return nil, err
	}
	if err := s.forms.Validate(fields, req.Data); err != nil {
		return nil, err
	}
	data := form.WithRole(req.Data, req.Role)

	hash, err := bcrypt.GenerateFromPassword([]byte(form.String(data, "password")), s.cfg.BcryptCost)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Name:         strings.TrimSpace(form.String(data, "fullName")),
		Email:        form.String(data, "email"),
		PasswordHash: string(hash),
		Role:         model.Role(form.String(data, "role")),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, store.ErrDuplicateKey) {
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}

	metrics.UsersRegisteredTotal.WithLabelValues(string(user.Role)).Inc()
	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return s.signIn(user, s.cfg.JWTExpiration)
}

// Login checks the submitted credentials and the selected role.
func (s *AccountService) Login(ctx context.Context, req *model.AuthRequest) (*model.AuthResponse, error) {
	ctx, span := s.tracer.Start(ctx, "account.login", trace.WithAttributes(attribute.String("user.role", string(req.Role))))
	defer span.End()

	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	fields, err := form.Fields(form.ModeLogin)
	if err != nil {
		return nil, err
	}
	if err := s.forms.Validate(fields, req.Data); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, form.String(req.Data, "email"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.LoginsTotal.WithLabelValues(string(req.Role), "unknown_user").Inc()
			return nil, ErrInvalidCredentials
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.String(req.Data, "password"))); err != nil {
		metrics.LoginsTotal.WithLabelValues(string(req.Role), "bad_password").Inc()
		return nil, ErrInvalidCredentials
	}
	if user.Role != req.Role {
		metrics.LoginsTotal.WithLabelValues(string(req.Role), "role_mismatch").Inc()
		s.logger.Debug("login with wrong role", zap.String("user_id", user.ID), zap.String("selected", string(req.Role)))
		return nil, ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues(string(req.Role), "success").Inc()
	ttl := s.cfg.JWTExpiration
	if form.Bool(req.Data, "rememberMe") {
		ttl = rememberMeTTL
	}
	return s.signIn(user, ttl)
}

// Profile returns the public record of the user with email.
func (s *AccountService) Profile(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *AccountService) signIn(user *model.User, ttl time.Duration) (*model.AuthResponse, error) {
	token, expiresAt, err := middleware.IssueToken(s.cfg.JWTSecret, user, ttl, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &model.AuthResponse{
		User:      user.Public(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
