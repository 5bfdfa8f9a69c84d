package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh and logout payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserProfile `json:"user"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserProfile represents user profile data
type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

func newUserProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		IsActive:  user.IsActive,
	}
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers the account routes. limit guards the
// unauthenticated credential endpoints.
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, limit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Post("/api/users/register", h.Register)
		r.Post("/api/users/login", h.Login)
		r.Post("/api/users/refresh", h.RefreshToken)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/users/logout", h.Logout)
		r.Get("/api/users/profile", h.GetProfile)
		r.Put("/api/users/profile", h.UpdateProfile)
	})
}

// RegisterAdminRoutes registers user management under an admin router.
func (h *UserHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/users", h.ListUsers)
	r.Put("/users/{id}/role", h.UpdateRole)
	r.Patch("/users/{id}/active", h.ToggleActive)
	r.Delete("/users/{id}", h.DeleteUser)
}

// Register handles user registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Registration failed")
		return
	}

	h.logger.Info("User registered successfully", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, newUserProfile(user))
}

// Login handles user authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	accessToken, refreshToken, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Login failed")
		return
	}

	h.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         newUserProfile(user),
	})
}

// Logout handles user logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.userService.Logout(r.Context(), req.RefreshToken); err != nil {
		respondWithServiceError(w, h.logger, err, "Logout failed")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// RefreshToken handles token refresh
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	accessToken, refreshToken, err := h.userService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Token refresh failed")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

// GetProfile handles getting user profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to get user profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newUserProfile(user))
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req.FirstName, req.LastName)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newUserProfile(user))
}

// ListUsers supports ?q= (email or name), ?role= and pagination.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := domain.UserFilter{
		Query: r.URL.Query().Get("q"),
		Role:  r.URL.Query().Get("role"),
	}
	if filter.Role != "" && !domain.ValidRole(filter.Role) {
		middleware.RespondWithError(w, http.StatusBadRequest, service.ErrInvalidRole.Error())
		return
	}

	page, err := h.userService.ListUsers(r.Context(), filter, pageRequest(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list users")
		return
	}

	profiles := make([]UserProfile, 0, len(page.Items))
	for _, u := range page.Items {
		profiles = append(profiles, newUserProfile(u))
	}
	middleware.RespondWithJSON(w, http.StatusOK, domain.Page[UserProfile]{
		Items:    profiles,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasMore:  page.HasMore,
	})
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	userID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), actorID, userID, req.Role)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update role")
		return
	}

	h.logger.Info("User role changed",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", userID.String()),
		zap.String("role", user.Role),
	)
	middleware.RespondWithJSON(w, http.StatusOK, newUserProfile(user))
}

func (h *UserHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	userID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.ToggleActive(r.Context(), actorID, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to toggle user")
		return
	}

	h.logger.Info("User active flag changed",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("is_active", user.IsActive),
	)
	middleware.RespondWithJSON(w, http.StatusOK, newUserProfile(user))
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	userID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), actorID, userID); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to delete user")
		return
	}

	h.logger.Info("User deleted", zap.String("actor_id", actorID.String()), zap.String("user_id", userID.String()))
	w.WriteHeader(http.StatusNoContent)
}
