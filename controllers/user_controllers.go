package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength   = 6
	DefaultUsersPerPage = 20
)

var (
	errInvalidCredentials = errors.New("invalid phone number or password")
	errPhoneTaken         = errors.New("this phone number is already registered")
)

type UserController struct {
	DB       *gorm.DB
	Bookings *services.BookingService
}

func NewUserController(db *gorm.DB, bookings *services.BookingService) *UserController {
	return &UserController{DB: db, Bookings: bookings}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

// normalizePhone returns the canonical phone number or a 400 worth of error.
func normalizePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("phone number is required")
	}
	phone := models.NormalizePhoneNumber(raw)
	if !models.ValidPhoneNumber(phone) {
		return "", errors.New("phone number must contain 10 to 15 digits")
	}
	return phone, nil
}

func (uc *UserController) phoneTaken(phone string, exceptID uint) (bool, error) {
	q := uc.DB.Model(&models.User{}).Where("phone_number = ?", phone)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

// Register -> new customer account; logs the user in right away
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		PhoneNumber     string `json:"phone_number" binding:"required"`
		Password        string `json:"password" binding:"required"`
		PasswordConfirm string `json:"password_confirm" binding:"required"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		Email           string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	phone, err := normalizePhone(req.PhoneNumber)
	if err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Password) < minPasswordLength {
		badRequest(c, errors.New("password must be at least 6 characters"))
		return
	}
	if req.Password != req.PasswordConfirm {
		badRequest(c, errors.New("passwords do not match"))
		return
	}
	taken, err := uc.phoneTaken(phone, 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if taken {
		utils.RespondErrorCode(c, http.StatusConflict, "duplicate_phone", errPhoneTaken)
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	user := models.User{
		PhoneNumber: phone,
		Email:       strings.TrimSpace(req.Email),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Password:    hashed,
		Role:        models.RoleCustomer,
		IsActive:    true,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondErrorCode(c, http.StatusConflict, "duplicate_phone", errPhoneTaken)
			return
		}
		respondServiceError(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("New user registered: %s (id=%d)", user.PhoneNumber, user.ID)
	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"token": token,
		"user":  user,
	})
}

// Login -> phone and password for a JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
		Password    string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	var user models.User
	phone := models.NormalizePhoneNumber(input.PhoneNumber)
	if err := uc.DB.Where("phone_number = ?", phone).First(&user).Error; err != nil {
		utils.RespondErrorCode(c, http.StatusUnauthorized, "invalid_credentials", errInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondErrorCode(c, http.StatusUnauthorized, "invalid_credentials", errInvalidCredentials)
		return
	}
	if !user.IsActive {
		utils.RespondErrorCode(c, http.StatusForbidden, "account_disabled", errors.New("this account is disabled"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Login successful for user %d (role=%s)", user.ID, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_role": user.Role,
		"user":      user,
	})
}

// Logout -> revokes the current token until it expires
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(middlewares.CtxToken)
	var expiresAt time.Time
	if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// GetProfile -> user data, booking counts, bookings and notifications
func (uc *UserController) GetProfile(c *gin.Context) {
	actor := actorFrom(c)
	var user models.User
	if err := uc.DB.First(&user, actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondServiceError(c, services.ErrNotFound)
			return
		}
		respondServiceError(c, err)
		return
	}

	ctx := c.Request.Context()
	stats, err := uc.Bookings.UserStats(ctx, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	bookings, err := uc.Bookings.ListUserBookings(ctx, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	inbox, err := services.Notifications(ctx, uc.DB, user.ID, 20)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", gin.H{
		"user":          user,
		"stats":         stats,
		"bookings":      bookings,
		"notifications": inbox,
	})
}

// UpdateProfile -> names and e-mail; the phone number is the login and stays
func (uc *UserController) UpdateProfile(c *gin.Context) {
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, actorFrom(c).UserID).Error; err != nil {
		respondServiceError(c, services.ErrNotFound)
		return
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if len(user.FirstName) > 30 || len(user.LastName) > 30 {
		badRequest(c, errors.New("names must be at most 30 characters"))
		return
	}
	if user.Email != "" && !strings.Contains(user.Email, "@") {
		badRequest(c, errors.New("invalid email address"))
		return
	}
	if err := uc.DB.Save(&user).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated", user)
}

// GetAllUsers -> staff listing, optionally filtered by role
func (uc *UserController) GetAllUsers(c *gin.Context) {
	page := pageFrom(c, DefaultUsersPerPage)
	q := uc.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + search + "%"
		q = q.Where("phone_number LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	var users []models.User
	if err := q.Scopes(services.Paginate(page)).Order("id ASC").Find(&users).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", paged(users, total, page))
}

type userInput struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    *bool  `json:"is_active"`
}

// CreateUser -> staff adds an account with any role; only admins create staff or admins
func (uc *UserController) CreateUser(c *gin.Context) {
	var req userInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	phone, err := normalizePhone(req.PhoneNumber)
	if err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Password) < minPasswordLength {
		badRequest(c, errors.New("password must be at least 6 characters"))
		return
	}
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}
	if !models.ValidRole(req.Role) {
		badRequest(c, errors.New("unknown role"))
		return
	}
	if models.IsStaffRole(req.Role) && !actorFrom(c).IsAdmin() {
		respondServiceError(c, services.ErrPermissionDenied)
		return
	}
	taken, err := uc.phoneTaken(phone, 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if taken {
		utils.RespondErrorCode(c, http.StatusConflict, "duplicate_phone", errPhoneTaken)
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	user := models.User{
		PhoneNumber: phone,
		Email:       strings.TrimSpace(req.Email),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Password:    hashed,
		Role:        req.Role,
		IsActive:    true,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	// gorm skips false for a column with a default on insert
	if req.IsActive != nil && !*req.IsActive {
		if err := uc.DB.Model(&user).Update("is_active", false).Error; err != nil {
			respondServiceError(c, err)
			return
		}
		user.IsActive = false
	}
	utils.InfoLogger.Printf("User %d created by %d (role=%s)", user.ID, actorFrom(c).UserID, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

// UpdateUser -> names, e-mail, role, active flag and optionally a new password
func (uc *UserController) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req userInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		respondServiceError(c, services.ErrNotFound)
		return
	}
	actor := actorFrom(c)
	if (user.IsStaff() || models.IsStaffRole(req.Role)) && !actor.IsAdmin() {
		respondServiceError(c, services.ErrPermissionDenied)
		return
	}

	if req.PhoneNumber != "" {
		phone, err := normalizePhone(req.PhoneNumber)
		if err != nil {
			badRequest(c, err)
			return
		}
		taken, err := uc.phoneTaken(phone, user.ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if taken {
			utils.RespondErrorCode(c, http.StatusConflict, "duplicate_phone", errPhoneTaken)
			return
		}
		user.PhoneNumber = phone
	}
	if req.Role != "" {
		if !models.ValidRole(req.Role) {
			badRequest(c, errors.New("unknown role"))
			return
		}
		user.Role = req.Role
	}
	if req.Password != "" {
		if len(req.Password) < minPasswordLength {
			badRequest(c, errors.New("password must be at least 6 characters"))
			return
		}
		hashed, err := hashPassword(req.Password)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		user.Password = hashed
	}
	if req.FirstName != "" {
		user.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		user.LastName = strings.TrimSpace(req.LastName)
	}
	if req.Email != "" {
		user.Email = strings.TrimSpace(req.Email)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User updated", user)
}

// DeleteUser -> removes the account with its bookings and notifications
func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	actor := actorFrom(c)
	if id == actor.UserID {
		utils.RespondErrorCode(c, http.StatusConflict, "transition_error", errors.New("you cannot delete your own account"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		respondServiceError(c, services.ErrNotFound)
		return
	}
	if user.IsStaff() && !actor.IsAdmin() {
		respondServiceError(c, services.ErrPermissionDenied)
		return
	}

	err := uc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("User %d deleted by %d", id, actor.UserID)
	utils.RespondJSON(c, http.StatusOK, "User deleted", gin.H{"id": id})
}

// GetNotifications -> the user's inbox, newest first (?limit=, default 50)
func (uc *UserController) GetNotifications(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	rows, err := services.Notifications(c.Request.Context(), uc.DB, actorFrom(c).UserID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", rows)
}
