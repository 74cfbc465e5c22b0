package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service"
)

type registerReq struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Age       int    `json:"age" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// @Summary Register a user
// @Tags sessions
// @Accept json
// @Produce json
// @Param input body registerReq true "Registration"
// @Success 201 {object} envelope
// @Failure 400 {object} envelope
// @Failure 409 {object} envelope
// @Router /sessions/register [post]
func (s *Server) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "missing fields")
		return
	}
	u, err := s.svc.Users.Register(c, service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Age:       req.Age,
		Password:  req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"id": u.ID, "email": u.Email, "cart": u.CartID})
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary Log in
// @Description Returns a JWT in the body and sets it as an httpOnly cookie.
// @Tags sessions
// @Accept json
// @Produce json
// @Param input body loginReq true "Credentials"
// @Success 200 {object} envelope
// @Failure 401 {object} envelope
// @Router /sessions/login [post]
func (s *Server) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	token, u, err := s.svc.Users.Login(c, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, token, int(s.opts.TokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Logged in",
		"token":   token,
		"payload": profile(u),
	})
}

// @Summary Log out
// @Tags sessions
// @Success 200 {object} envelope
// @Router /sessions/logout [post]
func (s *Server) logout(c *gin.Context) {
	c.SetCookie(s.opts.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, envelope{Status: "success", Message: "Logged out"})
}

// @Summary Current user profile
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Failure 401 {object} envelope
// @Router /sessions/current [get]
func (s *Server) current(c *gin.Context) {
	ok(c, http.StatusOK, profile(currentUser(c)))
}

func profile(u *domain.User) gin.H {
	return gin.H{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"age":        u.Age,
		"cart":       u.CartID,
		"role":       u.Role,
	}
}

// User administration

// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Router /users [get]
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.svc.Users.List(c)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, users)
}

// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Success 200 {object} envelope
// @Failure 404 {object} envelope
// @Router /users/{uid} [get]
func (s *Server) getUser(c *gin.Context) {
	id, valid := parseID(c, "uid")
	if !valid {
		return
	}
	u, err := s.svc.Users.GetByID(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// пароль этим путём не меняется
type updateUserReq struct {
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Email     *string      `json:"email"`
	Age       *int         `json:"age"`
	Role      *domain.Role `json:"role"`
}

// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Param input body updateUserReq true "Fields to change"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Router /users/{uid} [put]
func (s *Server) updateUser(c *gin.Context) {
	id, valid := parseID(c, "uid")
	if !valid {
		return
	}
	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	u, err := s.svc.Users.Update(c, id, service.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Age:       req.Age,
		Role:      req.Role,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// @Summary Delete user
// @Tags users
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Success 204
// @Failure 404 {object} envelope
// @Router /users/{uid} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	id, valid := parseID(c, "uid")
	if !valid {
		return
	}
	if err := s.svc.Users.Delete(c, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
