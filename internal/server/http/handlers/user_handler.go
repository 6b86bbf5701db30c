package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/server/http/dto"
	"github.com/polkiloo/tradedesk/internal/server/http/middleware"
)

const userNotFound = "user not found"

// UserHandler processes account endpoints.
type UserHandler struct {
	facade UserFacade
}

// NewUserHandler creates UserHandler instance.
func NewUserHandler(facade UserFacade) *UserHandler {
	return &UserHandler{facade: facade}
}

// SignUp handles POST /user/signup.
func (h *UserHandler) SignUp(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "username and password are required")
		return
	}

	if err := h.facade.SignUp(c.Request.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, domainErrors.ErrInvalidCredentials) {
			c.String(http.StatusBadRequest, "username and password are required")
			return
		}
		writeError(c, err, userNotFound)
		return
	}
	c.String(http.StatusOK, "user created")
}

// SignIn handles POST /user/signin.
func (h *UserHandler) SignIn(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "username and password are required")
		return
	}

	user, token, err := h.facade.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, userNotFound)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.SignInResponse{User: dto.NewUserResponse(user), Token: token})
}

// Delete handles POST /user/delete.
func (h *UserHandler) Delete(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "username and password are required")
		return
	}

	if err := h.facade.DeleteUser(c.Request.Context(), req.Username, req.Password); err != nil {
		writeError(c, err, userNotFound)
		return
	}
	c.String(http.StatusOK, "user deleted")
}

// Auth handles GET /user/auth.
func (h *UserHandler) Auth(c *gin.Context) {
	identity := CurrentIdentity(c)
	c.JSON(http.StatusOK, dto.IdentityResponse{ID: identity.ID, Name: identity.Name})
}

// Account handles GET /user/account.
func (h *UserHandler) Account(c *gin.Context) {
	user, err := h.facade.Account(c.Request.Context(), CurrentIdentity(c).ID)
	if err != nil {
		writeError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewAccountResponse(user))
}

// FavoriteStock handles POST /user/favoriteStock.
func (h *UserHandler) FavoriteStock(c *gin.Context) {
	var req dto.FavoriteStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "missing favoriteStock")
		return
	}

	user, err := h.facade.SetFavoriteStock(c.Request.Context(), CurrentIdentity(c).ID, req.FavoriteStock)
	if err != nil {
		writeError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewAccountResponse(user))
}
