package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/i18n"
	"github.com/MikeMC777/storefront/internal/identity"
)

// signUpHandler godoc
// @Summary  Create an account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body identity.SignUpRequest true "account"
// @Success  201 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Security ApiKeyAuth
// @Router   /auth/signup [post]
func signUpHandler(ids Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in identity.SignUpRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, apperr.Wrap(apperr.KindValidation, apperr.CodeMissingField, err))
			return
		}
		u, err := ids.SignUp(c.Request.Context(), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": u, "message": i18n.SignedUp(httpx.LangOf(c))})
	}
}

// signInHandler godoc
// @Summary  Sign in and receive a bearer token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body identity.SignInRequest true "credentials"
// @Success  200 {object} identity.SignInResponse
// @Failure  401 {object} map[string]string
// @Security ApiKeyAuth
// @Router   /auth/signin [post]
func signInHandler(ids Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in identity.SignInRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, apperr.Wrap(apperr.KindValidation, apperr.CodeMissingField, err))
			return
		}
		res, err := ids.SignIn(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// signOutHandler godoc
// @Summary  Revoke the current session
// @Tags     auth
// @Success  204
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /auth/signout [post]
func signOutHandler(ids Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := httpx.CurrentIdentity(c)
		if err := ids.SignOut(c.Request.Context(), id.SessionID); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// sessionHandler godoc
// @Summary  Current identity
// @Tags     auth
// @Produce  json
// @Success  200 {object} identity.Identity
// @Failure  401 {object} map[string]string
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /auth/session [get]
func sessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := httpx.CurrentIdentity(c)
		c.JSON(http.StatusOK, id)
	}
}

// getProfileHandler godoc
// @Summary  Profile used to prefill checkout
// @Tags     profile
// @Produce  json
// @Success  200 {object} identity.Profile
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /profile [get]
func getProfileHandler(ids Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := ids.Profile(c.Request.Context(), httpx.UserID(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// updateProfileHandler godoc
// @Summary  Update name, phone or address
// @Tags     profile
// @Accept   json
// @Produce  json
// @Param    body body identity.UpdateProfileRequest true "changes"
// @Success  200 {object} identity.Profile
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /profile [put]
func updateProfileHandler(ids Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in identity.UpdateProfileRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BadRequest(c, err)
			return
		}
		p, err := ids.UpdateProfile(c.Request.Context(), httpx.UserID(c), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
