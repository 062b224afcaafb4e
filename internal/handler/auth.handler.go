package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duccv/medrecords-api/internal/model/request"
	"github.com/duccv/medrecords-api/internal/model/response"
	"github.com/duccv/medrecords-api/internal/validation"
)

type AuthService interface {
	Register(ctx context.Context, req request.RegisterRequest) (*response.UserResponse, error)
	Login(ctx context.Context, req request.LoginRequest) (*response.LoginResponse, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
//
//	@Summary	Register a user
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		request.RegisterRequest	true	"Account details"
//	@Success	201		{object}	response.UserResponse
//	@Failure	400		{object}	response.ErrorResponse
//	@Router		/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	body := validation.Body[request.RegisterRequest](c)

	user, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// Login godoc
//
//	@Summary	Log in and obtain a bearer token
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		request.LoginRequest	true	"Credentials"
//	@Success	200		{object}	response.LoginResponse
//	@Failure	400		{object}	response.ErrorResponse
//	@Failure	401		{object}	response.ErrorResponse
//	@Router		/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	body := validation.Body[request.LoginRequest](c)

	res, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}
