package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
)

type AuthHandler struct {
	authUsecase usecase.AuthUC
	logger      logger.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUC, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, logger: logger}
}

// register
//
//	@Summary		Регистрация покупателя
//	@Description	Создаёт учётную запись с ролью customer
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Логин и пароль"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Логин занят"
//	@Router			/auth/register [post]
func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.register"

	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	user, err := h.authUsecase.Register(r.Context(), &usecase.RegisterReq{Username: req.Username, Password: req.Password})
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	h.logger.Infof("user registered, id=%s", user.ID)
	WriteSuccess(w, http.StatusCreated, toUserResponse(user))
}

// login
//
//	@Summary	Вход
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CredentialsRequest	true	"Логин и пароль"
//	@Success	200		{object}	TokenResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auth/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.login"

	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	res, err := h.authUsecase.Login(r.Context(), &usecase.LoginReq{Username: req.Username, Password: req.Password})
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, TokenResponse{
		AccessToken: res.Token,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
	})
}
