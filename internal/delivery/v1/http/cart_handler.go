package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
)

type CartHandler struct {
	cartUsecase usecase.CartUC
	logger      logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, logger: logger}
}

// getCart
//
//	@Summary	Корзина пользователя
//	@Tags		cart
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	CartResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/cart [get]
func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.getCart"

	p, err := principal(r)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	view, err := h.cartUsecase.GetCart(r.Context(), p)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// addItem
//
//	@Summary		Добавление товара в корзину
//	@Description	Если товар уже в корзине, количество суммируется
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		AddCartItemRequest	true	"Товар и количество"
//	@Success		200		{object}	CartResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/cart/items [post]
func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.addItem"

	p, err := principal(r)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	var req AddCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	view, err := h.cartUsecase.AddItem(r.Context(), &usecase.AddCartItemReq{
		Principal: p,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// updateItem
//
//	@Summary	Изменение количества товара в корзине
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		productId	path		string					true	"ID товара"
//	@Param		request		body		UpdateCartItemRequest	true	"Новое количество, 0 удаляет позицию"
//	@Success	200			{object}	CartResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/cart/items/{productId} [put]
func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.updateItem"

	p, err := principal(r)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	productID, err := pathUUID(r, "productId")
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	var req UpdateCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	view, err := h.cartUsecase.UpdateItem(r.Context(), &usecase.UpdateCartItemReq{
		Principal: p,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// removeItem
//
//	@Summary	Удаление товара из корзины
//	@Tags		cart
//	@Produce	json
//	@Security	BearerAuth
//	@Param		productId	path		string	true	"ID товара"
//	@Success	200			{object}	CartResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/cart/items/{productId} [delete]
func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.removeItem"

	p, err := principal(r)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	productID, err := pathUUID(r, "productId")
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	view, err := h.cartUsecase.RemoveItem(r.Context(), p, productID)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}
