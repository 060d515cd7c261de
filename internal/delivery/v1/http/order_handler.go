package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
)

const idempotencyHeader = "Idempotency-Key"

type OrderHandler struct {
	orderUsecase usecase.OrderUC
	logger       logger.Logger
}

func NewOrderHandler(orderUsecase usecase.OrderUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, logger: logger}
}

// placeOrder
//
//	@Summary		Оформление заказа
//	@Description	Превращает корзину пользователя в заказ: списывает остатки и очищает корзину в одной транзакции
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Idempotency-Key	header		string				false	"Ключ идемпотентности"
//	@Param			request			body		PlaceOrderRequest	true	"Адрес доставки"
//	@Success		201				{object}	PlaceOrderResponse
//	@Success		200				{object}	PlaceOrderResponse	"Повтор по ключу идемпотентности"
//	@Failure		400				{object}	ErrorResponse		"Пустая корзина, нехватка остатка или неполный адрес"
//	@Failure		401				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse		"Товар из корзины удалён"
//	@Failure		409				{object}	ErrorResponse		"Заказ с этим ключом ещё оформляется"
//	@Failure		500				{object}	ErrorResponse
//	@Router			/orders [post]
func (h *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrderHandler.placeOrder"

	p, err := principal(r)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	var req PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	res, err := h.orderUsecase.PlaceOrder(r.Context(), &usecase.PlaceOrderReq{
		Principal:       p,
		ShippingAddress: req.ShippingAddress.toDomain(),
		IdempotencyKey:  strings.TrimSpace(r.Header.Get(idempotencyHeader)),
	})
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	WriteSuccess(w, status, PlaceOrderResponse{Order: toOrderResponse(res.Order, nil)})
}

// listOrders
//
//	@Summary	Заказы пользователя
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		OrderResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/orders [get]
func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	const op = "OrderHandler.listOrders"

	p, err := principal(r)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	views, err := h.orderUsecase.ListOrders(r.Context(), p)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	out := make([]OrderResponse, 0, len(views))
	for i := range views {
		out = append(out, toOrderViewResponse(&views[i]))
	}
	WriteSuccess(w, http.StatusOK, out)
}

// getOrder
//
//	@Summary	Заказ по идентификатору
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"ID заказа"
//	@Success	200	{object}	OrderResponse
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/orders/{id} [get]
func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrderHandler.getOrder"

	p, err := principal(r)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	view, err := h.orderUsecase.GetOrder(r.Context(), p, id)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderViewResponse(view))
}

// setOrderStatus
//
//	@Summary		Смена статуса заказа
//	@Description	Только для администратора
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"ID заказа"
//	@Param			request	body		SetOrderStatusRequest	true	"pending | completed | cancelled"
//	@Success		200		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/orders/{id}/status [put]
func (h *OrderHandler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	const op = "OrderHandler.setOrderStatus"

	p, err := principal(r)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	var req SetOrderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	order, err := h.orderUsecase.SetOrderStatus(r.Context(), &usecase.SetOrderStatusReq{
		Principal: p,
		OrderID:   id,
		Status:    req.Status,
	})
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	h.logger.Infof("order %s status set to %s by %s", order.ID, order.Status, p.UserID)
	WriteSuccess(w, http.StatusOK, toOrderResponse(order, nil))
}

// getReceipt
//
//	@Summary	Ссылка на квитанцию заказа
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"ID заказа"
//	@Success	200	{object}	ReceiptResponse
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/orders/{id}/receipt [get]
func (h *OrderHandler) getReceipt(w http.ResponseWriter, r *http.Request) {
	const op = "OrderHandler.getReceipt"

	p, err := principal(r)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	url, err := h.orderUsecase.GetReceiptURL(r.Context(), p, id)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ReceiptResponse{URL: url})
}
