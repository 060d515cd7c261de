package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// createProduct
//
//	@Summary		Создание товара
//	@Description	Только для администратора. Цена не более чем с двумя знаками после запятой
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateProductRequest	true	"Товар"
//	@Success		201		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		403		{object}	ErrorResponse
//	@Router			/products [post]
func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.createProduct"

	p, err := principal(r)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	var req CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	product, err := h.productUsecase.CreateProduct(r.Context(), &usecase.CreateProductReq{
		Principal:   p,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// listProducts
//
//	@Summary		Каталог товаров
//	@Description	С параметром ids возвращает краткую информацию о товарах из кэша
//	@Tags			products
//	@Produce		json
//	@Param			ids	query		string	false	"ID товаров через запятую"
//	@Success		200	{array}		ProductResponse
//	@Failure		400	{object}	ErrorResponse
//	@Router			/products [get]
func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.listProducts"

	if raw := r.URL.Query().Get("ids"); raw != "" {
		h.productsInfo(w, r, raw)
		return
	}

	products, err := h.productUsecase.ListProducts(r.Context())
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	out := make([]*ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	WriteSuccess(w, http.StatusOK, out)
}

func (h *ProductHandler) productsInfo(w http.ResponseWriter, r *http.Request, raw string) {
	const op = "ProductHandler.productsInfo"

	ids, err := parseIDs(raw)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	res, err := h.productUsecase.GetProductsInfo(r.Context(), usecase.NewGetProductsReq(ids))
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductsInfoResponse(res))
}

// getProduct
//
//	@Summary	Товар по идентификатору
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.getProduct"

	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	product, err := h.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}
