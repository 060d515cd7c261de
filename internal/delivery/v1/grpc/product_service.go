package grpc

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	productServiceName     = "storefront.v1.ProductService"
	getProductsInfoMethod  = "/" + productServiceName + "/GetProductsInfo"
	productServiceMetadata = "storefront/v1/product.proto"
)

// ProductServiceServer отдаёт краткую информацию о товарах другим сервисам.
// Запрос - список id товаров, ответ - {"products": [...], "not_found": [...]}.
type ProductServiceServer interface {
	GetProductsInfo(ctx context.Context, req *structpb.ListValue) (*structpb.Struct, error)
}

var productServiceDesc = grpc.ServiceDesc{
	ServiceName: productServiceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProductsInfo",
			Handler:    getProductsInfoHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: productServiceMetadata,
}

func getProductsInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).GetProductsInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getProductsInfoMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).GetProductsInfo(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}

type ProductService struct {
	prUC   usecase.ProductUC
	logger logger.Logger
}

func NewProductService(prUC usecase.ProductUC, logger logger.Logger) *ProductService {
	return &ProductService{prUC: prUC, logger: logger}
}

func (g *ProductService) GetProductsInfo(ctx context.Context, req *structpb.ListValue) (*structpb.Struct, error) {
	const op = "grpc.GetProductsInfo"

	ids, err := parseIDs(req)
	if err != nil {
		g.logger.Warnf("%s: %v", op, err)
		return nil, GRPCErrorResponse(err)
	}

	res, err := g.prUC.GetProductsInfo(ctx, usecase.NewGetProductsReq(ids))
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	out, err := toProductsInfoStruct(res)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(err)
	}
	return out, nil
}

func parseIDs(req *structpb.ListValue) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(req.GetValues()))
	for _, v := range req.GetValues() {
		id, err := uuid.Parse(v.GetStringValue())
		if err != nil {
			return nil, e.Wrap(fmt.Sprintf("id %q", v.GetStringValue()), e.ErrInvalidID)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toProductsInfoStruct(res *usecase.GetProductsRes) (*structpb.Struct, error) {
	products := make([]any, 0, len(res.Products))
	for _, p := range res.Products {
		products = append(products, map[string]any{
			"id":    p.ID.String(),
			"name":  p.Name,
			"price": p.Price.StringFixed(2),
			"stock": p.Stock,
		})
	}

	notFound := make([]any, 0, len(res.NotFoundProducts))
	for _, id := range res.NotFoundProducts {
		notFound = append(notFound, id.String())
	}

	return structpb.NewStruct(map[string]any{
		"products":  products,
		"not_found": notFound,
	})
}
