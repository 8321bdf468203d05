package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

const (
	SettlementServiceName = "splitledger.v1.SettlementService"

	SettlementServiceRecordSettlementProcedure  = "/splitledger.v1.SettlementService/RecordSettlement"
	SettlementServiceListSettlementsProcedure   = "/splitledger.v1.SettlementService/ListSettlements"
	SettlementServiceDeleteSettlementProcedure  = "/splitledger.v1.SettlementService/DeleteSettlement"
	SettlementServiceGetBalanceSummaryProcedure = "/splitledger.v1.SettlementService/GetBalanceSummary"
)

// SettlementServiceHandler is implemented by the server-side settlement service.
type SettlementServiceHandler interface {
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
	GetBalanceSummary(context.Context, *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	handlers := map[string]http.Handler{
		SettlementServiceRecordSettlementProcedure:  connect.NewUnaryHandler(SettlementServiceRecordSettlementProcedure, svc.RecordSettlement, handlerOptions(opts)),
		SettlementServiceListSettlementsProcedure:   connect.NewUnaryHandler(SettlementServiceListSettlementsProcedure, svc.ListSettlements, handlerOptions(opts)),
		SettlementServiceDeleteSettlementProcedure:  connect.NewUnaryHandler(SettlementServiceDeleteSettlementProcedure, svc.DeleteSettlement, handlerOptions(opts)),
		SettlementServiceGetBalanceSummaryProcedure: connect.NewUnaryHandler(SettlementServiceGetBalanceSummaryProcedure, svc.GetBalanceSummary, handlerOptions(opts)),
	}
	return "/" + SettlementServiceName + "/", routeProcedures(handlers)
}

// SettlementServiceClient is a client for the splitledger.v1.SettlementService service.
type SettlementServiceClient interface {
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
	GetBalanceSummary(context.Context, *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error)
}

// NewSettlementServiceClient constructs a client for the SettlementService at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &settlementServiceClient{
		recordSettlement:  connect.NewClient[api.RecordSettlementRequest, api.RecordSettlementResponse](httpClient, baseURL+SettlementServiceRecordSettlementProcedure, clientOptions(opts)),
		listSettlements:   connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+SettlementServiceListSettlementsProcedure, clientOptions(opts)),
		deleteSettlement:  connect.NewClient[api.DeleteSettlementRequest, api.DeleteSettlementResponse](httpClient, baseURL+SettlementServiceDeleteSettlementProcedure, clientOptions(opts)),
		getBalanceSummary: connect.NewClient[api.GetBalanceSummaryRequest, api.GetBalanceSummaryResponse](httpClient, baseURL+SettlementServiceGetBalanceSummaryProcedure, clientOptions(opts)),
	}
}

type settlementServiceClient struct {
	recordSettlement  *connect.Client[api.RecordSettlementRequest, api.RecordSettlementResponse]
	listSettlements   *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	deleteSettlement  *connect.Client[api.DeleteSettlementRequest, api.DeleteSettlementResponse]
	getBalanceSummary *connect.Client[api.GetBalanceSummaryRequest, api.GetBalanceSummaryResponse]
}

func (c *settlementServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *settlementServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) GetBalanceSummary(ctx context.Context, req *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error) {
	return c.getBalanceSummary.CallUnary(ctx, req)
}
