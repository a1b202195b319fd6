package main

import (
	"context"

	"medgate/internal/domain"
	"medgate/internal/gateway"
	"medgate/internal/operation"
	id "medgate/pkg/domain"
)

// registerHandlers wires the demo business handlers. Real deployments replace
// these with clients for the clinic services behind the gateway.
func registerHandlers(registry *gateway.Registry) {
	registry.Register(id.KindPatientSearch, echoHandler("patient search accepted"))
	registry.Register(id.KindAppointmentQuery, echoHandler("appointment lookup accepted"))
	registry.Register(id.KindFinancialSummary, echoHandler("financial summary accepted"))
	registry.Register(id.KindReportGeneration, echoHandler("report generation accepted"))
	registry.Register(id.KindDataExport, echoHandler("data export accepted"))
	registry.Register(id.KindScheduleChange, gateway.HandlerFunc(
		func(_ context.Context, _ domain.Principal, _ gateway.Request, state *operation.State) (any, error) {
			return map[string]string{
				"result":      "schedule change applied",
				"payload_ref": state.PayloadRef,
			}, nil
		}))
}

func echoHandler(result string) gateway.Handler {
	return gateway.HandlerFunc(
		func(_ context.Context, principal domain.Principal, req gateway.Request, _ *operation.State) (any, error) {
			return map[string]any{
				"result":    result,
				"kind":      req.Kind.String(),
				"clinic_id": principal.ClinicID.String(),
				"params":    req.Params,
			}, nil
		})
}
