// Package httptransport is the thin HTTP layer over the gateway pipeline. It
// translates requests into pipeline calls and pipeline errors into the JSON
// refusal envelope; no admission logic lives here.
package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"medgate/internal/gateway"
	"medgate/internal/operation"
	"medgate/internal/transport/http/shared"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
)

type Handler struct {
	pipeline *gateway.Pipeline
	logger   *slog.Logger
}

func NewHandler(pipeline *gateway.Pipeline, logger *slog.Logger) *Handler {
	return &Handler{pipeline: pipeline, logger: logger}
}

type queryRequest struct {
	Kind           string            `json:"kind"`
	TargetClinicID string            `json:"target_clinic_id"`
	ClaimedRole    string            `json:"claimed_role,omitempty"`
	ConsentSignal  bool              `json:"consent_signal,omitempty"`
	Params         map[string]string `json:"params,omitempty"`
}

type createOperationRequest struct {
	queryRequest
	PayloadRef string `json:"payload_ref,omitempty"`
}

type confirmRequest struct {
	ConfirmationToken string `json:"confirmation_token"`
	ConsentSignal     bool   `json:"consent_signal,omitempty"`
}

type executeRequest struct {
	ConsentSignal bool              `json:"consent_signal,omitempty"`
	Params        map[string]string `json:"params,omitempty"`
}

type operationBody struct {
	OperationID       string `json:"operation_id"`
	Kind              string `json:"kind"`
	Step              string `json:"step"`
	Status            string `json:"status"`
	ConfirmationToken string `json:"confirmation_token,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

func operationFromState(state *operation.State, includeToken bool) *operationBody {
	if state == nil {
		return nil
	}
	body := &operationBody{
		OperationID: state.OperationID.String(),
		Kind:        state.Kind.String(),
		Step:        string(state.Step),
		Status:      string(state.Status),
		CreatedAt:   state.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   state.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if includeToken {
		body.ConfirmationToken = state.ConfirmationToken
	}
	return body
}

// bearerCredential extracts the raw bearer token, empty when absent so the
// identity gate reports the missing credential itself.
func bearerCredential(r *http.Request) string {
	header := r.Header.Get("Authorization")
	credential, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(credential)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body queryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	req, err := h.gatewayRequest(r, body)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	resp, err := h.pipeline.Query(r.Context(), req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"kind": resp.Kind.String(),
		"data": resp.Data,
	})
}

func (h *Handler) handleCreateOperation(w http.ResponseWriter, r *http.Request) {
	var body createOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	req, err := h.gatewayRequest(r, body.queryRequest)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	req.PayloadRef = body.PayloadRef

	resp, err := h.pipeline.CreateOperation(r.Context(), req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	// The confirmation token travels exactly once, in the create response.
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"operation": operationFromState(resp.Operation, true),
	})
}

func (h *Handler) handleConfirmOperation(w http.ResponseWriter, r *http.Request) {
	operationID, err := id.ParseOperationID(chi.URLParam(r, "operationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var body confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	resp, err := h.pipeline.ConfirmOperation(r.Context(), gateway.Request{
		Credential:        bearerCredential(r),
		ConsentSignal:     body.ConsentSignal,
		Method:            r.Method,
		Resource:          r.URL.Path,
		OperationID:       operationID,
		ConfirmationToken: body.ConfirmationToken,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"operation": operationFromState(resp.Operation, false),
	})
}

func (h *Handler) handleExecuteOperation(w http.ResponseWriter, r *http.Request) {
	operationID, err := id.ParseOperationID(chi.URLParam(r, "operationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var body executeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	resp, err := h.pipeline.ExecuteOperation(r.Context(), gateway.Request{
		Credential:    bearerCredential(r),
		ConsentSignal: body.ConsentSignal,
		Method:        r.Method,
		Resource:      r.URL.Path,
		Params:        body.Params,
		OperationID:   operationID,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"operation": operationFromState(resp.Operation, false),
		"data":      resp.Data,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) gatewayRequest(r *http.Request, body queryRequest) (gateway.Request, error) {
	kind, err := id.ParseOperationKind(body.Kind)
	if err != nil {
		return gateway.Request{}, err
	}
	clinicID, err := id.ParseClinicID(body.TargetClinicID)
	if err != nil {
		return gateway.Request{}, dErrors.New(dErrors.CodeInvalidInput, "invalid target clinic id")
	}
	return gateway.Request{
		Credential:     bearerCredential(r),
		ClaimedRole:    body.ClaimedRole,
		TargetClinicID: clinicID,
		Kind:           kind,
		ConsentSignal:  body.ConsentSignal,
		Method:         r.Method,
		Resource:       r.URL.Path,
		Params:         body.Params,
	}, nil
}
