// Package handler adapts API Gateway proxy events to the resolver service.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"studio-assistant/internal/resolver"
)

// Resolver is the part of the resolution service the handler needs.
type Resolver interface {
	Resolve(ctx context.Context, in resolver.Input) (resolver.Output, error)
}

type chatRequest struct {
	UserID   string `json:"user_id"`
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
}

type chatResponse struct {
	Reply  string `json:"reply"`
	UserID string `json:"user_id"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Seam for deterministic IDs in tests.
var newUUID = uuid.NewString

type Handler struct {
	resolver Resolver
}

func NewHandler(r Resolver) (*Handler, error) {
	if r == nil {
		return nil, errors.New("handler: resolver must not be nil")
	}
	return &Handler{resolver: r}, nil
}

// Handle processes one chat request. Anonymous callers get a minted guest
// id echoed back in the response so the session survives follow-up turns.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	log := slog.With("correlation_id", corrID)

	// Non-POST invocations (health checks, probes) get a status document.
	if event.HTTPMethod != "" && event.HTTPMethod != http.MethodPost {
		return respond(http.StatusOK, statusResponse{Status: "ok", Service: "studio-assistant"}, corrID), nil
	}

	var req chatRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		log.Warn("invalid request body", "err", err)
		return respondError(http.StatusBadRequest, resolver.ErrorInvalidInput, "invalid_json", corrID), nil
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = "guest-" + newUUID()
	}

	out, err := h.resolver.Resolve(ctx, resolver.Input{
		UserID:   userID,
		Message:  req.Message,
		Language: req.Language,
	})
	if err != nil {
		var resolverErr *resolver.Error
		if errors.As(err, &resolverErr) {
			log.Error("resolution failed", "code", resolverErr.Code, "reason", resolverErr.Reason, "err", resolverErr.Err)
			return respondError(statusFor(resolverErr.Code), resolverErr.Code, resolverErr.Reason, corrID), nil
		}
		log.Error("resolution failed", "err", err)
		return respondError(http.StatusInternalServerError, resolver.ErrorInternal, "unexpected_error", corrID), nil
	}

	return respond(http.StatusOK, chatResponse{Reply: out.Reply, UserID: userID}, corrID), nil
}

func statusFor(code resolver.ErrorCode) int {
	switch code {
	case resolver.ErrorInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "X-Correlation-Id") && v != "" {
			return v
		}
	}
	return newUUID()
}

func respond(status int, body any, corrID string) events.APIGatewayProxyResponse {
	raw, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":     "application/json",
			"X-Correlation-Id": corrID,
		},
		Body: string(raw),
	}
}

func respondError(status int, code resolver.ErrorCode, reason, corrID string) events.APIGatewayProxyResponse {
	return respond(status, errorResponse{Error: string(code), Reason: reason}, corrID)
}
