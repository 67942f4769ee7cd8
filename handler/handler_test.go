package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"studio-assistant/internal/resolver"
)

type stubResolver struct {
	out resolver.Output
	err error
	in  resolver.Input
}

func (s *stubResolver) Resolve(_ context.Context, in resolver.Input) (resolver.Output, error) {
	s.in = in
	return s.out, s.err
}

func makeEvent(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/chat",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	stub := &stubResolver{out: resolver.Output{Reply: "Gerne!"}}
	h, err := NewHandler(stub)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`{"user_id":"u1","message":"Wann habt ihr offen?","language":"de"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, resolver.Input{UserID: "u1", Message: "Wann habt ihr offen?", Language: "de"}, stub.in)

	out := parseBody[chatResponse](t, resp.Body)
	require.Equal(t, "Gerne!", out.Reply)
	require.Equal(t, "u1", out.UserID)
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
}

func TestHandle_MintsGuestID(t *testing.T) {
	restore := newUUID
	defer func() { newUUID = restore }()
	newUUID = func() string { return "fixed-uuid" }

	stub := &stubResolver{out: resolver.Output{Reply: "Hi"}}
	h, err := NewHandler(stub)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`{"message":"Hi"}`))
	require.NoError(t, err)

	out := parseBody[chatResponse](t, resp.Body)
	require.Equal(t, "guest-fixed-uuid", out.UserID)
	require.Equal(t, "guest-fixed-uuid", stub.in.UserID)
	require.True(t, strings.HasPrefix(stub.in.UserID, "guest-"))
}

func TestHandle_InvalidBody(t *testing.T) {
	h, err := NewHandler(&stubResolver{})
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`not-json`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, string(resolver.ErrorInvalidInput), out.Error)
}

func TestHandle_NonPostReturnsStatusDocument(t *testing.T) {
	h, err := NewHandler(&stubResolver{})
	require.NoError(t, err)

	event := makeEvent(`{}`)
	event.HTTPMethod = http.MethodGet
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := parseBody[statusResponse](t, resp.Body)
	require.Equal(t, "ok", out.Status)
}

func TestHandle_MapsResolverErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid input", err: &resolver.Error{Code: resolver.ErrorInvalidInput, Reason: "empty_user_id"}, status: http.StatusBadRequest, code: string(resolver.ErrorInvalidInput)},
		{name: "internal", err: &resolver.Error{Code: resolver.ErrorInternal, Reason: "session_store_error"}, status: http.StatusInternalServerError, code: string(resolver.ErrorInternal)},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: string(resolver.ErrorInternal)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewHandler(&stubResolver{err: tc.err})
			require.NoError(t, err)

			resp, err := h.Handle(context.Background(), makeEvent(`{"user_id":"u1","message":"Hi"}`))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			out := parseBody[errorResponse](t, resp.Body)
			require.Equal(t, tc.code, out.Error)
		})
	}
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	stub := &stubResolver{out: resolver.Output{Reply: "ok"}}
	h, err := NewHandler(stub)
	require.NoError(t, err)

	event := makeEvent(`{"user_id":"u1","message":"Hi"}`)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
}
