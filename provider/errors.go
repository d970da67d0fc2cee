package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"drakyn/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// classifyError converts an SDK or transport error into *model.ProviderError.
//
// Cancellation is passed through untouched: the loop ends a cancelled run
// silently and must be able to see context.Canceled.
func classifyError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if _, ok := model.AsProviderError(err); ok {
		return err
	}

	pe := &model.ProviderError{Provider: provider, Err: err}

	var oaiErr *openai.Error
	var antErr *anthropic.Error
	var ollamaErr api.StatusError
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		pe.Kind = model.KindTimeout
	case errors.As(err, &oaiErr):
		pe.StatusCode = oaiErr.StatusCode
		pe.Kind = kindForStatus(oaiErr.StatusCode)
	case errors.As(err, &antErr):
		pe.StatusCode = antErr.StatusCode
		pe.Kind = kindForStatus(antErr.StatusCode)
	case errors.As(err, &ollamaErr):
		pe.StatusCode = ollamaErr.StatusCode
		pe.Kind = kindForStatus(ollamaErr.StatusCode)
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			pe.Kind = model.KindTimeout
		} else {
			pe.Kind = model.KindConnection
		}
	default:
		pe.Kind, pe.StatusCode = classifyMessage(err.Error())
	}

	return pe
}

func kindForStatus(status int) model.ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return model.KindAuth
	case status == http.StatusTooManyRequests:
		return model.KindRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return model.KindTimeout
	default:
		return model.KindBackend
	}
}

// classifyMessage handles backends that only surface error strings (gollm,
// plain transport errors wrapped with %v).
func classifyMessage(msg string) (model.ErrorKind, int) {
	msgLower := strings.ToLower(msg)
	switch {
	case strings.Contains(msgLower, "401") || strings.Contains(msgLower, "unauthorized") ||
		strings.Contains(msgLower, "invalid api key") || strings.Contains(msgLower, "invalid key"):
		return model.KindAuth, http.StatusUnauthorized
	case strings.Contains(msgLower, "403") || strings.Contains(msgLower, "forbidden"):
		return model.KindAuth, http.StatusForbidden
	case strings.Contains(msgLower, "429") || strings.Contains(msgLower, "rate limit"):
		return model.KindRateLimit, http.StatusTooManyRequests
	case strings.Contains(msgLower, "timeout") || strings.Contains(msgLower, "deadline exceeded"):
		return model.KindTimeout, 0
	case strings.Contains(msgLower, "connection refused") || strings.Contains(msgLower, "no such host") ||
		strings.Contains(msgLower, "connection reset"):
		return model.KindConnection, 0
	case strings.Contains(msgLower, "500") || strings.Contains(msgLower, "internal server"):
		return model.KindBackend, http.StatusInternalServerError
	default:
		return model.KindBackend, 0
	}
}
