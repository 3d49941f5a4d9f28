package handler

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/meridian-erp/automation/model"
	"github.com/meridian-erp/automation/util"
	"github.com/pkg/errors"
)

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// WebhookHandler delivers an HTTP request to an external endpoint.
type WebhookHandler struct {
	client *resty.Client
}

func NewWebhookHandler() *WebhookHandler {
	return &WebhookHandler{client: resty.New()}
}

func (h *WebhookHandler) Type() string {
	return "webhook"
}

func (h *WebhookHandler) Validate(config map[string]any) error {
	if _, ok := stringValue(config, "url"); !ok {
		return errors.New("url is required")
	}
	if method, ok := stringValue(config, "method"); ok {
		if !allowedMethods[strings.ToUpper(method)] {
			return errors.Errorf("unsupported method %s", method)
		}
	}
	if auth, ok := mapValue(config, "authentication"); ok {
		authType, _ := stringValue(auth, "type")
		switch authType {
		case "bearer":
			if _, ok := stringValue(auth, "token"); !ok {
				return errors.New("bearer authentication requires a token")
			}
		case "basic":
			if _, ok := stringValue(auth, "username"); !ok {
				return errors.New("basic authentication requires a username")
			}
		default:
			return errors.Errorf("unsupported authentication type %q", authType)
		}
	}
	return nil
}

func (h *WebhookHandler) Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error) {
	resolved := util.ResolveConfig(config, ec.Variables)
	url, _ := stringValue(resolved, "url")
	method := "POST"
	if m, ok := stringValue(resolved, "method"); ok {
		method = strings.ToUpper(m)
	}
	if timeoutSeconds, ok := intValue(resolved, "timeout"); ok && timeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
		defer cancel()
	}

	responseBody := map[string]any{}
	req := h.client.R().
		SetContext(ctx).
		SetHeaders(stringMap(resolved, "headers")).
		SetResult(&responseBody)
	if payload, ok := mapValue(resolved, "payload"); ok {
		req.SetBody(payload)
	}
	if auth, ok := mapValue(resolved, "authentication"); ok {
		authType, _ := stringValue(auth, "type")
		switch authType {
		case "bearer":
			token, _ := stringValue(auth, "token")
			req.SetAuthToken(token)
		case "basic":
			username, _ := stringValue(auth, "username")
			password, _ := stringValue(auth, "password")
			req.SetBasicAuth(username, password)
		}
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, errors.Wrap(err, "webhook request failed")
	}
	if resp.IsError() {
		return nil, errors.Errorf("webhook endpoint returned %s", resp.Status())
	}
	return map[string]any{
		"statusCode": resp.StatusCode(),
		"body":       responseBody,
	}, nil
}
