package models

import (
	"time"
)

// HTTPMethod enumerates the verbs a webhook delivery may use.
type HTTPMethod string

const (
	HTTPMethodDelete HTTPMethod = "DELETE"
	HTTPMethodGet    HTTPMethod = "GET"
	HTTPMethodHead   HTTPMethod = "HEAD"
	HTTPMethodPatch  HTTPMethod = "PATCH"
	HTTPMethodPost   HTTPMethod = "POST"
	HTTPMethodPut    HTTPMethod = "PUT"
)

// Valid reports whether m is one of the supported verbs.
func (m HTTPMethod) Valid() bool {
	switch m {
	case HTTPMethodDelete, HTTPMethodGet, HTTPMethodHead,
		HTTPMethodPatch, HTTPMethodPost, HTTPMethodPut:
		return true
	}
	return false
}

// ActionType discriminates the action variants. Webhook is the only
// variant today.
type ActionType string

const ActionTypeWebhook ActionType = "webhook"

// Action describes what a trigger does when it fires.
type Action struct {
	Type    ActionType `json:"type" binding:"required,oneof=webhook" example:"webhook"`
	Webhook *Webhook   `json:"webhook,omitempty"`
} // @name Action

func (a *Action) Clone() *Action {
	out := *a
	if a.Webhook != nil {
		webhook := *a.Webhook
		if a.Webhook.Retry != nil {
			retry := *a.Webhook.Retry
			webhook.Retry = &retry
		}
		out.Webhook = &webhook
	}
	return &out
}

// Webhook delivery defaults.
const (
	DefaultWebhookMethod   = HTTPMethodPost
	DefaultWebhookTimeoutS = 5.0
	MinWebhookTimeoutS     = 1.0
	MaxWebhookTimeoutS     = 30.0
)

// Webhook is the outbound HTTP call a trigger performs.
type Webhook struct {
	URL        string       `json:"url" binding:"required" example:"https://example.com/hooks/cronback"`
	HTTPMethod HTTPMethod   `json:"http_method,omitempty" example:"POST"`
	TimeoutS   float64      `json:"timeout_s,omitempty" example:"5"`
	Retry      *RetryConfig `json:"retry,omitempty"`
} // @name Webhook

// Timeout converts the fractional-seconds field into a duration.
func (w *Webhook) Timeout() time.Duration {
	return time.Duration(w.TimeoutS * float64(time.Second))
}

// RetryType discriminates the retry policy variants.
type RetryType string

const (
	RetryTypeSimple             RetryType = "simple"
	RetryTypeExponentialBackoff RetryType = "exponential_backoff"
)

// RetryConfig bounds the attempt sequence of a failing delivery.
type RetryConfig struct {
	Type           RetryType `json:"type" binding:"required,oneof=simple exponential_backoff" example:"exponential_backoff"`
	MaxNumAttempts uint32    `json:"max_num_attempts" binding:"required,min=1" example:"5"`
	DelayS         float64   `json:"delay_s" example:"10"`
	MaxDelayS      float64   `json:"max_delay_s,omitempty" example:"100"`
} // @name RetryConfig

// Delay converts DelayS into a duration.
func (r *RetryConfig) Delay() time.Duration {
	return time.Duration(r.DelayS * float64(time.Second))
}

// MaxDelay converts MaxDelayS into a duration.
func (r *RetryConfig) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelayS * float64(time.Second))
}

// Payload limits.
const (
	DefaultContentType = "application/json; charset=utf-8"
	MaxPayloadHeaders  = 30
	MaxPayloadBodySize = 1048576 // 1 MiB
)

// Payload is delivered verbatim with every webhook request.
type Payload struct {
	ContentType string            `json:"content_type,omitempty" example:"application/json; charset=utf-8"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        string            `json:"body,omitempty" example:"{\"hello\":\"world\"}"`
} // @name Payload

func (p *Payload) Clone() *Payload {
	out := *p
	if p.Headers != nil {
		headers := make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			headers[k] = v
		}
		out.Headers = headers
	}
	return &out
}

// EffectiveContentType resolves the payload's content type.
func (p *Payload) EffectiveContentType() string {
	if p.ContentType == "" {
		return DefaultContentType
	}
	return p.ContentType
}
