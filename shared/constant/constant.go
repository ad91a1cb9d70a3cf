package constant

import (
	"time"
)

const (
	ContextGuest = "guest"
)

// Context key types to avoid collisions
type contextKey string

const (
	ContextKeyUserID    contextKey = "user_id"
	ContextKeyUserEmail contextKey = "user_email"
	ContextKeyUserRole  contextKey = "user_role"
	ContextKeyTokenID   contextKey = "token_id"
	ContextKeyDevMode   contextKey = "dev_mode"
)

const (
	RoleAdmin     = "admin"
	RoleLeadGuide = "lead-guide"
	RoleGuide     = "guide"
	RoleUser      = "user"
)

const (
	RequestParamPage   = "page"
	RequestParamLimit  = "limit"
	RequestParamSort   = "sort"
	RequestParamFields = "fields"
)

const (
	RequestParamID       = "id"
	RequestParamReviewID = "reviewId"
	RequestMaxMemory     = 10 << 20 // 10 MB
)

const (
	DefaultValuePage   = 1
	DefaultValueLimit  = 100
	DefaultValueSortBy = "created_at"
)

const (
	FieldID         = "id"
	FieldCreatedAt  = "created_at"
	FieldCreatedBy  = "created_by"
	FieldModifiedAt = "modified_at"
	FieldModifiedBy = "modified_by"
)

const (
	PqErrorCodeUniqueViolation = "23505"
	PqErrorCodeFkViolation     = "23503"
	PqErrorCodeCheckViolation  = "23514"
	PqErrorCodeInvalidText     = "22P02"
)

const (
	DateFormat = time.RFC3339
)

const (
	MinutesToSeconds = 60
)

const (
	OtelServiceScopeName    = "service"
	OtelRepositoryScopeName = "repository"
	OtelHandlerScopeName    = "handler"
	OtelEventScopeName      = "event"
	OtelExternalScopeName   = "external"

	OtelQueryAttributeKey = "query"
	OtelS3ScopeName       = "s3"
	OtelKafkaScopeName    = "kafka"
	OtelStripeScopeName   = "stripe"
)

const (
	RequestHeaderAuthorization   = "Authorization"
	RequestHeaderUserAgent       = "User-Agent"
	RequestHeaderContentType     = "Content-Type"
	RequestHeaderRequestID       = "X-Request-ID"
	RequestHeaderForwardedFor    = "X-Forwarded-For"
	RequestHeaderForwardedProto  = "X-Forwarded-Proto"
	RequestHeaderRealIP          = "X-Real-IP"
	RequestHeaderStripeSignature = "Stripe-Signature"
)

const (
	ContentTypeJSON              = "application/json"
	ContentTypeHTML              = "text/html; charset=utf-8"
	ContentTypeFormURLEncoded    = "application/x-www-form-urlencoded"
	ContentTypeMultipartFormData = "multipart/form-data"
)

const (
	CookieSession       = "jwt"
	CookieLoggedOut     = "loggedout"
	CookieLoggedOutSecs = 10
)

const (
	ResponseStatusSuccess = "success"
	ResponseStatusFail    = "fail"
	ResponseStatusError   = "error"
)

const (
	ResponseErrorPrepareShutdown      = "SERVER PREPARING TO SHUT DOWN"
	ResponseErrorUnhealthy            = "SERVER UNHEALTHY"
	ResponseErrorRequestLimitExceeded = "Too many requests from this IP, please try again in an hour!"
	ResponseErrorGeneric              = "Something went very wrong!"
)

const (
	ServerEnvDevelopment = "development"
	ServerEnvProduction  = "production"
)

const (
	APIPrefix           = "/api"
	PathWebhookCheckout = "/api/v1/bookings/webhook-checkout"
)

const (
	Asterix = "*"
	Empty   = ""
)
