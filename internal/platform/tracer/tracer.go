// Package tracer is a thin tracing interface over OpenTelemetry so services
// can open spans without importing OTel types.
//
// NoopTracer is the default for tests and local runs; OTelTracer adapts the
// global OTel provider.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	id "unitgate/pkg/domain"
)

// Span must be ended exactly once, usually via defer.
type Span interface {
	// End marks the span failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashPhone keeps phone numbers out of traces while allowing correlation.
func HashPhone(phone string) string {
	normalized := id.NormalizePhone(phone)
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:8])
}

// Span names.
const (
	SpanSubmit            = "membership.submit"
	SpanOwnerApprove      = "membership.owner_approve"
	SpanManagerApprove    = "membership.manager_approve"
	SpanReject            = "membership.reject"
	SpanWithdraw          = "membership.withdraw"
	SpanSuggest           = "membership.suggest"
	SpanResolveSuggestion = "membership.resolve_suggestion"
	SpanConflictReport    = "conflict.report"
	SpanConflictResolve   = "conflict.resolve"
	SpanInviteUse         = "invitation.link_use"
	SpanFamilyAccept      = "invitation.family_accept"
	SpanManagerPhoneJoin  = "invitation.manager_phone"
	SpanDirectoryCall     = "directory.call"
)

// Attribute keys.
const (
	AttrRequestID   = "membership.request_id"
	AttrBuildingID  = "building.id"
	AttrApplicant   = "applicant.phone_hash"
	AttrVerdict     = "matcher.verdict"
	AttrFastPath    = "membership.fast_path"
	AttrCompensated = "directory.compensated"
	AttrCacheHit    = "cache.hit"
	AttrOperation   = "directory.operation"
)
