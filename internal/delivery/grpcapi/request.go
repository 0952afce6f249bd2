package grpcapi

import (
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// request reads typed fields from a Struct and remembers the first problem.
type request struct {
	s   *structpb.Struct
	err error
}

func newRequest(s *structpb.Struct) *request {
	return &request{s: s}
}

func (r *request) field(key string, required bool) (*structpb.Value, bool) {
	v, ok := r.s.GetFields()[key]
	if !ok || v == nil {
		if required {
			r.fail("%s is required", key)
		}
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		if required {
			r.fail("%s is required", key)
		}
		return nil, false
	}
	return v, true
}

func (r *request) String(key string) string {
	v, ok := r.field(key, true)
	if !ok {
		return ""
	}
	sv, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString || sv.StringValue == "" {
		r.fail("%s must be a non-empty string", key)
		return ""
	}
	return sv.StringValue
}

func (r *request) OptionalString(key string) string {
	v, ok := r.field(key, false)
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func (r *request) Float(key string) float64 {
	v, ok := r.field(key, true)
	if !ok {
		return 0
	}
	nv, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		r.fail("%s must be a number", key)
		return 0
	}
	return nv.NumberValue
}

func (r *request) Int64(key string) int64 {
	v, ok := r.field(key, true)
	if !ok {
		return 0
	}
	return r.toInt64(key, v)
}

func (r *request) OptionalInt64(key string) *int64 {
	v, ok := r.field(key, false)
	if !ok {
		return nil
	}
	n := r.toInt64(key, v)
	return &n
}

func (r *request) toInt64(key string, v *structpb.Value) int64 {
	nv, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || nv.NumberValue != math.Trunc(nv.NumberValue) {
		r.fail("%s must be an integer", key)
		return 0
	}
	return int64(nv.NumberValue)
}

func (r *request) fail(format string, args ...any) {
	if r.err == nil {
		r.err = status.Errorf(codes.InvalidArgument, format, args...)
	}
}

func (r *request) Err() error {
	return r.err
}
