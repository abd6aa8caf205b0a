package rpc

import (
	"strconv"
)

// UCode is the communication status carried in the up-commstatus header.
type UCode int32

// Status codes, numbered like the gRPC codes they mirror.
const (
	CodeOK                 UCode = 0
	CodeCancelled          UCode = 1
	CodeUnknown            UCode = 2
	CodeInvalidArgument    UCode = 3
	CodeDeadlineExceeded   UCode = 4
	CodeNotFound           UCode = 5
	CodeAlreadyExists      UCode = 6
	CodePermissionDenied   UCode = 7
	CodeResourceExhausted  UCode = 8
	CodeFailedPrecondition UCode = 9
	CodeAborted            UCode = 10
	CodeOutOfRange         UCode = 11
	CodeUnimplemented      UCode = 12
	CodeInternal           UCode = 13
	CodeUnavailable        UCode = 14
	CodeDataLoss           UCode = 15
	CodeUnauthenticated    UCode = 16
)

var codeNames = map[UCode]string{
	CodeOK:                 "OK",
	CodeCancelled:          "CANCELLED",
	CodeUnknown:            "UNKNOWN",
	CodeInvalidArgument:    "INVALID_ARGUMENT",
	CodeDeadlineExceeded:   "DEADLINE_EXCEEDED",
	CodeNotFound:           "NOT_FOUND",
	CodeAlreadyExists:      "ALREADY_EXISTS",
	CodePermissionDenied:   "PERMISSION_DENIED",
	CodeResourceExhausted:  "RESOURCE_EXHAUSTED",
	CodeFailedPrecondition: "FAILED_PRECONDITION",
	CodeAborted:            "ABORTED",
	CodeOutOfRange:         "OUT_OF_RANGE",
	CodeUnimplemented:      "UNIMPLEMENTED",
	CodeInternal:           "INTERNAL",
	CodeUnavailable:        "UNAVAILABLE",
	CodeDataLoss:           "DATA_LOSS",
	CodeUnauthenticated:    "UNAUTHENTICATED",
}

func (c UCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UCODE(" + strconv.Itoa(int(c)) + ")"
}

// parseUCode reads an up-commstatus header value. A missing header means OK;
// an unreadable one is reported as UNKNOWN.
func parseUCode(s string) UCode {
	if s == "" {
		return CodeOK
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return CodeUnknown
	}
	return UCode(n)
}

// Priority is the class of service of a message.
type Priority string

// Priorities in ascending order of urgency.
const (
	PriorityCS0 Priority = "CS0"
	PriorityCS1 Priority = "CS1"
	PriorityCS2 Priority = "CS2"
	PriorityCS3 Priority = "CS3"
	PriorityCS4 Priority = "CS4"
	PriorityCS5 Priority = "CS5"
	PriorityCS6 Priority = "CS6"
)

// Valid reports whether p is one of the defined classes.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCS0, PriorityCS1, PriorityCS2, PriorityCS3, PriorityCS4, PriorityCS5, PriorityCS6:
		return true
	}
	return false
}
