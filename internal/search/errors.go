package search

import "errors"

// ErrSyntax covers malformed SearchCriteria expressions: unbalanced
// parens, missing operands, unterminated strings.
var ErrSyntax = errors.New("search: syntax error")

// ErrUnknownProperty is returned for any property outside the supported
// set; the SOAP layer maps this to UPnP fault 708 (unsupported or invalid
// search criteria).
var ErrUnknownProperty = errors.New("search: unknown property")

// ErrUnknownOp is returned for an operator the grammar doesn't define.
// Operators are not checked against the property's type.
var ErrUnknownOp = errors.New("search: unknown or unsupported operator")
