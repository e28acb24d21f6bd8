package common

// Maximum lengths of various string input fields
const (
	MaxLenUserName     = 50
	MaxLenContentType  = 32
	MaxLenCaseTitle    = 150
	MaxLenWarningTitle = 150
	MaxLenNotes        = 10000
	MaxBanReasonLength = 100
)

// IsTest can be overridden to not launch several infinite loops during tests
var IsTest bool
