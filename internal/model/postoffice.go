package model

import "errors"

// InvalidFormatMessage is shown when a pincode fails validation
const InvalidFormatMessage = "Pincode must be 6 digits!"

// ErrInvalidFormat is returned for any input that is not exactly six decimal digits
var ErrInvalidFormat = errors.New(InvalidFormatMessage)

// PostalCode is a validated 6-digit pincode
type PostalCode string

func (p PostalCode) String() string {
	return string(p)
}

// PostOffice represents one branch returned by the postal lookup API
type PostOffice struct {
	Name           string `json:"Name"`
	BranchType     string `json:"BranchType"`
	DeliveryStatus string `json:"DeliveryStatus"`
	District       string `json:"District"`
	Division       string `json:"Division"`
}
