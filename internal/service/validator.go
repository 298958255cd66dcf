package service

import "github.com/jjenkins/pincode/internal/model"

// PincodeLength is the number of digits in an Indian postal code
const PincodeLength = 6

// Validate accepts only strings of exactly six ASCII decimal digits
func Validate(code string) (model.PostalCode, error) {
	if len(code) != PincodeLength {
		return "", model.ErrInvalidFormat
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return "", model.ErrInvalidFormat
		}
	}
	return model.PostalCode(code), nil
}
