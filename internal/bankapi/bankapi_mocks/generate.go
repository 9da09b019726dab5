package bankapi_mocks

//go:generate mockgen -source=../interfaces.go -destination=bankapi_mocks.go -package=bankapi_mocks

// This file contains the go:generate directive to generate mocks for the banking API client interfaces.
// To regenerate the mocks, run:
//   go generate ./internal/bankapi/bankapi_mocks
