// Package mocks provides gomock implementations of the core ports for tests.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	client := mocks.NewMockResourceClient(ctrl)
//	client.EXPECT().Get(gomock.Any(), jobtype.FamilyJob, "42").Return(doc, nil)
package mocks

// ResourceClient: Get, Options, Stats, Extend
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=resource_client_mock.go github.com/target/jobz/internal/core ResourceClient

// LoadingIndicator: Start, Stop
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=loading_indicator_mock.go github.com/target/jobz/internal/core LoadingIndicator

// ErrorReporter: Report
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=error_reporter_mock.go github.com/target/jobz/internal/core ErrorReporter

// SubscriptionRegistrar: AddStateResolve
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=subscription_registrar_mock.go github.com/target/jobz/internal/core SubscriptionRegistrar
