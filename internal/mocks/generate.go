// Package mocks provides gomock implementations of the client ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockEvaluationAPI(ctrl)
//	api.EXPECT().Report(gomock.Any(), "r1").Return(report, nil)
package mocks

// Generate mock for IdentityAPI interface from internal/ports package.
// This creates MockIdentityAPI with methods: Me, LoginEmail, Register, ExchangeSession, Logout
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_api_mock.go github.com/target/rightname-go/internal/ports IdentityAPI

// Generate mock for EvaluationAPI interface from internal/ports package.
// This creates MockEvaluationAPI with methods: Evaluate, StartEvaluation, JobStatus, Report
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=evaluation_api_mock.go github.com/target/rightname-go/internal/ports EvaluationAPI

// Generate mock for ProgressFeed interface from internal/ports package.
// This creates MockProgressFeed with methods: Watch
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=progress_feed_mock.go github.com/target/rightname-go/internal/ports ProgressFeed
