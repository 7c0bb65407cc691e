package guide

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_provider.go github.com/kasuboski/catalogz/pkg/guide Provider
