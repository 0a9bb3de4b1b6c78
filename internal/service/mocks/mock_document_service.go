package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"patientdocs/internal/model"
	"patientdocs/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, p model.Principal, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) ListForPatient(ctx context.Context, p model.Principal, patientID string) ([]service.DocumentSummary, error) {
	args := m.Called(ctx, p, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentSummary), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, p model.Principal, id string) (*service.DocumentContent, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentContent), args.Error(1)
}

func (m *MockDocumentService) IssueQR(ctx context.Context, p model.Principal, id string, durationHours int) (*service.QRGrant, error) {
	args := m.Called(ctx, p, id, durationHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QRGrant), args.Error(1)
}

func (m *MockDocumentService) ResolveQR(ctx context.Context, token string) (*service.PublicDocument, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublicDocument), args.Error(1)
}

func (m *MockDocumentService) DownloadViaQR(ctx context.Context, token string) (*service.DocumentContent, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentContent), args.Error(1)
}

func (m *MockDocumentService) Share(ctx context.Context, p model.Principal, id string, in service.ShareInput) (*service.ShareResult, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShareResult), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, p model.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}

func (m *MockDocumentService) Stats(ctx context.Context, p model.Principal) (*model.DocumentStats, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentStats), args.Error(1)
}
