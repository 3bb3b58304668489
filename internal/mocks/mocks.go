package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lingua-service/internal/models"
	"lingua-service/internal/rabbitmq"
	"lingua-service/internal/repositories"
)

// MockUserRepository mocks UserRepository behavior for handlers and middleware.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, email, passwordHash, fullName, profilePic string) (*models.User, error) {
	args := m.Called(ctx, email, passwordHash, fullName, profilePic)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) Onboard(ctx context.Context, id int64, fullName, bio, nativeLanguage, learningLanguage, location string) (*models.User, error) {
	args := m.Called(ctx, id, fullName, bio, nativeLanguage, learningLanguage, location)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) UpdateLanguages(ctx context.Context, id int64, nativeLanguage, learningLanguage string) (*models.User, error) {
	args := m.Called(ctx, id, nativeLanguage, learningLanguage)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, actorID int64, query string) ([]models.User, error) {
	args := m.Called(ctx, actorID, query)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) Recommend(ctx context.Context, actorID int64) ([]models.User, error) {
	args := m.Called(ctx, actorID)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repositories.UserRepository = (*MockUserRepository)(nil)

// MockFriendRepository mocks FriendRepository behavior for handlers.
type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) CreateRequest(ctx context.Context, senderID, recipientID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, senderID, recipientID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) GetIncomingRequests(ctx context.Context, userID int64) ([]models.DirectedRequest, error) {
	args := m.Called(ctx, userID)
	var reqs []models.DirectedRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.DirectedRequest)
	}
	return reqs, args.Error(1)
}

func (m *MockFriendRepository) GetOutgoingRequests(ctx context.Context, userID int64) ([]models.DirectedRequest, error) {
	args := m.Called(ctx, userID)
	var reqs []models.DirectedRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.DirectedRequest)
	}
	return reqs, args.Error(1)
}

func (m *MockFriendRepository) AcceptRequest(ctx context.Context, requestID, userID int64) error {
	args := m.Called(ctx, requestID, userID)
	return args.Error(0)
}

func (m *MockFriendRepository) DeclineRequest(ctx context.Context, requestID, userID int64) error {
	args := m.Called(ctx, requestID, userID)
	return args.Error(0)
}

func (m *MockFriendRepository) ListFriends(ctx context.Context, userID int64) ([]models.User, error) {
	args := m.Called(ctx, userID)
	var friends []models.User
	if val := args.Get(0); val != nil {
		friends = val.([]models.User)
	}
	return friends, args.Error(1)
}

func (m *MockFriendRepository) HasPendingRequest(ctx context.Context, senderID, recipientID int64) (bool, error) {
	args := m.Called(ctx, senderID, recipientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

var _ repositories.FriendRepository = (*MockFriendRepository)(nil)

// MockPublisher mocks RabbitMQ publisher behavior for telemetry and repositories.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ rabbitmq.Publisher = (*MockPublisher)(nil)
