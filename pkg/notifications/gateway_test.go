package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/validator"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Create(ctx context.Context, n Notification) (*Notification, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockStorage) Get(ctx context.Context, id uuid.UUID, owner Owner) (*Notification, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, owner Owner, opts ListOptions) (*Page, error) {
	args := m.Called(ctx, owner, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Page), args.Error(1)
}

func (m *MockStorage) MarkRead(ctx context.Context, id uuid.UUID, owner Owner) (*Notification, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockStorage) MarkAllRead(ctx context.Context, owner Owner) (int64, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) CountUnread(ctx context.Context, owner Owner) (int64, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(int64), args.Error(1)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastToRole(ctx context.Context, role Role, n Notification) error {
	args := m.Called(ctx, role, n)
	return args.Error(0)
}

func (m *MockBroadcaster) BroadcastToRecipient(ctx context.Context, role Role, recipientID string, n Notification) error {
	args := m.Called(ctx, role, recipientID, n)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newTestGateway(s Storage, b Broadcaster, opts ...GatewayOption) *Gateway {
	return NewGateway(s, b, append([]GatewayOption{WithGatewayLogger(logger.Discard())}, opts...)...)
}

func TestGateway_Create(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("role wide notification goes to role room only", func(t *testing.T) {
		stored := &Notification{ID: uuid.New(), Role: RoleMentor, RecipientRole: RoleMentor, Title: "Session booked", Message: "Tomorrow"}
		s := new(MockStorage)
		b := new(MockBroadcaster)
		s.On("Create", ctx, mock.MatchedBy(func(n Notification) bool {
			return n.ID != uuid.Nil && n.RecipientRole == RoleMentor && n.Type == DefaultType && n.RecipientID == ""
		})).Return(stored, nil).Once()
		b.On("BroadcastToRole", ctx, RoleMentor, *stored).Return(nil).Once()

		n, err := newTestGateway(s, b).Create(ctx, CreateParams{Role: RoleMentor, Title: "Session booked", Message: "Tomorrow"})
		require.NoError(t, err)
		assert.Equal(t, stored, n)

		s.AssertExpectations(t)
		b.AssertExpectations(t)
		b.AssertNotCalled(t, "BroadcastToRecipient", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("recipient notification goes to recipient room only", func(t *testing.T) {
		stored := &Notification{ID: uuid.New(), Role: RoleStudent, RecipientRole: RoleStudent, RecipientID: "5", Title: "t", Message: "m"}
		s := new(MockStorage)
		b := new(MockBroadcaster)
		s.On("Create", ctx, mock.Anything).Return(stored, nil).Once()
		b.On("BroadcastToRecipient", ctx, RoleStudent, "5", *stored).Return(nil).Once()

		_, err := newTestGateway(s, b).Create(ctx, CreateParams{Role: RoleStudent, RecipientID: "5", Title: "t", Message: "m"})
		require.NoError(t, err)

		b.AssertExpectations(t)
		b.AssertNotCalled(t, "BroadcastToRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("recipient role drives the room", func(t *testing.T) {
		stored := &Notification{ID: uuid.New(), Role: RoleAdmin, RecipientRole: RoleCompany, RecipientID: "9", Title: "t", Message: "m"}
		s := new(MockStorage)
		b := new(MockBroadcaster)
		s.On("Create", ctx, mock.MatchedBy(func(n Notification) bool {
			return n.Role == RoleAdmin && n.RecipientRole == RoleCompany
		})).Return(stored, nil).Once()
		b.On("BroadcastToRecipient", ctx, RoleCompany, "9", *stored).Return(nil).Once()

		_, err := newTestGateway(s, b).Create(ctx, CreateParams{Role: RoleAdmin, RecipientRole: RoleCompany, RecipientID: "9", Title: "t", Message: "m"})
		require.NoError(t, err)
		b.AssertExpectations(t)
	})

	t.Run("storage failure skips broadcast", func(t *testing.T) {
		s := new(MockStorage)
		b := new(MockBroadcaster)
		storeErr := errors.Join(ErrStorage, errors.New("connection refused"))
		s.On("Create", ctx, mock.Anything).Return(nil, storeErr).Once()

		n, err := newTestGateway(s, b).Create(ctx, CreateParams{Role: RoleAdmin, RecipientID: "7", Title: "t", Message: "m"})
		assert.Nil(t, n)
		assert.ErrorIs(t, err, ErrStorage)

		b.AssertNotCalled(t, "BroadcastToRole", mock.Anything, mock.Anything, mock.Anything)
		b.AssertNotCalled(t, "BroadcastToRecipient", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("broadcast failure is not returned", func(t *testing.T) {
		stored := &Notification{ID: uuid.New(), Role: RoleAdmin, RecipientRole: RoleAdmin, Title: "t", Message: "m"}
		s := new(MockStorage)
		b := new(MockBroadcaster)
		s.On("Create", ctx, mock.Anything).Return(stored, nil).Once()
		b.On("BroadcastToRole", ctx, RoleAdmin, *stored).Return(errors.New("hub closed")).Once()

		n, err := newTestGateway(s, b).Create(ctx, CreateParams{Role: RoleAdmin, Title: "t", Message: "m"})
		require.NoError(t, err)
		assert.Equal(t, stored, n)
	})

	t.Run("validation happens before storage", func(t *testing.T) {
		s := new(MockStorage)
		b := new(MockBroadcaster)

		_, err := newTestGateway(s, b).Create(ctx, CreateParams{Role: "guest", Title: "", Message: "m", Link: "not a url"})
		require.ErrorIs(t, err, ErrValidation)

		ve := validator.ExtractValidationErrors(err)
		assert.True(t, ve.Has("role"))
		assert.True(t, ve.Has("title"))
		assert.True(t, ve.Has("link"))
		s.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("nil broadcaster is a no-op", func(t *testing.T) {
		gw := newTestGateway(NewMemoryStorage(), nil)
		n, err := gw.Create(ctx, CreateParams{Role: RoleAdmin, Title: "t", Message: "m"})
		require.NoError(t, err)
		assert.Equal(t, DefaultType, n.Type)
	})
}

func TestGateway_PassThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	owner := Owner{Role: RoleAdmin, RecipientID: "7"}
	id := uuid.New()

	s := new(MockStorage)
	s.On("Get", ctx, id, owner).Return(&Notification{ID: id}, nil).Once()
	s.On("List", ctx, owner, ListOptions{Limit: 5}).Return(&Page{Total: 1}, nil).Once()
	s.On("MarkRead", ctx, id, owner).Return(nil, ErrNotFound).Once()
	s.On("MarkAllRead", ctx, owner).Return(int64(3), nil).Once()
	s.On("CountUnread", ctx, owner).Return(int64(2), nil).Once()

	gw := newTestGateway(s, nil)

	got, err := gw.Get(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	page, err := gw.List(ctx, owner, ListOptions{Limit: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = gw.MarkRead(ctx, id, owner)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := gw.MarkAllRead(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)

	count, err := gw.CountUnread(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	s.AssertExpectations(t)

	_, err = gw.CountUnread(ctx, Owner{Role: "guest"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGateway_NotifyAllInRole(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	admins := StaticDirectory{
		RoleAdmin: {
			{ID: "1", Email: "one@example.com"},
			{ID: "2"},
			{ID: "3", Email: "three@example.com"},
		},
	}
	params := FanOutParams{
		Role:    RoleAdmin,
		Type:    "registration",
		Title:   "New Student Registered",
		Message: "Jane Doe has registered as student",
		Link:    "/admin/students/42",
	}

	t.Run("creates one notification per recipient and emails those with an address", func(t *testing.T) {
		store := NewMemoryStorage()
		b := new(MockBroadcaster)
		b.On("BroadcastToRecipient", mock.Anything, RoleAdmin, mock.Anything, mock.Anything).Return(nil).Times(3)

		mailer := new(MockMailer)
		mailer.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool {
			return m.Subject == params.Title && m.Tag == "registration"
		})).Return(nil).Twice()

		gw := newTestGateway(store, b,
			WithDirectory(admins),
			WithMailer(mailer),
			WithEmailLinkBase("https://app.example.com/"),
			WithEmailRateLimit(1000, 10),
		)
		res, err := gw.NotifyAllInRole(ctx, params)
		require.NoError(t, err)

		assert.Len(t, res.Created, 3)
		assert.Equal(t, 2, res.Emailed)
		assert.Empty(t, res.Failed)

		for _, id := range []string{"1", "2", "3"} {
			count, err := store.CountUnread(ctx, Owner{Role: RoleAdmin, RecipientID: id})
			require.NoError(t, err)
			assert.EqualValues(t, 1, count)
		}

		mailer.AssertExpectations(t)
		for _, call := range mailer.Calls {
			msg := call.Arguments.Get(1).(email.Message)
			assert.Contains(t, msg.HTMLBody, "https://app.example.com/admin/students/42")
		}
		b.AssertExpectations(t)
	})

	t.Run("one failure does not block the others", func(t *testing.T) {
		s := new(MockStorage)
		s.On("Create", mock.Anything, mock.MatchedBy(func(n Notification) bool { return n.RecipientID == "2" })).
			Return(nil, errors.Join(ErrStorage, errors.New("deadlock detected"))).Once()
		s.On("Create", mock.Anything, mock.Anything).
			Return(&Notification{ID: uuid.New(), Role: RoleAdmin, RecipientRole: RoleAdmin, RecipientID: "x"}, nil).Twice()

		mailer := new(MockMailer)
		mailer.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool { return m.To == "three@example.com" })).
			Return(email.ErrFailedToSendEmail).Once()
		mailer.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

		gw := newTestGateway(s, nil, WithDirectory(admins), WithMailer(mailer), WithEmailRateLimit(1000, 10))
		res, err := gw.NotifyAllInRole(ctx, params)
		require.NoError(t, err)

		assert.Len(t, res.Created, 2)
		assert.Equal(t, 1, res.Emailed)
		require.Len(t, res.Failed, 2)
		assert.Equal(t, FanOutFailure{RecipientID: "2", Stage: StageNotification, Error: ErrStorage.Error()}, res.Failed[0])
		assert.Equal(t, "3", res.Failed[1].RecipientID)
		assert.Equal(t, StageEmail, res.Failed[1].Stage)

		s.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("email skipped when opted out", func(t *testing.T) {
		mailer := new(MockMailer)
		gw := newTestGateway(NewMemoryStorage(), nil, WithDirectory(admins), WithMailer(mailer))

		noEmail := params
		noEmail.Email = new(bool)
		res, err := gw.NotifyAllInRole(ctx, noEmail)
		require.NoError(t, err)
		assert.Len(t, res.Created, 3)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("directory failure fails the call", func(t *testing.T) {
		dir := DirectoryFunc(func(context.Context, Role) ([]Recipient, error) {
			return nil, errors.New("accounts service down")
		})
		s := new(MockStorage)
		gw := newTestGateway(s, nil, WithDirectory(dir))

		_, err := gw.NotifyAllInRole(ctx, params)
		assert.ErrorIs(t, err, ErrDirectoryUnavailable)
		s.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty role yields empty result", func(t *testing.T) {
		gw := newTestGateway(NewMemoryStorage(), nil, WithDirectory(StaticDirectory{}))
		res, err := gw.NotifyAllInRole(ctx, FanOutParams{Role: RoleMentor, Title: "t", Message: "m"})
		require.NoError(t, err)
		assert.Empty(t, res.Created)
		assert.Empty(t, res.Failed)
	})

	t.Run("invalid params and missing directory", func(t *testing.T) {
		gw := newTestGateway(NewMemoryStorage(), nil, WithDirectory(admins))
		_, err := gw.NotifyAllInRole(ctx, FanOutParams{Role: RoleAdmin})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = newTestGateway(NewMemoryStorage(), nil).NotifyAllInRole(ctx, params)
		assert.ErrorIs(t, err, ErrNoDirectory)
	})
}

func TestGateway_AbsoluteLink(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(NewMemoryStorage(), nil, WithEmailLinkBase("https://app.example.com/"))
	assert.Equal(t, "https://app.example.com/jobs/1", gw.absoluteLink("/jobs/1"))
	assert.Equal(t, "https://other.example.com/x", gw.absoluteLink("https://other.example.com/x"))
	assert.Equal(t, "//cdn.example.com/x", gw.absoluteLink("//cdn.example.com/x"))
	assert.Empty(t, gw.absoluteLink(""))
}
