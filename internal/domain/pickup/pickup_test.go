package pickup

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/values"
)

func TestNewRequest(t *testing.T) {
	requesterID := uuid.New()

	tests := []struct {
		name        string
		requesterID uuid.UUID
		category    string
		quantity    float64
		window      time.Duration
		wantErr     string
	}{
		{
			name:        "valid request",
			requesterID: requesterID,
			category:    "Plastic",
			quantity:    10,
			window:      5 * time.Minute,
		},
		{
			name:        "nil requester",
			requesterID: uuid.Nil,
			category:    "Plastic",
			quantity:    10,
			window:      5 * time.Minute,
			wantErr:     "requester ID cannot be nil",
		},
		{
			name:        "empty category",
			requesterID: requesterID,
			category:    "",
			quantity:    10,
			window:      5 * time.Minute,
			wantErr:     "waste category cannot be empty",
		},
		{
			name:        "zero quantity",
			requesterID: requesterID,
			category:    "Plastic",
			quantity:    0,
			window:      5 * time.Minute,
			wantErr:     "quantity must be positive",
		},
		{
			name:        "zero window",
			requesterID: requesterID,
			category:    "Plastic",
			quantity:    10,
			window:      0,
			wantErr:     "bidding window must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.requesterID, "Riverside Apartments", "42 Canal Street", tt.category, tt.quantity, tt.window)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPending, req.Status)
			assert.NotEqual(t, uuid.Nil, req.ID)
			assert.Nil(t, req.AssignedVendorID)
			assert.Nil(t, req.WinningAmount)
		})
	}
}

func TestNewRequest_WindowEndsAt(t *testing.T) {
	mockClock := &MockClock{CurrentTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	SetClock(mockClock)
	defer ResetClock()

	req, err := NewRequest(uuid.New(), "Riverside Apartments", "42 Canal Street", "Plastic", 10, 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, mockClock.CurrentTime.Add(5*time.Minute), req.WindowEndsAt)
	assert.Equal(t, mockClock.CurrentTime, req.CreatedAt)
}

func TestRequest_Transitions(t *testing.T) {
	newRequest := func(t *testing.T) *Request {
		req, err := NewRequest(uuid.New(), "Riverside Apartments", "42 Canal Street", "Plastic", 10, 5*time.Minute)
		require.NoError(t, err)
		return req
	}

	t.Run("pending to bidding", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OpenBidding())
		assert.Equal(t, StatusBidding, req.Status)
	})

	t.Run("cannot open bidding twice", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OpenBidding())
		assert.Error(t, req.OpenBidding())
	})

	t.Run("bidding to assigned", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OpenBidding())

		vendorID := uuid.New()
		amount := values.MustNewMoneyFromFloat(95.00, values.USD)
		require.NoError(t, req.Assign(vendorID, amount))

		assert.Equal(t, StatusAssigned, req.Status)
		require.NotNil(t, req.AssignedVendorID)
		assert.Equal(t, vendorID, *req.AssignedVendorID)
		require.NotNil(t, req.WinningAmount)
		assert.True(t, req.WinningAmount.Equal(amount))
	})

	t.Run("cannot assign from pending", func(t *testing.T) {
		req := newRequest(t)
		err := req.Assign(uuid.New(), values.MustNewMoneyFromFloat(95.00, values.USD))
		assert.Error(t, err)
	})

	t.Run("cannot assign nil vendor", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OpenBidding())
		err := req.Assign(uuid.Nil, values.MustNewMoneyFromFloat(95.00, values.USD))
		assert.Error(t, err)
	})

	t.Run("assigned to completed", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OpenBidding())
		require.NoError(t, req.Assign(uuid.New(), values.MustNewMoneyFromFloat(95.00, values.USD)))
		require.NoError(t, req.Complete())
		assert.Equal(t, StatusCompleted, req.Status)
	})

	t.Run("cannot complete without assignment", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OpenBidding())
		assert.Error(t, req.Complete())
	})

	t.Run("cancel from bidding", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OpenBidding())
		require.NoError(t, req.Cancel())
		assert.Equal(t, StatusCancelled, req.Status)
	})

	t.Run("cannot cancel terminal request", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.OpenBidding())
		require.NoError(t, req.Cancel())
		assert.Error(t, req.Cancel())
	})
}

func TestRequest_WindowElapsed(t *testing.T) {
	mockClock := &MockClock{CurrentTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	SetClock(mockClock)
	defer ResetClock()

	req, err := NewRequest(uuid.New(), "Riverside Apartments", "42 Canal Street", "Plastic", 10, 5*time.Minute)
	require.NoError(t, err)

	assert.False(t, req.WindowElapsed(mockClock.CurrentTime))
	assert.False(t, req.WindowElapsed(mockClock.CurrentTime.Add(5*time.Minute-time.Second)))
	assert.True(t, req.WindowElapsed(req.WindowEndsAt))
	assert.True(t, req.WindowElapsed(req.WindowEndsAt.Add(time.Hour)))
}

func TestStatus_Properties(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusBidding.IsTerminal())

	assert.True(t, StatusPending.IsOpen())
	assert.True(t, StatusBidding.IsOpen())
	assert.True(t, StatusAssigned.IsOpen())
	assert.False(t, StatusCompleted.IsOpen())
	assert.False(t, StatusCancelled.IsOpen())
}

func TestStatus_StringRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusBidding, StatusAssigned, StatusCompleted, StatusCancelled} {
		assert.Equal(t, s, ParseStatus(s.String()))
	}
	assert.Equal(t, StatusPending, ParseStatus("garbage"))
}
