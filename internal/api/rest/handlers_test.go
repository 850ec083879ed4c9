package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/bid"
	domainerrors "github.com/greencycle/waste-pickup-exchange/internal/domain/errors"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/pickup"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/requester"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/vendor"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/config"
	"github.com/greencycle/waste-pickup-exchange/internal/service/auction"
	"github.com/greencycle/waste-pickup-exchange/internal/testutil/fixtures"
	"github.com/greencycle/waste-pickup-exchange/internal/testutil/mocks"
)

type apiMocks struct {
	pickupRepo *mocks.PickupRepository
	bidRepo    *mocks.BidRepository
	directory  *mocks.Directory
}

func newTestRouter(t *testing.T) (http.Handler, *apiMocks) {
	t.Helper()
	m := &apiMocks{
		pickupRepo: new(mocks.PickupRepository),
		bidRepo:    new(mocks.BidRepository),
		directory:  new(mocks.Directory),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := auction.NewService(m.pickupRepo, m.bidRepo, m.directory, nil, nil, nil,
		config.AuctionConfig{BiddingWindow: 5 * time.Minute, Currency: "USD"}, logger)

	router := NewRouter(NewHandler(svc, logger), RouterConfig{})
	return router, m
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	return er
}

func TestCreateRequestEndpoint(t *testing.T) {
	requesterID := uuid.New()
	profile := &requester.Profile{ID: requesterID, Name: "Riverside Apartments", Address: "42 Canal Street"}

	t.Run("creates and opens bidding", func(t *testing.T) {
		router, m := newTestRouter(t)

		m.directory.On("GetProfile", mock.Anything, requesterID).Return(profile, nil)
		m.pickupRepo.On("FindOpenByRequesterAndCategory", mock.Anything, requesterID, "Plastic").Return(nil, nil)
		m.pickupRepo.On("Create", mock.Anything, mock.AnythingOfType("*pickup.Request")).Return(nil)
		m.pickupRepo.On("UpdateStatusIf", mock.Anything, mock.AnythingOfType("uuid.UUID"),
			pickup.StatusPending, pickup.StatusBidding).Return(true, nil)
		m.directory.On("ListVendorsByCategory", mock.Anything, "Plastic").Return([]*vendor.Vendor{}, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", CreateRequestRequest{
			RequesterID: requesterID,
			Category:    "Plastic",
			QuantityKG:  12.5,
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		var created pickup.Request
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "bidding", created.Status.String())
		assert.Equal(t, requesterID, created.RequesterID)
	})

	t.Run("duplicate request returns 409", func(t *testing.T) {
		router, m := newTestRouter(t)
		existing := fixtures.NewRequestBuilder().WithRequesterID(requesterID).Build(t)

		m.directory.On("GetProfile", mock.Anything, requesterID).Return(profile, nil)
		m.pickupRepo.On("FindOpenByRequesterAndCategory", mock.Anything, requesterID, "Plastic").
			Return(existing, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", CreateRequestRequest{
			RequesterID: requesterID,
			Category:    "Plastic",
			QuantityKG:  12.5,
		})

		require.Equal(t, http.StatusConflict, rec.Code)
		er := decodeError(t, rec)
		assert.Equal(t, "DUPLICATE_REQUEST", er.Code)
		assert.Equal(t, existing.ID.String(), er.Details["existing_request_id"])
	})

	t.Run("validation failure returns 400", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", map[string]any{
			"requester_id":   requesterID,
			"waste_category": "Plastic",
			"quantity_kg":    0,
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_FAILED", decodeError(t, rec).Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		router, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_JSON", decodeError(t, rec).Code)
	})
}

func TestCreateBinAlertEndpoint(t *testing.T) {
	factoryID := uuid.New()

	t.Run("unknown factory returns 404", func(t *testing.T) {
		router, m := newTestRouter(t)

		m.directory.On("GetFactory", mock.Anything, factoryID).Return(nil, domainerrors.ErrFactoryNotFound)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/bin-alerts", CreateBinAlertRequest{
			FactoryID:  factoryID,
			QuantityKG: 40,
		})

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "FACTORY_NOT_FOUND", decodeError(t, rec).Code)
	})
}

func TestSubmitBidEndpoint(t *testing.T) {
	requestID := uuid.New()
	vendorID := uuid.New()

	t.Run("places a bid", func(t *testing.T) {
		router, m := newTestRouter(t)
		req := fixtures.NewRequestBuilder().WithID(requestID).WithCategory("Plastic").Build(t)
		v := fixtures.NewVendorBuilder().WithID(vendorID).WithCategories("Plastic").Build(t)

		m.pickupRepo.On("GetByID", mock.Anything, requestID).Return(req, nil)
		m.directory.On("GetVendor", mock.Anything, vendorID).Return(v, nil)
		m.bidRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*bid.Bid")).Return(nil)

		rec := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/v1/requests/%s/bids", requestID), SubmitBidRequest{
				VendorID:    vendorID,
				AmountCents: 9500,
			})

		require.Equal(t, http.StatusCreated, rec.Code)
		var placed bid.Bid
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
		assert.Equal(t, vendorID, placed.VendorID)
	})

	t.Run("ineligible vendor returns 422", func(t *testing.T) {
		router, m := newTestRouter(t)
		req := fixtures.NewRequestBuilder().WithID(requestID).WithCategory("electronic").Build(t)
		v := fixtures.NewVendorBuilder().WithID(vendorID).WithCategories("Plastic").Build(t)

		m.pickupRepo.On("GetByID", mock.Anything, requestID).Return(req, nil)
		m.directory.On("GetVendor", mock.Anything, vendorID).Return(v, nil)

		rec := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/v1/requests/%s/bids", requestID), SubmitBidRequest{
				VendorID:    vendorID,
				AmountCents: 9500,
			})

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "VENDOR_NOT_ELIGIBLE", decodeError(t, rec).Code)
	})

	t.Run("closed request returns 422", func(t *testing.T) {
		router, m := newTestRouter(t)
		req := fixtures.NewRequestBuilder().WithID(requestID).WithStatus(pickup.StatusCancelled).Build(t)

		m.pickupRepo.On("GetByID", mock.Anything, requestID).Return(req, nil)

		rec := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/v1/requests/%s/bids", requestID), SubmitBidRequest{
				VendorID:    vendorID,
				AmountCents: 9500,
			})

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "REQUEST_NOT_BIDDING", decodeError(t, rec).Code)
	})

	t.Run("bad path parameter returns 400", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/requests/not-a-uuid/bids", SubmitBidRequest{
			VendorID:    vendorID,
			AmountCents: 9500,
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ID", decodeError(t, rec).Code)
	})
}

func TestCompleteRequestEndpoint(t *testing.T) {
	requestID := uuid.New()

	t.Run("completes an assigned request", func(t *testing.T) {
		router, m := newTestRouter(t)

		m.pickupRepo.On("UpdateStatusIf", mock.Anything, requestID,
			pickup.StatusAssigned, pickup.StatusCompleted).Return(true, nil)

		rec := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/v1/requests/%s/complete", requestID), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unassigned request returns 422", func(t *testing.T) {
		router, m := newTestRouter(t)

		m.pickupRepo.On("UpdateStatusIf", mock.Anything, requestID,
			pickup.StatusAssigned, pickup.StatusCompleted).Return(false, nil)

		rec := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/v1/requests/%s/complete", requestID), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestListEndpoints(t *testing.T) {
	t.Run("request bids in selection order", func(t *testing.T) {
		router, m := newTestRouter(t)
		requestID := uuid.New()
		high := fixtures.NewBidBuilder(requestID).WithAmountCents(9500).Build(t)
		low := fixtures.NewBidBuilder(requestID).WithAmountCents(9000).Build(t)

		m.bidRepo.On("ListByRequest", mock.Anything, requestID).Return([]*bid.Bid{high, low}, nil)

		rec := doJSON(t, router, http.MethodGet,
			fmt.Sprintf("/api/v1/requests/%s/bids", requestID), nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var bids []bid.Bid
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bids))
		require.Len(t, bids, 2)
		assert.Equal(t, high.ID, bids[0].ID)
	})

	t.Run("vendor open requests", func(t *testing.T) {
		router, m := newTestRouter(t)
		vendorID := uuid.New()
		v := fixtures.NewVendorBuilder().WithID(vendorID).WithCategories("Plastic").Build(t)
		open := fixtures.NewRequestBuilder().WithCategory("Plastic").Build(t)

		m.directory.On("GetVendor", mock.Anything, vendorID).Return(v, nil)
		m.pickupRepo.On("ListBidding", mock.Anything).Return([]*pickup.Request{open}, nil)

		rec := doJSON(t, router, http.MethodGet,
			fmt.Sprintf("/api/v1/vendors/%s/open-requests", vendorID), nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var requests []pickup.Request
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &requests))
		require.Len(t, requests, 1)
	})
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
