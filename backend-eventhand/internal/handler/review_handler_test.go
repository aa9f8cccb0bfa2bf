package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/stretchr/testify/assert"
)

func TestReviewHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "created", body: map[string]any{"booking_id": "b-1", "rating": 5}, wantStatus: http.StatusCreated},
		{name: "missing rating", body: map[string]any{"booking_id": "b-1"}, wantStatus: http.StatusBadRequest, wantCode: "INVALID_REQUEST"},
		{name: "out of scale", body: map[string]any{"booking_id": "b-1", "rating": 9}, serviceErr: domain.ErrInvalidRating, wantStatus: http.StatusBadRequest, wantCode: "INVALID_RATING"},
		{name: "pending booking", body: map[string]any{"booking_id": "b-1", "rating": 4}, serviceErr: domain.ErrBookingNotReviewable, wantStatus: http.StatusConflict, wantCode: "BOOKING_NOT_REVIEWABLE"},
		{name: "twice", body: map[string]any{"booking_id": "b-1", "rating": 4}, serviceErr: domain.ErrAlreadyReviewed, wantStatus: http.StatusConflict, wantCode: "ALREADY_REVIEWED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockReviewService{
				CreateReviewFunc: func(ctx context.Context, clientID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &dto.ReviewResponse{ID: "r-1", ClientID: clientID, BookingID: req.BookingID}, nil
				},
			}
			h := NewReviewHandler(svc)
			router := newTestRouter(testUserID)
			router.POST("/reviews", h.CreateReview)

			w := doRequest(router, http.MethodPost, "/reviews", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeEnvelope(t, w).Error.Code)
			}
		})
	}
}

func TestReviewHandler_RemoveReview(t *testing.T) {
	svc := &MockReviewService{
		RemoveReviewFunc: func(ctx context.Context, clientID, reviewID string) error {
			if clientID != testUserID {
				return domain.ErrForbidden
			}
			return nil
		},
	}
	h := NewReviewHandler(svc)

	owner := newTestRouter(testUserID)
	owner.DELETE("/reviews/:id", h.RemoveReview)
	assert.Equal(t, http.StatusNoContent, doRequest(owner, http.MethodDelete, "/reviews/r-1", nil).Code)

	other := newTestRouter("client-002")
	other.DELETE("/reviews/:id", h.RemoveReview)
	assert.Equal(t, http.StatusForbidden, doRequest(other, http.MethodDelete, "/reviews/r-1", nil).Code)

	anonymous := newTestRouter("")
	anonymous.DELETE("/reviews/:id", h.RemoveReview)
	assert.Equal(t, http.StatusUnauthorized, doRequest(anonymous, http.MethodDelete, "/reviews/r-1", nil).Code)
}
