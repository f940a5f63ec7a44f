package spin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/models"
	"github.com/magabrotheeeer/companion-chat/internal/services/slot"
)

type MachineMock struct {
	mock.Mock
}

func (m *MachineMock) Spin() (models.SlotState, error) {
	args := m.Called()
	return args.Get(0).(models.SlotState), args.Error(1)
}

func TestSpinHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name      string
		state     models.SlotState
		err       error
		wantCode  int
		wantError string
	}{
		{
			name:     "spinning",
			state:    models.SlotState{Credits: 90, Bet: 10, Spinning: true},
			wantCode: http.StatusOK,
		},
		{
			name:      "already spinning",
			state:     models.SlotState{Credits: 90, Bet: 10, Spinning: true},
			err:       fmt.Errorf("slot.Spin: %w", slot.ErrSpinInProgress),
			wantCode:  http.StatusConflict,
			wantError: "spin already in progress",
		},
		{
			name:      "out of credits",
			state:     models.SlotState{Credits: 105, Bet: 10},
			err:       fmt.Errorf("slot.Spin: %w", slot.ErrInsufficientCredits),
			wantCode:  http.StatusConflict,
			wantError: "insufficient credits",
		},
		{
			name:      "closed",
			err:       slot.ErrClosed,
			wantCode:  http.StatusServiceUnavailable,
			wantError: "game is not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := new(MachineMock)
			machine.On("Spin").Return(tt.state, tt.err).Once()

			rec := httptest.NewRecorder()
			New(sl.NewDiscardLogger(), machine).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/game/spin", nil))

			assert.Equal(t, tt.wantCode, rec.Code)

			var got struct {
				Status string           `json:"status"`
				Error  string           `json:"error"`
				Data   models.SlotState `json:"data"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantError, got.Error)
			if tt.wantCode != http.StatusServiceUnavailable {
				assert.Equal(t, tt.state.Credits, got.Data.Credits)
			}
			machine.AssertExpectations(t)
		})
	}
}
