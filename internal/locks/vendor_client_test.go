package locks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayflow/access-service/internal/constants"
	"github.com/stayflow/access-service/internal/models"
)

func TestVendorClient_CreateAccessCode(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewVendorClient(srv.URL, "test-key")
	err := client.CreateAccessCode(context.Background(), models.LockPlatformTTLock, "ext-123", ProvisionParams{
		Name:      "Provider access (REGULAR)",
		Code:      "123456",
		StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		Weekdays:  []int{1, 2, 3, 4, 5},
		TimeStart: constants.BusinessHoursStartMin,
		TimeEnd:   constants.BusinessHoursEndMin,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/platforms/ttlock/locks/ext-123/access-codes", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "123456", gotBody["code"])
	assert.EqualValues(t, constants.BusinessHoursStartMin, gotBody["time_start"])
	assert.EqualValues(t, constants.BusinessHoursEndMin, gotBody["time_end"])
}

func TestVendorClient_FullDayWindowOmitsTimeBounds(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewVendorClient(srv.URL, "test-key")
	err := client.CreateAccessCode(context.Background(), models.LockPlatformNuki, "ext-456", ProvisionParams{
		Name:      "Tenant access (LONG_TERM)",
		Code:      "654321",
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 0, 90),
		Weekdays:  []int{1, 2, 3, 4, 5, 6, 7},
		TimeStart: constants.FullDayStartMin,
		TimeEnd:   constants.FullDayEndMin,
	})
	require.NoError(t, err)

	_, hasStart := gotBody["time_start"]
	_, hasEnd := gotBody["time_end"]
	assert.False(t, hasStart)
	assert.False(t, hasEnd)
}

func TestVendorClient_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "lock offline", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewVendorClient(srv.URL, "test-key")
	err := client.CreateAccessCode(context.Background(), models.LockPlatformYale, "ext-789", ProvisionParams{
		Name:      "x",
		Code:      "111111",
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 0, 1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "lock offline")
}
