package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"synergism-calc/adapters/storage"
	"synergism-calc/adapters/storage/mocks"
	"synergism-calc/core/report"
	"synergism-calc/internal/clock"
	"synergism-calc/internal/config"
	"synergism-calc/internal/errors"
)

func mockServer(t *testing.T) (*Server, *mocks.MockStore) {
	t.Helper()
	store := mocks.NewMockStore(gomock.NewController(t))
	return NewServer("9.9.9", config.Default().Server, WithClock(clock.Fixed{At: now}), WithStore(store)), store
}

func TestAnalyzeRecordFailure(t *testing.T) {
	s, store := mockServer(t)
	store.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		Return(errors.Internal("cannot store record", fmt.Errorf("disk full")))

	rec, body := post(t, s, `{"save": `+saveDoc(t)+`, "record": true}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", body["error"].(map[string]interface{})["code"])
}

func TestAnalyzeRecordPassesProfile(t *testing.T) {
	s, store := mockServer(t)
	store.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *storage.Record) error {
			assert.Equal(t, "alt", r.Profile)
			require.NotNil(t, r.Report)
			r.ID = r.Report.ID.String()
			return nil
		})

	rec, body := post(t, s, `{"save": `+saveDoc(t)+`, "record": true, "profile": "alt"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "alt", body["profile"])
}

func TestListReportsPassesFilter(t *testing.T) {
	s, store := mockServer(t)
	store.EXPECT().
		List(gomock.Any(), &storage.ListFilter{Profile: "main", Limit: 5, Offset: 10}).
		Return(nil, nil)

	rec := get(t, s, "/reports?profile=main&limit=5&offset=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reports": []}`, rec.Body.String())
}

func TestReportStoreErrors(t *testing.T) {
	s, store := mockServer(t)
	id := uuid.NewString()
	store.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.Internal("cannot read storage", nil))
	store.EXPECT().Get(gomock.Any(), "nope").Return(nil, errors.Input(`invalid report id "nope"`))
	store.EXPECT().Compare(gomock.Any(), id, id).Return(&report.Comparison{Changes: []report.Change{}}, nil)
	store.EXPECT().Delete(gomock.Any(), id).Return(errors.NotFound("report", id))

	assert.Equal(t, http.StatusInternalServerError, get(t, s, "/reports").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/reports/nope").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/reports/"+id+"/compare/"+id).Code)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/reports/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
