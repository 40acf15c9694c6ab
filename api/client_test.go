package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setram.dev/tram/downloader"
	"setram.dev/tram/model"
)

type MockAPIServer struct {
	mutex     sync.Mutex
	Responses map[string]string
	Statuses  map[string]int
	Requests  []*http.Request
	Bodies    []string
	Server    *httptest.Server
}

func (m *MockAPIServer) handler(w http.ResponseWriter, r *http.Request) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	buf, _ := io.ReadAll(r.Body)
	m.Requests = append(m.Requests, r)
	m.Bodies = append(m.Bodies, string(buf))

	if status, found := m.Statuses[r.URL.Path]; found {
		w.WriteHeader(status)
		return
	}
	if resp, found := m.Responses[r.URL.Path]; found {
		w.Write([]byte(resp))
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func apiFixture() (*MockAPIServer, *Client) {
	m := &MockAPIServer{
		Responses: map[string]string{},
		Statuses:  map[string]int{},
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handler))

	return m, NewClient(m.Server.URL + "/")
}

func TestScheduleFor(t *testing.T) {
	server, client := apiFixture()
	defer server.Server.Close()

	server.Responses["/get_schedule.php"] = `{
  "station": "Maternité",
  "route": "v1",
  "nextTrams": [{"time": "08:05"}, {"time": "08:20"}]
}`

	snapshot, err := client.ScheduleFor(context.Background(), "Maternité", model.DirectionOutbound)
	require.NoError(t, err)

	assert.Equal(t, model.Selection{Station: "Maternité", Direction: model.DirectionOutbound}, snapshot.Selection)
	assert.Equal(t, "v1", snapshot.Route)
	assert.Equal(t, []model.Arrival{{Time: "08:05"}, {Time: "08:20"}}, snapshot.Arrivals)
	assert.False(t, snapshot.FetchedAt.IsZero())

	require.Len(t, server.Requests, 1)
	assert.Equal(t, "Maternité", server.Requests[0].URL.Query().Get("station"))
	assert.Equal(t, "v1", server.Requests[0].URL.Query().Get("route"))
}

func TestScheduleForIsNeverCached(t *testing.T) {
	server, client := apiFixture()
	defer server.Server.Close()

	server.Responses["/get_schedule.php"] = `{"station":"A","route":"v2","nextTrams":[]}`

	for i := 0; i < 3; i++ {
		snapshot, err := client.ScheduleFor(context.Background(), "A", model.DirectionInbound)
		require.NoError(t, err)
		assert.Empty(t, snapshot.Arrivals)
	}
	assert.Len(t, server.Requests, 3)
}

func TestScheduleForFailures(t *testing.T) {
	for _, tc := range []struct {
		name     string
		status   int
		response string
		check    func(t *testing.T, err error)
	}{
		{
			"status",
			http.StatusInternalServerError,
			"",
			func(t *testing.T, err error) {
				var statusErr *downloader.StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, 500, statusErr.Code)
			},
		},
		{
			"empty",
			0,
			"",
			func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrEmptyResponse))
			},
		},
		{
			"null",
			0,
			"null",
			func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrEmptyResponse))
			},
		},
		{
			"not_json",
			0,
			"<html>oops</html>",
			func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrMalformedResponse))
			},
		},
		{
			"missing_next_trams",
			0,
			`{"station":"A","route":"v1"}`,
			func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrMalformedResponse))
			},
		},
		{
			"malformed_time",
			0,
			`{"station":"A","route":"v1","nextTrams":[{"time":"08:05"},{"time":"8h20"}]}`,
			func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrMalformedResponse))
			},
		},
		{
			"wrong_type",
			0,
			`{"station":"A","route":"v1","nextTrams":"08:05"}`,
			func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrMalformedResponse))
			},
		},
		{
			"api_error",
			0,
			`{"error":"Station inconnue"}`,
			func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, "Station inconnue", apiErr.Message)
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			server, client := apiFixture()
			defer server.Server.Close()

			if tc.status != 0 {
				server.Statuses["/get_schedule.php"] = tc.status
			} else {
				server.Responses["/get_schedule.php"] = tc.response
			}

			_, err := client.ScheduleFor(context.Background(), "A", model.DirectionOutbound)
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestTravelTime(t *testing.T) {
	server, client := apiFixture()
	defer server.Server.Close()

	server.Responses["/get_travel_time.php"] = `{
  "travelTime": 12.6,
  "details": [
    {"station": "Jardin Public", "heure": "08:00"},
    {"station": "Quatre Horloges", "heure": "08:13"}
  ]
}`

	tt, err := client.TravelTime(context.Background(), "Jardin Public", "Quatre Horloges")
	require.NoError(t, err)
	assert.Equal(t, 13, tt.Minutes)
	assert.Equal(t, []model.TravelStop{
		{Station: "Jardin Public", Time: "08:00"},
		{Station: "Quatre Horloges", Time: "08:13"},
	}, tt.Details)

	require.Len(t, server.Requests, 1)
	assert.Equal(t, "Jardin Public", server.Requests[0].URL.Query().Get("departure"))
	assert.Equal(t, "Quatre Horloges", server.Requests[0].URL.Query().Get("arrival"))

	// Second lookup is served from cache
	_, err = client.TravelTime(context.Background(), "Jardin Public", "Quatre Horloges")
	require.NoError(t, err)
	assert.Len(t, server.Requests, 1)
}

func TestTravelTimeErrors(t *testing.T) {
	server, client := apiFixture()
	defer server.Server.Close()

	server.Responses["/get_travel_time.php"] = `{"error": "Aucun trajet"}`
	_, err := client.TravelTime(context.Background(), "A", "B")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Aucun trajet", apiErr.Error())

	server.Responses["/get_travel_time.php"] = `{"details": []}`
	_, err = client.TravelTime(context.Background(), "A", "C")
	assert.True(t, errors.Is(err, ErrMalformedResponse))

	server.Responses["/get_travel_time.php"] = `{"travelTime": -3}`
	_, err = client.TravelTime(context.Background(), "A", "D")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestApplyDelay(t *testing.T) {
	server, client := apiFixture()
	defer server.Server.Close()

	server.Responses["/apply_delay.php"] = `{
  "success": true,
  "message": "Retard appliqué",
  "data": [{"time": "08:10", "remaining_time": 12}, {"time": "08:25", "remaining_time": 27}]
}`

	result, err := client.ApplyDelay(context.Background(), "La Radio", model.DirectionInbound, 5)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Retard appliqué", result.Message)
	assert.Equal(t, []model.DelayArrival{
		{Ordinal: 1, Time: "08:10", Remaining: 12},
		{Ordinal: 2, Time: "08:25", Remaining: 27},
	}, result.Arrivals)

	require.Len(t, server.Requests, 1)
	assert.Equal(t, "POST", server.Requests[0].Method)
	assert.Equal(t, "application/json", server.Requests[0].Header.Get("Content-Type"))

	payload := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(server.Bodies[0]), &payload))
	assert.Equal(t, map[string]interface{}{
		"station": "La Radio",
		"route":   "v2",
		"delay":   float64(5),
	}, payload)
}

func TestApplyDelayRejected(t *testing.T) {
	server, client := apiFixture()
	defer server.Server.Close()

	server.Responses["/apply_delay.php"] = `{"success": false, "message": "Station fermée", "data": [{"time": "08:10", "remaining_time": 12}]}`

	result, err := client.ApplyDelay(context.Background(), "La Radio", model.DirectionOutbound, 3)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Station fermée", result.Message)
	assert.Empty(t, result.Arrivals)
}

func TestApplyDelayMalformed(t *testing.T) {
	server, client := apiFixture()
	defer server.Server.Close()

	for _, resp := range []string{
		`{"message": "no success flag"}`,
		`{"success": true, "data": [{"time": "08:10"}]}`,
		`{"success": true, "data": [{"time": "xx", "remaining_time": 1}]}`,
	} {
		server.Responses["/apply_delay.php"] = resp
		_, err := client.ApplyDelay(context.Background(), "La Radio", model.DirectionOutbound, 3)
		assert.True(t, errors.Is(err, ErrMalformedResponse), resp)
	}
}

func TestCurrentStatus(t *testing.T) {
	server, client := apiFixture()
	defer server.Server.Close()

	server.Responses["/getStatut.php"] = `{"statut": "Trafic normal", "image_path": "/img/ok.png"}`

	status, err := client.CurrentStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.Status{Statut: "Trafic normal", ImagePath: "/img/ok.png"}, status)

	server.Responses["/getStatut.php"] = `{"image_path": "/img/ok.png"}`
	_, err = client.CurrentStatus(context.Background())
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestSendContact(t *testing.T) {
	server, client := apiFixture()
	defer server.Server.Close()

	server.Responses["/send_contact.php"] = "Message envoyé avec succès"

	ack, err := client.SendContact(context.Background(), "a@b.dz", "Bonjour")
	require.NoError(t, err)
	assert.Equal(t, "Message envoyé avec succès", ack)

	payload := map[string]string{}
	require.NoError(t, json.Unmarshal([]byte(server.Bodies[0]), &payload))
	assert.Equal(t, map[string]string{"email": "a@b.dz", "message": "Bonjour"}, payload)
}

func TestCustomPaths(t *testing.T) {
	server, client := apiFixture()
	defer server.Server.Close()

	client.Paths.Status = "/v2/status"
	server.Responses["/v2/status"] = `{"statut": "ok"}`

	status, err := client.CurrentStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Statut)
}
