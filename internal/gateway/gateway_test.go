package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

func newTestServer(t *testing.T, status int, response string) (*Client, *[]recordedRequest) {
	t.Helper()
	var calls []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", AnonKey: "anon-key"}), &calls
}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) ObserveGatewayCall(operation, outcome string, _ time.Duration) {
	o.calls = append(o.calls, operation+":"+outcome)
}

func TestSelectBuildsPostgrestQuery(t *testing.T) {
	client, calls := newTestServer(t, http.StatusOK, `[{"id":"a1"}]`)
	client.SetAccessToken("user-token")

	var rows []map[string]any
	err := client.From("appointments").
		Select("*,doctors(users(full_name))").
		Eq("patient_id", "p1").
		Order("appointment_date", false).
		Execute(context.Background(), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodGet, call.Method)
	assert.Equal(t, "/rest/v1/appointments", call.Path)
	assert.Equal(t, "select=%2A%2Cdoctors%28users%28full_name%29%29&patient_id=eq.p1&order=appointment_date.desc", call.Query)
	assert.Equal(t, "anon-key", call.Header.Get("apikey"))
	assert.Equal(t, "Bearer user-token", call.Header.Get("Authorization"))
}

func TestAnonKeyIsDefaultBearer(t *testing.T) {
	client, calls := newTestServer(t, http.StatusOK, `[]`)
	require.NoError(t, client.From("doctors").Execute(context.Background(), nil))
	assert.Equal(t, "Bearer anon-key", (*calls)[0].Header.Get("Authorization"))
}

func TestUpsertSendsConflictTarget(t *testing.T) {
	client, calls := newTestServer(t, http.StatusCreated, `[]`)

	row := map[string]any{"doctor_id": "d1", "day_of_week": 1}
	require.NoError(t, client.From("doctor_availability").Upsert(row, "doctor_id, day_of_week").Execute(context.Background(), nil))

	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "on_conflict=doctor_id%2Cday_of_week", call.Query)
	assert.Equal(t, "resolution=merge-duplicates,return=representation", call.Header.Get("Prefer"))
	assert.JSONEq(t, `{"doctor_id":"d1","day_of_week":1}`, call.Body)
}

func TestUpdateAndDeleteMethods(t *testing.T) {
	client, calls := newTestServer(t, http.StatusOK, `[]`)
	ctx := context.Background()

	require.NoError(t, client.From("appointments").Update(map[string]string{"status": "confirmed"}).Eq("id", "a1").Execute(ctx, nil))
	require.NoError(t, client.From("doctor_availability").Delete().Eq("doctor_id", "d1").Eq("day_of_week", "2").Execute(ctx, nil))

	assert.Equal(t, http.MethodPatch, (*calls)[0].Method)
	assert.Equal(t, "id=eq.a1", (*calls)[0].Query)
	assert.Equal(t, http.MethodDelete, (*calls)[1].Method)
	assert.Equal(t, "doctor_id=eq.d1&day_of_week=eq.2", (*calls)[1].Query)
}

func TestSingleNoRowsIsNotFound(t *testing.T) {
	client, calls := newTestServer(t, http.StatusNotAcceptable,
		`{"code":"PGRST116","details":"The result contains 0 rows","message":"JSON object requested, multiple (or no) rows returned"}`)

	var row map[string]any
	err := client.From("prescriptions").Eq("appointment_id", "a1").Single().Execute(context.Background(), &row)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "application/vnd.pgrst.object+json", (*calls)[0].Header.Get("Accept"))

	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "JSON object requested, multiple (or no) rows returned", gwErr.Message)
}

func TestErrorMessageVariants(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
		code string
	}{
		{"postgrest", `{"code":"23505","message":"duplicate key value violates unique constraint"}`, "duplicate key value violates unique constraint", "23505"},
		{"gotrue legacy", `{"error":"invalid_grant","error_description":"Invalid login credentials"}`, "Invalid login credentials", ""},
		{"gotrue numeric code", `{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`, "User already registered", "user_already_exists"},
		{"plain text", `upstream unavailable`, "upstream unavailable", ""},
		{"empty", ``, "Bad Gateway", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status := http.StatusBadRequest
			if tc.body == "" {
				status = http.StatusBadGateway
			}
			err := decodeError(status, []byte(tc.body))
			var gwErr *Error
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, tc.want, gwErr.Error())
			assert.Equal(t, tc.code, gwErr.Code)
			assert.False(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestSignInWithPassword(t *testing.T) {
	client, calls := newTestServer(t, http.StatusOK, `{
		"access_token":"at","token_type":"bearer","expires_in":3600,"expires_at":1900000000,
		"refresh_token":"rt","user":{"id":"u1","email":"jane@example.com","user_metadata":{"full_name":"Jane"}}}`)
	client.SetAccessToken("stale")

	session, err := client.SignInWithPassword(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "rt", session.RefreshToken)
	assert.Equal(t, time.Unix(1900000000, 0), session.ExpiresAt)
	assert.Equal(t, "u1", session.User.ID)
	assert.Equal(t, "Jane", session.User.FullName)

	call := (*calls)[0]
	assert.Equal(t, "/auth/v1/token", call.Path)
	assert.Equal(t, "grant_type=password", call.Query)
	assert.Equal(t, "Bearer anon-key", call.Header.Get("Authorization"))
	assert.JSONEq(t, `{"email":"jane@example.com","password":"secret"}`, call.Body)
}

func TestSignInFailureKeepsMessage(t *testing.T) {
	client, _ := newTestServer(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)

	_, err := client.SignInWithPassword(context.Background(), "jane@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())
}

func TestSignUpWithoutSession(t *testing.T) {
	client, calls := newTestServer(t, http.StatusOK, `{"id":"u2","email":"doc@example.com","user_metadata":{"full_name":"Dr. Who","role":"doctor"}}`)

	result, err := client.SignUp(context.Background(), "doc@example.com", "secret", map[string]string{"full_name": "Dr. Who", "role": "doctor"})
	require.NoError(t, err)
	assert.Nil(t, result.Session)
	assert.Equal(t, "u2", result.User.ID)
	assert.Equal(t, "Dr. Who", result.User.FullName)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte((*calls)[0].Body), &body))
	assert.Equal(t, map[string]any{"full_name": "Dr. Who", "role": "doctor"}, body["data"])
}

func TestGetUserAndSignOutUseGivenToken(t *testing.T) {
	client, calls := newTestServer(t, http.StatusOK, `{"id":"u1","email":"jane@example.com"}`)
	obs := &recordingObserver{}
	client.observer = obs

	user, err := client.GetUser(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	require.NoError(t, client.SignOut(context.Background(), "token-1"))

	assert.Equal(t, "Bearer token-1", (*calls)[0].Header.Get("Authorization"))
	assert.Equal(t, "/auth/v1/logout", (*calls)[1].Path)
	assert.Equal(t, []string{"auth.get_user:ok", "auth.sign_out:ok"}, obs.calls)
}

func TestInspectAccessToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"email": "jane@example.com",
		"role":  "authenticated",
		"exp":   exp.Unix(),
	})
	signed, err := token.SignedString([]byte("gateway-secret"))
	require.NoError(t, err)

	claims, err := InspectAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.True(t, claims.Expiry().Equal(exp))

	_, err = InspectAccessToken("demo-token")
	assert.Error(t, err)
}
