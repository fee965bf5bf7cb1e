package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smileynet/contacts/internal/contacts"
	"github.com/smileynet/contacts/internal/store"
	"github.com/smileynet/contacts/internal/store/storetest"
)

func seed() []contacts.Contact {
	return []contacts.Contact{
		{ID: contacts.NumericID(7), Name: "Ann", PhoneNumber: "1", Email: "ann@example.com", CreatedAt: "2024-01-01T00:00:00.000Z"},
		{ID: contacts.StringID("a b"), Name: "Bob", PhoneNumber: "2", Email: "bob@example.com", CreatedAt: "2024-01-02T00:00:00.000Z"},
	}
}

func newClient(t *testing.T, srv *storetest.Server, opts ...store.Option) *store.Client {
	t.Helper()
	c, err := store.New(srv.URL(), opts...)
	require.NoError(t, err)
	return c
}

func TestNew_ValidatesBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{name: "adds trailing slash", base: "http://localhost:3001", want: "http://localhost:3001/"},
		{name: "keeps path", base: "https://api.example.com/v1/contacts", want: "https://api.example.com/v1/contacts/"},
		{name: "unsupported scheme", base: "ftp://example.com/", wantErr: true},
		{name: "relative", base: "/contacts", wantErr: true},
		{name: "unparseable", base: "http://[::1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := store.New(tt.base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.BaseURL())
		})
	}
}

func TestClient_ListKeepsServerOrder(t *testing.T) {
	srv := storetest.NewServer(t, seed()...)
	c := newClient(t, srv)

	list, err := c.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, seed(), list)
	req, ok := srv.Last(http.MethodGet)
	require.True(t, ok)
	assert.Equal(t, "/", req.Path)
}

func TestClient_ListEmpty(t *testing.T) {
	srv := storetest.NewServer(t)
	list, err := newClient(t, srv).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClient_CreateOmitsID(t *testing.T) {
	srv := storetest.NewServer(t)
	c := newClient(t, srv)

	err := c.Create(context.Background(), contacts.Contact{
		ID: contacts.NumericID(99), Name: "Cy", PhoneNumber: "3", Email: "cy@example.com", CreatedAt: "2024-02-02T00:00:00.000Z",
	})
	require.NoError(t, err)

	req, ok := srv.Last(http.MethodPost)
	require.True(t, ok)
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.NotContains(t, body, "id")
	assert.NotContains(t, body, "lastUpdated")
	assert.Equal(t, "Cy", body["name"])
	assert.Equal(t, "3", body["phone_number"])

	stored := srv.Contacts()
	require.Len(t, stored, 1)
	assert.False(t, stored[0].ID.IsZero(), "the store assigns the id")
}

func TestClient_UpdateAddressesRecord(t *testing.T) {
	srv := storetest.NewServer(t, seed()...)
	c := newClient(t, srv)

	updated := seed()[0]
	updated.Name = "Annie"
	updated.LastUpdated = "2024-05-06T07:08:09.000Z"
	require.NoError(t, c.Update(context.Background(), updated))

	req, ok := srv.Last(http.MethodPut)
	require.True(t, ok)
	assert.Equal(t, "/7", req.Path)
	assert.Equal(t, "Annie", srv.Contacts()[0].Name)
}

func TestClient_UpdateKeepsUnknownFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"id":7,"name":"Ann","phone_number":"1","email":"ann@example.com","createdAt":"2024-01-01T00:00:00.000Z","company":"Acme"}]`))
		}
	}))
	t.Cleanup(ts.Close)
	c, err := store.New(ts.URL)
	require.NoError(t, err)
	list, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	out := storetest.NewServer(t, list...)
	oc := newClient(t, out)
	edited := list[0]
	edited.Name = "Annie"
	require.NoError(t, oc.Update(context.Background(), edited))

	req, ok := out.Last(http.MethodPut)
	require.True(t, ok)
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "Acme", body["company"])
	assert.Equal(t, "Annie", body["name"])
}

func TestClient_EscapesIDs(t *testing.T) {
	srv := storetest.NewServer(t, seed()...)
	c := newClient(t, srv)

	require.NoError(t, c.Delete(context.Background(), contacts.StringID("a b")))

	assert.Len(t, srv.Contacts(), 1)
}

func TestClient_DottedIDsStayInCollection(t *testing.T) {
	srv := storetest.NewServer(t,
		contacts.Contact{ID: contacts.StringID("1.5"), Name: "Dot", PhoneNumber: "4", Email: "dot@example.com"},
		contacts.Contact{ID: contacts.StringID("..x"), Name: "Dots", PhoneNumber: "5", Email: "dots@example.com"},
	)
	c := newClient(t, srv)

	require.NoError(t, c.Delete(context.Background(), contacts.StringID("1.5")))
	req, ok := srv.Last(http.MethodDelete)
	require.True(t, ok)
	assert.Equal(t, "/1.5", req.Path)

	require.NoError(t, c.Delete(context.Background(), contacts.StringID("..x")))
	req, ok = srv.Last(http.MethodDelete)
	require.True(t, ok)
	assert.Equal(t, "/..x", req.Path)
	assert.Empty(t, srv.Contacts())
}

func TestClient_RejectsDotSegmentIDs(t *testing.T) {
	srv := storetest.NewServer(t, seed()...)
	c := newClient(t, srv)

	for _, raw := range []string{".", ".."} {
		t.Run(raw, func(t *testing.T) {
			err := c.Delete(context.Background(), contacts.StringID(raw))
			assert.ErrorIs(t, err, store.ErrUnaddressable)

			err = c.Update(context.Background(), contacts.Contact{ID: contacts.StringID(raw), Name: "x"})
			assert.ErrorIs(t, err, store.ErrUnaddressable)
		})
	}
	assert.Empty(t, srv.Requests())
	assert.Len(t, srv.Contacts(), 2)
}

func TestClient_ItemURLKeepsBasePath(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
	}))
	t.Cleanup(ts.Close)

	c, err := store.New(ts.URL + "/v1/contacts")
	require.NoError(t, err)

	require.NoError(t, c.Delete(context.Background(), contacts.StringID("a/b")))
	require.NoError(t, c.Delete(context.Background(), contacts.NumericID(3)))

	assert.Equal(t, []string{"/v1/contacts/a%2Fb", "/v1/contacts/3"}, paths)
}

func TestClient_RejectsMissingID(t *testing.T) {
	srv := storetest.NewServer(t)
	c := newClient(t, srv)

	assert.Error(t, c.Update(context.Background(), contacts.Contact{Name: "x"}))
	assert.Error(t, c.Delete(context.Background(), contacts.ID{}))
	assert.Empty(t, srv.Requests())
}

func TestClient_StatusError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	srv := storetest.NewServer(t, seed()...)
	srv.FailNext(http.MethodDelete, http.StatusNotFound)
	c := newClient(t, srv, store.WithLogger(zap.New(core).Sugar()))

	err := c.Delete(context.Background(), contacts.NumericID(7))

	var se *store.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.MethodDelete, se.Method)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, se.Error(), "404")
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
	assert.Len(t, srv.Contacts(), 2)
}

func TestClient_MalformedList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	t.Cleanup(ts.Close)

	c, err := store.New(ts.URL)
	require.NoError(t, err)

	_, err = c.List(context.Background())
	assert.ErrorIs(t, err, store.ErrDecode)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	c, err := store.New(ts.URL, store.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = c.List(context.Background())
	assert.Error(t, err)
}

func TestClient_TimeoutSurvivesHTTPClientOption(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	hc := &http.Client{}
	c, err := store.New(ts.URL,
		store.WithTimeout(50*time.Millisecond),
		store.WithHTTPClient(hc),
	)
	require.NoError(t, err)

	start := time.Now()
	_, err = c.List(context.Background())

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Zero(t, hc.Timeout, "the caller's client must not be modified")
}

func TestClient_HonoursContext(t *testing.T) {
	srv := storetest.NewServer(t, seed()...)
	c := newClient(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
