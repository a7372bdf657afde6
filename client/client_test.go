package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oaiiae/addressbook/addressbook"
)

func anna() addressbook.Record {
	return addressbook.Record{
		Firstname: "Anna",
		Name:      "Muster",
		Street:    "Hauptstr",
		StreetNr:  "1",
		Plz:       "1000",
		City:      "Wien",
	}
}

// serve starts a test server answering every request with status and body,
// and counts the requests it received.
func serve(t *testing.T, status int, body string, check func(*http.Request)) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if check != nil {
			check(r)
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, nil), &calls
}

func TestList(t *testing.T) {
	c, _ := serve(t, http.StatusOK, `{"Anna Muster":{"firstname":"Anna","name":"Muster","street":"Hauptstr","street_nr":"1","plz":"1000","city":"Wien"}}`,
		func(r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/api/addresses" {
				t.Errorf("request = %s %s, want GET /api/addresses", r.Method, r.URL.Path)
			}
			if r.Header.Get("X-Request-Id") == "" {
				t.Error("request has no X-Request-Id header")
			}
		})

	set, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff(addressbook.RecordSet{"Anna Muster": anna()}, set); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestGet(t *testing.T) {
	c, _ := serve(t, http.StatusOK, `{"firstname":"Anna","name":"Muster","street":"Hauptstr","street_nr":"1","plz":"1000","city":"Wien","phone":""}`,
		func(r *http.Request) {
			if r.Method != http.MethodGet || r.URL.EscapedPath() != "/api/addresses/Anna%20Muster" {
				t.Errorf("request = %s %s, want GET /api/addresses/Anna%%20Muster", r.Method, r.URL.EscapedPath())
			}
		})

	r, err := c.Get(context.Background(), "Anna Muster")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(anna(), r); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetNotFound(t *testing.T) {
	c, _ := serve(t, http.StatusNotFound, `{"title":"Not Found","status":404}`, nil)
	if _, err := c.Get(context.Background(), "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestListEmptyBody(t *testing.T) {
	c, _ := serve(t, http.StatusOK, "", nil)
	set, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if set == nil || len(set) != 0 {
		t.Errorf("List() = %v, want empty set", set)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		call   func(*Client) error
		check  func(error) bool
	}{
		{
			"list not found", http.StatusNotFound, "Not Found",
			func(c *Client) error { _, err := c.List(context.Background()); return err },
			func(err error) bool { return errors.Is(err, ErrNotFound) },
		},
		{
			"list invalid json", http.StatusOK, "<html>",
			func(c *Client) error { _, err := c.List(context.Background()); return err },
			func(err error) bool { var e *ProtocolError; return errors.As(err, &e) && e.Status == http.StatusOK },
		},
		{
			"list server error", http.StatusInternalServerError, "",
			func(c *Client) error { _, err := c.List(context.Background()); return err },
			func(err error) bool { var e *APIError; return errors.As(err, &e) && e.Status == http.StatusInternalServerError },
		},
		{
			"create conflict", http.StatusConflict, `{"error":"Conflict: entry exists"}`,
			func(c *Client) error { _, err := c.Create(context.Background(), anna()); return err },
			func(err error) bool { return errors.Is(err, ErrConflict) },
		},
		{
			"create bad request", http.StatusBadRequest, `{"error":"Bad Request"}`,
			func(c *Client) error { _, err := c.Create(context.Background(), anna()); return err },
			func(err error) bool { var e *APIError; return errors.As(err, &e) && e.Status == http.StatusBadRequest },
		},
		{
			"update conflict is an api error", http.StatusConflict, "",
			func(c *Client) error { return c.Update(context.Background(), "Anna Muster", anna()) },
			func(err error) bool { var e *APIError; return errors.As(err, &e) && e.Status == http.StatusConflict },
		},
		{
			"update not found", http.StatusNotFound, "",
			func(c *Client) error { return c.Update(context.Background(), "Anna Muster", anna()) },
			func(err error) bool { return errors.Is(err, ErrNotFound) },
		},
		{
			"delete server error", http.StatusBadGateway, "",
			func(c *Client) error { return c.Delete(context.Background(), "Anna Muster") },
			func(err error) bool { var e *APIError; return errors.As(err, &e) && e.Status == http.StatusBadGateway },
		},
		{
			"delete invalid json", http.StatusOK, "deleted",
			func(c *Client) error { return c.Delete(context.Background(), "Anna Muster") },
			func(err error) bool { var e *ProtocolError; return errors.As(err, &e) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := serve(t, tt.status, tt.body, nil)
			err := tt.call(c)
			if !tt.check(err) {
				t.Errorf("got error %v (%T)", err, err)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).List(context.Background())
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("List() error = %v, want *TransportError", err)
	}
	if terr.Op != "list" {
		t.Errorf("Op = %q, want %q", terr.Op, "list")
	}
}

func TestValidationSkipsNetwork(t *testing.T) {
	c, calls := serve(t, http.StatusOK, "", nil)

	noCity := anna()
	noCity.City = " "

	var verr *ValidationError
	if _, err := c.Create(context.Background(), noCity); !errors.As(err, &verr) {
		t.Errorf("Create() error = %v, want *ValidationError", err)
	}
	if err := c.Update(context.Background(), "Anna Muster", noCity); !errors.As(err, &verr) {
		t.Errorf("Update() error = %v, want *ValidationError", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("made %d requests, want none", n)
	}
}

func TestCreate(t *testing.T) {
	c, _ := serve(t, http.StatusCreated, `{"message":"created","key":"Anna Muster"}`, func(r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var got addressbook.Record
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if got != anna() {
			t.Errorf("body = %+v, want trimmed %+v", got, anna())
		}
	})

	padded := anna()
	padded.Firstname = "  Anna "
	key, err := c.Create(context.Background(), padded)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if key != "Anna Muster" {
		t.Errorf("Create() key = %q, want %q", key, "Anna Muster")
	}
}

func TestCreateWithoutKey(t *testing.T) {
	c, _ := serve(t, http.StatusOK, "", nil)
	key, err := c.Create(context.Background(), anna())
	if err != nil || key != "" {
		t.Errorf("Create() = %q, %v, want empty key and no error", key, err)
	}
}

func TestKeyIsEscaped(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			c, _ := serve(t, http.StatusOK, `{"message":"ok"}`, func(r *http.Request) {
				if r.Method != method {
					t.Errorf("Method = %s, want %s", r.Method, method)
				}
				if p := r.URL.EscapedPath(); p != "/api/addresses/Anna%20Muster" {
					t.Errorf("path = %q", p)
				}
			})
			var err error
			if method == http.MethodPut {
				err = c.Update(context.Background(), "Anna Muster", anna())
			} else {
				err = c.Delete(context.Background(), "Anna Muster")
			}
			if err != nil {
				t.Errorf("error = %v", err)
			}
		})
	}
}
