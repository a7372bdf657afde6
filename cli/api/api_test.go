package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oaiiae/addressbook/addressbook"
	"github.com/oaiiae/addressbook/client"
	"github.com/oaiiae/addressbook/datastores"
	"github.com/oaiiae/addressbook/reconciler"
)

func newTestServer(t *testing.T, store datastores.AddressesStore) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	h := NewRouter(&RouterOptions{EndpointsPrefix: "/api"}, "Address book", "test", "", "", store, logger)
	srv := httptest.NewServer(NewServer(&ServerOptions{}, h, logger).Handler)
	t.Cleanup(srv.Close)
	return srv
}

type patchView struct{ renders, patches int }

func (v *patchView) Render(*reconciler.ViewModel)                    { v.renders++ }
func (v *patchView) Patch(*reconciler.ViewModel, reconciler.Change) { v.patches++ }

type alerts []error

func (a *alerts) Status(string)             {}
func (a *alerts) Alert(_ string, err error) { *a = append(*a, err) }

func TestCreateThenDelete(t *testing.T) {
	srv := newTestServer(t, datastores.NewAddressesInmem())
	view, notes := &patchView{}, &alerts{}
	rc := reconciler.New(client.New(srv.URL, nil), view, notes, nil, nil)
	ctx := context.Background()

	if err := rc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	anna := addressbook.Record{Firstname: "Anna", Name: "Muster", Street: "Hauptstr", StreetNr: "1", Plz: "1000", City: "Wien"}
	if err := rc.Create(ctx, anna); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	records := rc.Records()
	if len(records) != 1 || records["Anna Muster"] != anna {
		t.Fatalf("Records() = %v, want Anna Muster only", records)
	}

	if err := rc.Create(ctx, anna); !errors.Is(err, client.ErrConflict) {
		t.Errorf("second Create() error = %v, want ErrConflict", err)
	}
	if len(*notes) != 1 {
		t.Errorf("alerts = %v, want the conflict only", *notes)
	}

	if err := rc.Delete(ctx, "Anna Muster"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(rc.Records()) != 0 {
		t.Errorf("Records() = %v, want empty", rc.Records())
	}
	if view.renders != 1 || view.patches != 2 {
		t.Errorf("renders = %d, patches = %d, want 1 and 2", view.renders, view.patches)
	}

	if err := client.New(srv.URL, nil).Delete(ctx, "Anna Muster"); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("Delete() of removed key error = %v, want ErrNotFound", err)
	}
}

func TestImportAgainstServer(t *testing.T) {
	store, _ := NewStore(&StoreOptions{DataFile: filepath.Join(t.TempDir(), "addresses.json")}, slog.New(slog.DiscardHandler))
	srv := newTestServer(t, store)
	rc := reconciler.New(client.New(srv.URL, nil), &patchView{}, &alerts{}, nil, nil)

	rows := []map[string]any{
		{"firstname": "Jonas", "name": "Mahlburg", "street": "Meudonstr", "street_nr": "14", "plz": "29221", "city": "Celle"},
		{"firstname": "Anna", "name": "Muster", "street": "Hauptstr", "street_nr": 1, "plz": 1000, "city": "Wien"},
		{"firstname": "HM", "name": "Software", "street": "Rampenweg", "street_nr": "1b", "city": "Adelheidsdorf"},
	}
	outcome, err := rc.Import(context.Background(), rows)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if want := (addressbook.ImportOutcome{Success: 2, Errors: 1}); outcome != want {
		t.Errorf("Import() = %+v, want %+v", outcome, want)
	}
	if n := len(rc.Records()); n != 3 {
		t.Errorf("len(Records()) = %d, want 3 (two seeds and Anna)", n)
	}
}

func TestMetricsAndRequestID(t *testing.T) {
	srv := newTestServer(t, datastores.NewAddressesInmem(Seed()...))

	resp, err := http.Get(srv.URL + "/api/addresses")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("response has no X-Request-Id")
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("response has no CORS header")
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"build_info{", `http_requests_total{method="GET",path="/api/addresses",status="200"} 1`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("metrics miss %q", want)
		}
	}
}
