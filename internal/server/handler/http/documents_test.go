package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ogrebenko/mailkeep/internal/docstore"
)

func newTestServer(t *testing.T) (*httptest.Server, *docstore.Memory) {
	t.Helper()
	store := docstore.NewMemory()
	handler := &DocumentsHandler{Store: store}
	srv := httptest.NewServer(NewRouter(handler, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, store
}

func TestPutAndGetDocument(t *testing.T) {
	srv, _ := newTestServer(t)

	body := []byte(`{"id":"1","emailAddress":"a@b.c","tags":["Netflix","Work"]}`)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/collections/account-records/admin_1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/collections/account-records/admin_1")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	var fields map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if fields["emailAddress"] != "a@b.c" {
		t.Errorf("unexpected fields: %+v", fields)
	}
}

func TestPutRejectsWrongContentType(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/collections/users/admin", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestGetMissingDocument(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/collections/users/nobody")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListEmptyCollection(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/collections/account-records")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	var docs []docstore.Keyed
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("expected empty array, got %v", docs)
	}
}

// TestClientAgainstServer drives the docstore HTTP client against the
// real router, covering both sides of the wire contract.
func TestClientAgainstServer(t *testing.T) {
	srv, _ := newTestServer(t)
	client := docstore.NewClient(srv.Client(), srv.URL)
	ctx := context.Background()

	fields := docstore.Fields{"id": "1", "ownerId": "admin", "tags": []string{"Netflix", "Work"}}
	if err := client.PutKeyed(ctx, "account-records", "admin_1", fields); err != nil {
		t.Fatalf("PutKeyed failed: %v", err)
	}

	got, err := client.GetKeyed(ctx, "account-records", "admin_1")
	if err != nil {
		t.Fatalf("GetKeyed failed: %v", err)
	}
	if got["ownerId"] != "admin" {
		t.Errorf("unexpected fields: %+v", got)
	}

	docs, err := client.ListAll(ctx, "account-records")
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Key != "admin_1" {
		t.Errorf("unexpected listing: %+v", docs)
	}

	if err := client.DeleteKeyed(ctx, "account-records", "admin_1"); err != nil {
		t.Fatalf("DeleteKeyed failed: %v", err)
	}
	if _, err := client.GetKeyed(ctx, "account-records", "admin_1"); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	// deleting again still succeeds
	if err := client.DeleteKeyed(ctx, "account-records", "admin_1"); err != nil {
		t.Errorf("second DeleteKeyed failed: %v", err)
	}
}
