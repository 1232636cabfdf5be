package notification

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"canteenadmin/internal/api"
)

type stubInbox struct {
	listAccountID string
	listShared    bool

	markIDs       []string
	markAccountID string
	markShared    bool

	markAllAccountID string
	markAllShared    bool

	deleteID        string
	deleteAccountID string
	deleteShared    bool
	deleteErr       error

	countAccountID string
	countShared    bool
}

func (s *stubInbox) ListInbox(ctx context.Context, accountID string, includeShared bool, limit int) ([]Notification, error) {
	s.listAccountID = accountID
	s.listShared = includeShared
	return nil, nil
}

func (s *stubInbox) MarkRead(ctx context.Context, ids []string, accountID string, includeShared bool) (int64, error) {
	s.markIDs = ids
	s.markAccountID = accountID
	s.markShared = includeShared
	return int64(len(ids)), nil
}

func (s *stubInbox) MarkAllRead(ctx context.Context, accountID string, includeShared bool) (int64, error) {
	s.markAllAccountID = accountID
	s.markAllShared = includeShared
	return 0, nil
}

func (s *stubInbox) Delete(ctx context.Context, id, accountID string, includeShared bool) error {
	s.deleteID = id
	s.deleteAccountID = accountID
	s.deleteShared = includeShared
	return s.deleteErr
}

func (s *stubInbox) CountUnread(ctx context.Context, accountID string, includeShared bool) (int, error) {
	s.countAccountID = accountID
	s.countShared = includeShared
	return 0, nil
}

func requestAs(method, target string, body []byte, id *api.Identity) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return r.WithContext(api.WithIdentity(r.Context(), id))
}

func student(accountID string) *api.Identity {
	return &api.Identity{AccountID: accountID, Role: "standard"}
}

func admin(accountID string) *api.Identity {
	return &api.Identity{AccountID: accountID, Role: "admin"}
}

func TestListScopesToOwnAccount(t *testing.T) {
	stub := &stubInbox{}
	h := Handlers{Repo: stub, Logger: zap.NewNop()}

	w := httptest.NewRecorder()
	h.List(w, requestAs(http.MethodGet, "/v1/notifications", nil, student("acc-1")))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if stub.listAccountID != "acc-1" {
		t.Fatalf("list account = %q, want acc-1", stub.listAccountID)
	}
	if stub.listShared {
		t.Fatalf("standard role must not see shared notifications")
	}
}

func TestListIncludesSharedForAdmin(t *testing.T) {
	stub := &stubInbox{}
	h := Handlers{Repo: stub, Logger: zap.NewNop()}

	h.List(httptest.NewRecorder(), requestAs(http.MethodGet, "/v1/notifications", nil, admin("adm-1")))

	if !stub.listShared {
		t.Fatalf("admin role must see shared notifications")
	}
}

func TestMarkReadBulkScopesToCaller(t *testing.T) {
	stub := &stubInbox{}
	h := Handlers{Repo: stub, Logger: zap.NewNop()}

	body := []byte(`{"ids":["n-1","n-2"]}`)
	w := httptest.NewRecorder()
	h.MarkReadBulk(w, requestAs(http.MethodPost, "/v1/notifications/read", body, student("acc-1")))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if stub.markAccountID != "acc-1" {
		t.Fatalf("mark-read not scoped to caller: account = %q", stub.markAccountID)
	}
	if stub.markShared {
		t.Fatalf("standard role must not touch shared notifications")
	}
	if len(stub.markIDs) != 2 {
		t.Fatalf("ids = %v", stub.markIDs)
	}
}

func TestMarkAllReadScopesToCaller(t *testing.T) {
	stub := &stubInbox{}
	h := Handlers{Repo: stub, Logger: zap.NewNop()}

	h.MarkReadBulk(httptest.NewRecorder(),
		requestAs(http.MethodPost, "/v1/notifications/read", []byte(`{"all":true}`), admin("adm-1")))

	if stub.markAllAccountID != "adm-1" {
		t.Fatalf("mark-all-read not scoped to caller: account = %q", stub.markAllAccountID)
	}
	if !stub.markAllShared {
		t.Fatalf("admin mark-all-read must include shared notifications")
	}
}

func TestDeleteScopesToCaller(t *testing.T) {
	stub := &stubInbox{}
	h := Handlers{Repo: stub, Logger: zap.NewNop()}

	h.Delete(httptest.NewRecorder(),
		requestAs(http.MethodDelete, "/v1/notifications/n-9", nil, student("acc-1")))

	if stub.deleteAccountID != "acc-1" {
		t.Fatalf("delete not scoped to caller: account = %q", stub.deleteAccountID)
	}
	if stub.deleteShared {
		t.Fatalf("standard role must not delete shared notifications")
	}
}

func TestDeleteForeignRowIsNotFound(t *testing.T) {
	// The ownership scope makes someone else's row indistinguishable from a
	// missing one.
	stub := &stubInbox{deleteErr: pgx.ErrNoRows}
	h := Handlers{Repo: stub, Logger: zap.NewNop()}

	w := httptest.NewRecorder()
	h.Delete(w, requestAs(http.MethodDelete, "/v1/notifications/n-9", nil, student("acc-2")))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
