package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"repdesk/internal/model"
)

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decode credentials: %v", err)
		}
		if creds["phone"] != "0912" || creds["password"] != "pw" {
			t.Errorf("unexpected credentials: %v", creds)
		}
		json.NewEncoder(w).Encode(LoginResult{Token: "tok", Role: "admin"})
	}))
	defer srv.Close()

	got, err := New(srv.URL, "").Login(context.Background(), "0912", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.Token != "tok" || got.Role != "admin" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestLogin_BadCredentialsVsTransient(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := New(srv.URL, "")

	if _, err := c.Login(context.Background(), "x", "y"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("401 must map to ErrInvalidCredentials; got %v", err)
	}

	status = http.StatusBadGateway
	_, err := c.Login(context.Background(), "x", "y")
	var se *ServerError
	if !errors.As(err, &se) || se.Status != http.StatusBadGateway {
		t.Fatalf("non-401 failure must be a ServerError; got %v", err)
	}
}

func TestListForms_NormalizesRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("missing bearer token; got %q", got)
		}
		// One record without gifts, one with a numeric id.
		w.Write([]byte(`[
			{"id":"a1","fullName":"Ali","isConfirmed":true},
			{"id":42,"fullName":"Sara","isConfirmed":false,"gifts":{"giftA":"2"}}
		]`))
	}))
	defer srv.Close()

	forms, err := New(srv.URL, "tok").ListForms(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("expected 2 records; got %d", len(forms))
	}
	if forms[0].Gifts == nil {
		t.Fatalf("gifts must default to an empty map")
	}
	if forms[0].Status != model.StatusConfirm || forms[1].Status != model.StatusPending {
		t.Fatalf("status not derived: %q / %q", forms[0].Status, forms[1].Status)
	}
	if forms[1].ID != "42" {
		t.Fatalf("numeric id must decode to %q; got %q", "42", forms[1].ID)
	}
}

func TestListForms_401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "stale").ListForms(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized; got %v", err)
	}
}

func TestCreateForm_MultipartPayload(t *testing.T) {
	img := filepath.Join(t.TempDir(), "pic.png")
	if err := os.WriteFile(img, []byte("png-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("phone"); got != "09120000000" {
			t.Errorf("phone digits not normalized: %q", got)
		}
		if got := r.FormValue("province"); got != "Iraq" {
			t.Errorf("province: %q", got)
		}
		var gifts map[string]string
		if err := json.Unmarshal([]byte(r.FormValue("gifts")), &gifts); err != nil {
			t.Errorf("gifts not JSON: %v", err)
		} else if gifts["giftA"] != "2" {
			t.Errorf("gift digits not normalized: %v", gifts)
		}
		var needs []string
		if err := json.Unmarshal([]byte(r.FormValue("needs")), &needs); err != nil {
			t.Errorf("needs not JSON: %v", err)
		}
		if _, hdr, err := r.FormFile("image"); err != nil {
			t.Errorf("image part missing: %v", err)
		} else if hdr.Filename != "pic.png" {
			t.Errorf("image filename: %q", hdr.Filename)
		}
		if r.FormValue("isConfirmed") != "" {
			t.Errorf("create must not carry isConfirmed")
		}
		w.Write([]byte(`{"id":"new-1","isConfirmed":false}`))
	}))
	defer srv.Close()

	d := model.NewDraft()
	d.Gender = model.GenderMale
	d.FullName = "Ali"
	d.Phone = "۰۹۱۲0000000"
	d.SetActivity(model.ActivityExport)
	d.Province = "Iraq"
	d.Gifts["giftA"] = "۲"
	d.ImagePath = img
	d.ImageMIME = "image/png"
	d.ImageSize = 9

	got, err := New(srv.URL, "tok").CreateForm(context.Background(), d)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID != "new-1" || got.Status != model.StatusPending {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestUpdateForm_ForcesUnconfirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/forms/a1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("isConfirmed"); got != "false" {
			t.Errorf("edit must force isConfirmed=false; got %q", got)
		}
		w.Write([]byte(`{"id":"a1","isConfirmed":false}`))
	}))
	defer srv.Close()

	d := model.NewDraft()
	d.ID = "a1"
	d.Gender = model.GenderFemale
	d.FullName = "Sara"
	d.SetActivity(model.ActivityVIP)

	if _, err := New(srv.URL, "tok").UpdateForm(context.Background(), d.ID, d); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestConfirmAndDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/forms/a1":
			var body map[string]bool
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body["isConfirmed"] {
				t.Errorf("confirm body wrong: %v err=%v", body, err)
			}
			w.Write([]byte(`{"id":"a1","isConfirmed":true}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/forms/a1":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")

	got, err := c.ConfirmForm(context.Background(), "a1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got.Status != model.StatusConfirm {
		t.Fatalf("expected derived confirm status; got %q", got.Status)
	}

	if err := c.DeleteForm(context.Background(), "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestServerError_UsesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"phone already registered"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, "tok").DeleteForm(context.Background(), "a1")
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError; got %v", err)
	}
	if se.Error() != "phone already registered" {
		t.Fatalf("expected backend message; got %q", se.Error())
	}
}
